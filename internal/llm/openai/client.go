package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"radar-backend/internal/llm"
	"radar-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrRunTimeout is returned when an assistant run does not reach a
// terminal state within the configured deadline.
var ErrRunTimeout = errors.New("assistant run timed out")

// RunFailedError reports a run that reached a non-completed terminal state.
type RunFailedError struct {
	Status string
}

func (e *RunFailedError) Error() string {
	return "assistant run terminated: " + e.Status
}

// Config carries the provider credentials and tuning knobs.
type Config struct {
	APIKey       string
	OrgID        string
	AssistantID  string
	Model        string
	BaseURL      string
	PollInterval time.Duration
	RunTimeout   time.Duration
}

// Client talks to OpenAI. Chat completions go through the official SDK;
// the assistants v2 surface (threads, runs, vector stores, file upload)
// is called directly.
type Client struct {
	api          *openai.Client
	apiKey       string
	orgID        string
	assistantID  string
	model        string
	baseURL      string
	pollInterval time.Duration
	runTimeout   time.Duration
	httpClient   *http.Client
}

// NewClient constructs a Client from config.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	}
	if cfg.OrgID != "" {
		opts = append(opts, option.WithHeader("OpenAI-Organization", cfg.OrgID))
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 700 * time.Millisecond
	}
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = 5 * time.Minute
	}
	return &Client{
		api:          openai.NewClient(opts...),
		apiKey:       cfg.APIKey,
		orgID:        cfg.OrgID,
		assistantID:  cfg.AssistantID,
		model:        cfg.Model,
		baseURL:      baseURL,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// AssistantConfigured reports whether an assistant id credential is set.
func (c *Client) AssistantConfigured() bool {
	return strings.TrimSpace(c.assistantID) != ""
}

// Complete issues one single-shot chat completion and returns the first
// choice's message content, or an empty string if absent.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(c.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(text),
		}),
		Temperature: openai.F(0.0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CreateVectorStore creates a named provider-side vector store and
// returns its id. No cleanup is performed; store lifecycle is managed
// provider-side.
func (c *Client) CreateVectorStore(ctx context.Context, name string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/vector_stores", map[string]any{"name": name}, &out)
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}
	return out.ID, nil
}

// UploadFile uploads one attachment with purpose "assistants" and
// returns the provider file id.
func (c *Client) UploadFile(ctx context.Context, file llm.File) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(req)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.send(req, &out); err != nil {
		return "", fmt.Errorf("upload file %s: %w", file.Name, err)
	}
	return out.ID, nil
}

// AttachFileBatch attaches previously uploaded files to a vector store
// as one batch.
func (c *Client) AttachFileBatch(ctx context.Context, storeID string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	path := "/vector_stores/" + storeID + "/file_batches"
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"file_ids": fileIDs}, nil); err != nil {
		return fmt.Errorf("attach file batch: %w", err)
	}
	return nil
}

// RunAssistant seeds a new thread with the user's message, attaches any
// vector stores to the file-search tool, starts a run and polls it to a
// terminal state. On completion it returns the most recent assistant
// message's content array.
func (c *Client) RunAssistant(ctx context.Context, text string, storeIDs []string) (json.RawMessage, error) {
	if !c.AssistantConfigured() {
		return nil, &llm.MissingCapabilityError{Capability: "assistant"}
	}

	var thread struct {
		ID string `json:"id"`
	}
	threadBody := map[string]any{
		"messages": []map[string]any{
			{"role": "user", "content": text},
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/threads", threadBody, &thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	if len(storeIDs) > 0 {
		update := map[string]any{
			"tool_resources": map[string]any{
				"file_search": map[string]any{"vector_store_ids": storeIDs},
			},
		}
		if err := c.doJSON(ctx, http.MethodPost, "/threads/"+thread.ID, update, nil); err != nil {
			return nil, fmt.Errorf("attach vector stores: %w", err)
		}
	}

	var run struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	runBody := map[string]any{
		"assistant_id": c.assistantID,
		"tool_choice":  "auto",
	}
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+thread.ID+"/runs", runBody, &run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	deadline := time.Now().Add(c.runTimeout)
	for {
		switch run.Status {
		case "completed":
			return c.latestAssistantContent(ctx, thread.ID)
		case "failed", "cancelled", "expired":
			return nil, &RunFailedError{Status: run.Status}
		}

		// queued, in_progress, requires_action
		if time.Now().After(deadline) {
			telemetry.Warn("assistant.run.timeout", map[string]any{
				"thread_id": thread.ID,
				"run_id":    run.ID,
				"status":    run.Status,
			})
			return nil, ErrRunTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		if err := c.doJSON(ctx, http.MethodGet, "/threads/"+thread.ID+"/runs/"+run.ID, nil, &run); err != nil {
			return nil, fmt.Errorf("retrieve run: %w", err)
		}
	}
}

func (c *Client) latestAssistantContent(ctx context.Context, threadID string) (json.RawMessage, error) {
	var out struct {
		Data []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"data"`
	}
	path := "/threads/" + threadID + "/messages?order=desc&limit=10"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for _, msg := range out.Data {
		if msg.Role == "assistant" {
			return msg.Content, nil
		}
	}
	return nil, fmt.Errorf("no assistant message in thread %s", threadID)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeaders(req)
	return c.send(req, out)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if c.orgID != "" {
		req.Header.Set("OpenAI-Organization", c.orgID)
	}
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("openai request timeout: %w", err)
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != nil {
			return fmt.Errorf("openai error: %s (%s)", apiErr.Error.Message, apiErr.Error.Type)
		}
		return fmt.Errorf("openai status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("openai response parse: %w", err)
	}
	return nil
}
