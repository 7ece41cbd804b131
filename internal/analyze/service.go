package analyze

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"radar-backend/internal/actionitems"
	"radar-backend/internal/analyses"
	"radar-backend/internal/llm"
	"radar-backend/internal/radar"
	"radar-backend/internal/shared/telemetry"
	"radar-backend/internal/submissions"
	"radar-backend/internal/usage"
	"radar-backend/internal/users"
)

// Provider is the built-in LLM backend used when no analyzer
// capability is bound. Satisfied by openai.Client.
type Provider interface {
	AssistantConfigured() bool
	CreateVectorStore(ctx context.Context, name string) (string, error)
	UploadFile(ctx context.Context, file llm.File) (string, error)
	AttachFileBatch(ctx context.Context, vectorStoreID string, fileIDs []string) error
	RunAssistant(ctx context.Context, text string, vectorStoreIDs []string) (json.RawMessage, error)
	Complete(ctx context.Context, text string) (string, error)
}

// Request is one analysis job. JobID and QueryID are optional and
// generated server-side when absent.
type Request struct {
	InputText string
	UserID    string
	UserEmail string
	Files     []llm.File
	JobID     string
	QueryID   string
}

// Response carries the identifiers and flattened result for a job.
// On failure only the identifiers allocated so far are set.
type Response struct {
	JobID      string
	AnalysisID string
	Data       map[string]any
}

// Recovery records the outcome of best-effort error-state writes. The
// primary error is always surfaced; secondary errors are logged only.
type Recovery struct {
	Primary   error
	Secondary []error
}

// Service runs the full analysis lifecycle: submission bookkeeping,
// upload, LLM invocation, normalization and result persistence.
type Service struct {
	Subs     submissions.Repo
	Analyses analyses.Repo
	Items    actionitems.Repo
	Users    users.Repo
	Usage    *usage.Service
	Caps     *llm.Registry
	Provider Provider

	// PermanentVectorStoreID, when set, is attached to every
	// assistant run in addition to any per-job store.
	PermanentVectorStoreID string
}

type runState struct {
	jobID      string
	analysisID string
	jobStored  bool
}

// Run executes a job end to end. On failure the submission and
// analysis rows that exist are moved to their error states before the
// original error is returned.
func (s *Service) Run(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.InputText) == "" || req.UserID == "" || req.UserEmail == "" {
		return Response{}, ErrInvalidRequest
	}

	if s.Users != nil {
		if err := s.Users.Upsert(ctx, users.User{ID: req.UserID, Email: req.UserEmail}); err != nil {
			telemetry.Warn("user.upsert_failed", map[string]any{"userId": req.UserID, "error": err.Error()})
		}
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, req.UserID, 1)
		if err != nil {
			return Response{}, err
		}
		if !ok {
			return Response{}, usage.ErrLimitReached
		}
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	state := &runState{jobID: jobID}

	sub := submissions.Submission{
		ID:        jobID,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		InputText: req.InputText,
		QueryID:   req.QueryID,
		Status:    submissions.StatusPending,
	}
	if err := s.Subs.Create(ctx, sub); err != nil {
		return s.fail(ctx, state, err)
	}
	state.jobStored = true

	if err := s.Subs.UpdateStatus(ctx, jobID, submissions.StatusProcessing); err != nil {
		return s.fail(ctx, state, err)
	}

	analysisID := uuid.NewString()
	if err := s.Analyses.CreatePlaceholder(ctx, analyses.Analysis{
		ID:        analysisID,
		UserID:    req.UserID,
		InputText: req.InputText,
	}); err != nil {
		return s.fail(ctx, state, err)
	}
	state.analysisID = analysisID

	if err := s.Subs.SetAnalysisID(ctx, jobID, analysisID); err != nil {
		return s.fail(ctx, state, err)
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, req.UserID, 1); err != nil {
			telemetry.Warn("usage.consume_failed", map[string]any{"userId": req.UserID, "error": err.Error()})
		}
	}

	started := time.Now()
	raw, err := s.invoke(ctx, req, jobID)
	if err != nil {
		return s.fail(ctx, state, err)
	}
	latencyMS := time.Since(started).Milliseconds()

	var parser llm.Parser
	if p, ok := s.Caps.Parser(); ok {
		parser = p
	}
	result := radar.Normalize(raw, parser)
	result.LatencyMS = latencyMS

	if err := s.Analyses.Complete(ctx, analysisID, result); err != nil {
		return s.fail(ctx, state, err)
	}

	// Action item persistence must not fail the job.
	if items := buildItems(analysisID, result.ActionItems); len(items) > 0 {
		if err := s.Items.InsertBatch(ctx, items); err != nil {
			telemetry.Error("analysis.action_items.insert_failed", map[string]any{
				"analysisId": analysisID,
				"error":      err.Error(),
			})
		}
	}

	if err := s.Subs.UpdateStatus(ctx, jobID, submissions.StatusCompleted); err != nil {
		return s.fail(ctx, state, err)
	}

	telemetry.Info("analysis.completed", map[string]any{
		"jobId":      jobID,
		"analysisId": analysisID,
		"latencyMs":  latencyMS,
		"isReady":    result.HasCoreScores(),
	})

	return Response{JobID: jobID, AnalysisID: analysisID, Data: result.Flatten()}, nil
}

// fail moves whatever rows exist for this job into their error states
// and returns the primary error unchanged. Secondary write failures
// are logged, never surfaced.
func (s *Service) fail(ctx context.Context, state *runState, primary error) (Response, error) {
	rec := Recovery{Primary: primary}
	code := classifyFailure(primary)
	msg := sanitizeError(primary)

	// The request context may already be dead; error-state writes use
	// a fresh one so a cancelled job still records its failure.
	bg := context.Background()

	if state.analysisID != "" {
		if err := s.Analyses.Fail(bg, state.analysisID, code, msg); err != nil {
			rec.Secondary = append(rec.Secondary, err)
		}
	}
	if state.jobStored {
		if err := s.Subs.UpdateStatus(bg, state.jobID, submissions.StatusError); err != nil {
			rec.Secondary = append(rec.Secondary, err)
		}
	}

	fields := map[string]any{
		"jobId":     state.jobID,
		"errorCode": code,
		"error":     msg,
	}
	if state.analysisID != "" {
		fields["analysisId"] = state.analysisID
	}
	if len(rec.Secondary) > 0 {
		msgs := make([]string, 0, len(rec.Secondary))
		for _, err := range rec.Secondary {
			msgs = append(msgs, err.Error())
		}
		fields["recoveryErrors"] = strings.Join(msgs, "; ")
	}
	telemetry.Error("analysis.failed", fields)

	resp := Response{AnalysisID: state.analysisID}
	if state.jobStored {
		resp.JobID = state.jobID
	}
	return resp, rec.Primary
}

func buildItems(analysisID string, items []radar.ActionItem) []actionitems.ActionItem {
	out := make([]actionitems.ActionItem, 0, len(items))
	counts := make(map[string]int)
	for _, item := range items {
		idx := counts[item.Section]
		counts[item.Section]++
		out = append(out, actionitems.ActionItem{
			ID:         uuid.NewString(),
			AnalysisID: analysisID,
			Section:    item.Section,
			Idx:        idx,
			Text:       item.Text,
		})
	}
	return out
}
