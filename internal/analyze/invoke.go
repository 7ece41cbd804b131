package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"radar-backend/internal/extract"
	"radar-backend/internal/llm"
	"radar-backend/internal/shared/telemetry"
)

// invoke runs the upload stage followed by one of three invocation
// strategies. A bound analyzer capability takes precedence; the
// built-in provider is used otherwise, via a persistent assistant when
// one is configured and a plain completion when not.
func (s *Service) invoke(ctx context.Context, req Request, jobID string) (json.RawMessage, error) {
	analyzer, analyzerBound := s.Caps.Analyzer()
	assistantConfigured := s.Provider != nil && s.Provider.AssistantConfigured()

	if analyzerBound && !assistantConfigured {
		_, uploaderBound := s.Caps.Uploader()
		if len(req.Files) > 0 && !uploaderBound {
			return nil, &llm.MissingCapabilityError{Capability: "uploader"}
		}
		ref, err := s.uploadStage(ctx, req.Files, jobID)
		if err != nil {
			return nil, err
		}
		telemetry.Info("analysis.strategy", map[string]any{"jobId": jobID, "strategy": "bound"})
		return analyzer.Analyze(ctx, req.InputText, ref)
	}

	if s.Provider == nil {
		return nil, &llm.MissingCapabilityError{Capability: "analyzer"}
	}

	if assistantConfigured {
		ref, err := s.uploadStage(ctx, req.Files, jobID)
		if err != nil {
			return nil, err
		}
		// Runs reference attachments through vector stores only. A bound
		// uploader may return bare file ids; batch those into a per-job
		// store so the run can search them.
		if ref.VectorStoreID == "" && len(ref.FileIDs) > 0 {
			storeID, err := s.Provider.CreateVectorStore(ctx, "radar-job-"+jobID)
			if err != nil {
				return nil, fmt.Errorf("create vector store: %w", err)
			}
			if err := s.Provider.AttachFileBatch(ctx, storeID, ref.FileIDs); err != nil {
				return nil, fmt.Errorf("attach file batch: %w", err)
			}
			ref.VectorStoreID = storeID
		}
		var storeIDs []string
		if ref.VectorStoreID != "" {
			storeIDs = append(storeIDs, ref.VectorStoreID)
		}
		if s.PermanentVectorStoreID != "" {
			storeIDs = append(storeIDs, s.PermanentVectorStoreID)
		}
		telemetry.Info("analysis.strategy", map[string]any{
			"jobId":        jobID,
			"strategy":     "assistant",
			"vectorStores": len(storeIDs),
		})
		return s.Provider.RunAssistant(ctx, req.InputText, storeIDs)
	}

	// Plain completion: attachments are inlined as extracted text
	// since there is nowhere to reference them.
	prompt, err := s.inlineAttachments(ctx, req.InputText, req.Files)
	if err != nil {
		return nil, err
	}
	telemetry.Info("analysis.strategy", map[string]any{"jobId": jobID, "strategy": "completion"})
	content, err := s.Provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode completion: %w", err)
	}
	return raw, nil
}

// uploadStage converts attachments into a provider-side reference. A
// bound uploader capability is preferred; the fallback creates a
// per-job vector store and batches the files into it. Zero files is a
// no-op yielding an empty reference.
func (s *Service) uploadStage(ctx context.Context, files []llm.File, jobID string) (llm.UploadResult, error) {
	if len(files) == 0 {
		return llm.UploadResult{}, nil
	}

	if uploader, ok := s.Caps.Uploader(); ok {
		return uploader.UploadFiles(ctx, files)
	}

	storeID, err := s.Provider.CreateVectorStore(ctx, "radar-job-"+jobID)
	if err != nil {
		return llm.UploadResult{}, fmt.Errorf("create vector store: %w", err)
	}
	fileIDs := make([]string, 0, len(files))
	for _, f := range files {
		id, err := s.Provider.UploadFile(ctx, f)
		if err != nil {
			return llm.UploadResult{}, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		fileIDs = append(fileIDs, id)
	}
	if err := s.Provider.AttachFileBatch(ctx, storeID, fileIDs); err != nil {
		return llm.UploadResult{}, fmt.Errorf("attach file batch: %w", err)
	}
	return llm.UploadResult{FileIDs: fileIDs, VectorStoreID: storeID}, nil
}

func (s *Service) inlineAttachments(ctx context.Context, inputText string, files []llm.File) (string, error) {
	if len(files) == 0 {
		return inputText, nil
	}
	var b strings.Builder
	b.WriteString(inputText)
	for _, f := range files {
		text, err := extract.TextFromBytes(ctx, f.Data, f.MIME, f.Name)
		if err != nil {
			telemetry.Warn("analysis.attachment.extract_failed", map[string]any{
				"file":  f.Name,
				"error": err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString("\n\n--- attachment: ")
		b.WriteString(f.Name)
		b.WriteString(" ---\n")
		b.WriteString(text)
	}
	return b.String(), nil
}
