package llm

import (
	"context"
	"encoding/json"

	"radar-backend/internal/shared/telemetry"
)

// File is one in-memory attachment submitted alongside the input text.
type File struct {
	Name string
	MIME string
	Data []byte
}

// UploadResult is the single reference shape produced by an Uploader.
// Either a list of provider file IDs, a vector store ID, or both may be set.
type UploadResult struct {
	FileIDs       []string
	VectorStoreID string
}

// Empty reports whether the result carries no usable reference.
func (r UploadResult) Empty() bool {
	return len(r.FileIDs) == 0 && r.VectorStoreID == ""
}

// Uploader pushes attachments to the provider and returns a reference.
type Uploader interface {
	UploadFiles(ctx context.Context, files []File) (UploadResult, error)
}

// Analyzer obtains a raw provider response for the given text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, ref UploadResult) (json.RawMessage, error)
}

// Parser turns a raw provider response into a keyed document.
type Parser interface {
	Parse(raw json.RawMessage) (map[string]any, error)
}

// MissingCapabilityError is returned when a stage needs a capability
// that resolved to absent.
type MissingCapabilityError struct {
	Capability string
}

func (e *MissingCapabilityError) Error() string {
	return "missing capability: " + e.Capability
}

// UploaderCandidate names a possible Uploader binding. Provide returns
// nil when the candidate is unavailable in this deployment.
type UploaderCandidate struct {
	Name    string
	Provide func() Uploader
}

type AnalyzerCandidate struct {
	Name    string
	Provide func() Analyzer
}

type ParserCandidate struct {
	Name    string
	Provide func() Parser
}

// Registry holds the capabilities resolved once at startup. A role with
// no loadable candidate stays unbound; callers decide at invocation time
// whether that is fatal.
type Registry struct {
	uploader Uploader
	analyzer Analyzer
	parser   Parser
}

// NewRegistry probes each candidate list in order and binds the first
// candidate that provides an implementation. Absence is not an error.
func NewRegistry(uploaders []UploaderCandidate, analyzers []AnalyzerCandidate, parsers []ParserCandidate) *Registry {
	reg := &Registry{}
	for _, cand := range uploaders {
		if impl := cand.Provide(); impl != nil {
			reg.uploader = impl
			telemetry.Info("capability.bound", map[string]any{"role": "uploader", "name": cand.Name})
			break
		}
	}
	for _, cand := range analyzers {
		if impl := cand.Provide(); impl != nil {
			reg.analyzer = impl
			telemetry.Info("capability.bound", map[string]any{"role": "analyzer", "name": cand.Name})
			break
		}
	}
	for _, cand := range parsers {
		if impl := cand.Provide(); impl != nil {
			reg.parser = impl
			telemetry.Info("capability.bound", map[string]any{"role": "parser", "name": cand.Name})
			break
		}
	}
	return reg
}

// Uploader returns the bound uploader, if any.
func (r *Registry) Uploader() (Uploader, bool) {
	if r == nil || r.uploader == nil {
		return nil, false
	}
	return r.uploader, true
}

// Analyzer returns the bound analyzer, if any.
func (r *Registry) Analyzer() (Analyzer, bool) {
	if r == nil || r.analyzer == nil {
		return nil, false
	}
	return r.analyzer, true
}

// Parser returns the bound parser, if any.
func (r *Registry) Parser() (Parser, bool) {
	if r == nil || r.parser == nil {
		return nil, false
	}
	return r.parser, true
}
