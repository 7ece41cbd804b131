package llm

import (
	"context"
	"encoding/json"
	"testing"
)

type stubUploader struct{ name string }

func (s stubUploader) UploadFiles(ctx context.Context, files []File) (UploadResult, error) {
	_ = ctx
	_ = files
	return UploadResult{FileIDs: []string{s.name}}, nil
}

type stubParser struct{}

func (stubParser) Parse(raw json.RawMessage) (map[string]any, error) {
	_ = raw
	return map[string]any{}, nil
}

func TestRegistryBindsFirstAvailable(t *testing.T) {
	reg := NewRegistry([]UploaderCandidate{
		{Name: "absent", Provide: func() Uploader { return nil }},
		{Name: "second", Provide: func() Uploader { return stubUploader{name: "second"} }},
		{Name: "third", Provide: func() Uploader { return stubUploader{name: "third"} }},
	}, nil, nil)

	uploader, ok := reg.Uploader()
	if !ok {
		t.Fatalf("expected uploader to bind")
	}
	res, err := uploader.UploadFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(res.FileIDs) != 1 || res.FileIDs[0] != "second" {
		t.Fatalf("expected first available candidate to win, got %v", res.FileIDs)
	}
}

func TestRegistryAbsenceIsNotAnError(t *testing.T) {
	reg := NewRegistry(nil, nil, []ParserCandidate{
		{Name: "parser", Provide: func() Parser { return stubParser{} }},
	})

	if _, ok := reg.Uploader(); ok {
		t.Fatalf("expected no uploader binding")
	}
	if _, ok := reg.Analyzer(); ok {
		t.Fatalf("expected no analyzer binding")
	}
	if _, ok := reg.Parser(); !ok {
		t.Fatalf("expected parser binding")
	}
}

func TestUploadResultEmpty(t *testing.T) {
	if !(UploadResult{}).Empty() {
		t.Fatalf("zero result should be empty")
	}
	if (UploadResult{VectorStoreID: "vs_1"}).Empty() {
		t.Fatalf("store-backed result should not be empty")
	}
}
