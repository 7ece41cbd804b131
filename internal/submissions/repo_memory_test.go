package submissions

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepoLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, Submission{ID: "job-1", UserID: "user-1", InputText: "text", Status: StatusPending}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateStatus(ctx, "job-1", StatusProcessing); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.SetAnalysisID(ctx, "job-1", "analysis-1"); err != nil {
		t.Fatalf("set analysis id: %v", err)
	}

	got, err := repo.GetByID(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusProcessing || got.AnalysisID != "analysis-1" {
		t.Fatalf("unexpected submission: %+v", got)
	}
}

func TestMemoryRepoNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", StatusError); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if err := repo.Create(ctx, Submission{ID: id, UserID: "user-1", InputText: "t", Status: StatusPending}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.Create(ctx, Submission{ID: "other", UserID: "user-2", InputText: "t", Status: StatusPending}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	got, err := repo.ListByUser(ctx, "user-1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit applied, got %d", len(got))
	}
	for _, s := range got {
		if s.UserID != "user-1" {
			t.Fatalf("expected only user-1 submissions, got %s", s.UserID)
		}
	}
}
