package actionitems

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"radar-backend/internal/radar"
)

func newTestRouter(repo Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func seedItems(t *testing.T, repo *MemoryRepo) {
	t.Helper()
	err := repo.InsertBatch(context.Background(), []ActionItem{
		{ID: "item-1", AnalysisID: "analysis-1", Section: radar.SectionImmediateMove, Idx: 0, Text: "first"},
		{ID: "item-2", AnalysisID: "analysis-1", Section: radar.SectionImmediateMove, Idx: 1, Text: "second"},
		{ID: "item-3", AnalysisID: "analysis-1", Section: radar.SectionLongTermFix, Idx: 0, Text: "later"},
	})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
}

func TestListItemsWithCompletion(t *testing.T) {
	repo := NewMemoryRepo()
	seedItems(t, repo)
	if err := repo.SetCompleted(context.Background(), "item-1", true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/analysis-1/action-items", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Items      []ActionItem   `json:"items"`
		Completion map[string]int `json:"completion"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(body.Items))
	}
	if body.Completion[radar.SectionImmediateMove] != 50 {
		t.Fatalf("expected immediate_move at 50, got %d", body.Completion[radar.SectionImmediateMove])
	}
	if body.Completion[radar.SectionLongTermFix] != 0 {
		t.Fatalf("expected long_term_fix at 0, got %d", body.Completion[radar.SectionLongTermFix])
	}
}

func TestToggleItem(t *testing.T) {
	repo := NewMemoryRepo()
	seedItems(t, repo)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/action-items/item-2", strings.NewReader(`{"completed": true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	items, err := repo.ListByAnalysis(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, item := range items {
		if item.ID == "item-2" && !item.Completed {
			t.Fatalf("expected item-2 completed")
		}
	}
}

func TestToggleItemRequiresBoolean(t *testing.T) {
	repo := NewMemoryRepo()
	seedItems(t, repo)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/action-items/item-2", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestToggleItemNotFound(t *testing.T) {
	r := newTestRouter(NewMemoryRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/action-items/missing", strings.NewReader(`{"completed": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
