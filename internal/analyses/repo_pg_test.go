package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"radar-backend/internal/radar"
)

func TestPGRepoCompleteSetsReadyFromCoreScores(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	power, gravity, risk := 70.0, 60.0, 50.0
	result := radar.Result{
		PowerScore:   &power,
		GravityScore: &gravity,
		RiskScore:    &risk,
		LatencyMS:    1234,
	}

	mock.ExpectExec("UPDATE analyses SET").
		WithArgs(
			StatusCompleted,
			true, // is_ready: all core scores present
			power,
			gravity,
			risk,
			nil,              // confidence
			nil,              // tldr
			nil,              // diagnosis
			nil,              // strategy
			sqlmock.AnyArg(), // risk_flags
			sqlmock.AnyArg(), // radar
			sqlmock.AnyArg(), // profile
			false,
			int64(1234),
			"analysis-1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Complete(context.Background(), "analysis-1", result); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCompletePartialScoresNotReady(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	power := 70.0
	result := radar.Result{PowerScore: &power}

	mock.ExpectExec("UPDATE analyses SET").
		WithArgs(
			StatusCompleted,
			false, // is_ready stays false with missing scores
			power,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			false,
			int64(0),
			"analysis-1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Complete(context.Background(), "analysis-1", result); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFailCapturesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE analyses SET status").
		WithArgs(StatusError, ErrorCodeRunTimeout, "assistant run timed out", "analysis-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Fail(context.Background(), "analysis-1", ErrorCodeRunTimeout, "assistant run timed out"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDUnmarshalsJSONB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "input_text", "status", "is_ready",
		"power_score", "gravity_score", "risk_score", "confidence",
		"tldr", "diagnosis", "strategy", "risk_flags", "radar", "profile",
		"sources_confirmed", "latency_ms", "error_code", "error_message",
		"created_at", "updated_at",
	}).AddRow(
		"analysis-1", "user-1", "text", StatusCompleted, true,
		70.0, 60.0, 50.0, nil,
		"summary", nil, nil, `["flag-1"]`, `{"authority": 80}`, nil,
		true, 1500, nil, nil,
		now, now,
	)

	mock.ExpectQuery("SELECT id, user_id, input_text").
		WithArgs("analysis-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PowerScore == nil || *got.PowerScore != 70 {
		t.Fatalf("expected power 70, got %v", got.PowerScore)
	}
	if got.Confidence != nil {
		t.Fatalf("expected nil confidence for NULL column")
	}
	if len(got.RiskFlags) != 1 || got.RiskFlags[0] != "flag-1" {
		t.Fatalf("expected risk flags decoded, got %v", got.RiskFlags)
	}
	if got.Radar.Authority == nil || *got.Radar.Authority != 80 {
		t.Fatalf("expected radar decoded, got %+v", got.Radar)
	}
	if got.LatencyMS == nil || *got.LatencyMS != 1500 {
		t.Fatalf("expected latency decoded, got %v", got.LatencyMS)
	}
}
