package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"radar-backend/internal/radar"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreatePlaceholder inserts the analysis in processing state.
func (r *PGRepo) CreatePlaceholder(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, user_id, input_text, status, is_ready, created_at, updated_at)
VALUES ($1, $2, $3, $4, FALSE, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.InputText,
		StatusProcessing,
	)
	return err
}

// Complete writes the normalized result onto the analysis row.
func (r *PGRepo) Complete(ctx context.Context, analysisID string, result radar.Result) error {
	flagsPayload, err := marshalJSONB(result.RiskFlags)
	if err != nil {
		return err
	}
	radarPayload, err := marshalJSONB(result.Radar)
	if err != nil {
		return err
	}
	profilePayload, err := marshalJSONB(result.Profile)
	if err != nil {
		return err
	}
	const query = `
UPDATE analyses SET
	status = $1,
	is_ready = $2,
	power_score = $3,
	gravity_score = $4,
	risk_score = $5,
	confidence = $6,
	tldr = $7,
	diagnosis = $8,
	strategy = $9,
	risk_flags = $10,
	radar = $11,
	profile = $12,
	sources_confirmed = $13,
	latency_ms = $14,
	error_code = NULL,
	error_message = NULL,
	updated_at = now()
WHERE id = $15`
	res, err := r.DB.ExecContext(ctx, query,
		StatusCompleted,
		result.HasCoreScores(),
		result.PowerScore,
		result.GravityScore,
		result.RiskScore,
		result.Confidence,
		result.TLDR,
		result.Diagnosis,
		result.Strategy,
		flagsPayload,
		radarPayload,
		profilePayload,
		result.SourcesConfirmed,
		result.LatencyMS,
		analysisID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail marks the analysis errored with a structured error captured.
func (r *PGRepo) Fail(ctx context.Context, analysisID, code, message string) error {
	const query = `
UPDATE analyses SET status = $1, is_ready = FALSE, error_code = $2, error_message = $3, updated_at = now()
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusError, code, message, analysisID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetByID returns an analysis by its ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = selectColumns + ` WHERE id = $1 LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID)
	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return analysis, nil
}

// ListByUser returns analyses for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = selectColumns + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}

const selectColumns = `
SELECT id, user_id, input_text, status, is_ready,
       power_score, gravity_score, risk_score, confidence,
       tldr, diagnosis, strategy, risk_flags, radar, profile,
       sources_confirmed, latency_ms, error_code, error_message,
       created_at, updated_at
FROM analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var power, gravity, risk, confidence sql.NullFloat64
	var tldr, diagnosis, strategy sql.NullString
	var flagsRaw, radarRaw, profileRaw sql.NullString
	var latencyMS sql.NullInt64
	var errorCode, errorMessage sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.InputText,
		&a.Status,
		&a.IsReady,
		&power,
		&gravity,
		&risk,
		&confidence,
		&tldr,
		&diagnosis,
		&strategy,
		&flagsRaw,
		&radarRaw,
		&profileRaw,
		&a.SourcesConfirmed,
		&latencyMS,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Analysis{}, err
	}
	a.PowerScore = nullFloat(power)
	a.GravityScore = nullFloat(gravity)
	a.RiskScore = nullFloat(risk)
	a.Confidence = nullFloat(confidence)
	a.TLDR = nullString(tldr)
	a.Diagnosis = nullString(diagnosis)
	a.Strategy = nullString(strategy)
	if flagsRaw.Valid {
		_ = json.Unmarshal([]byte(flagsRaw.String), &a.RiskFlags)
	}
	if radarRaw.Valid {
		_ = json.Unmarshal([]byte(radarRaw.String), &a.Radar)
	}
	if profileRaw.Valid {
		_ = json.Unmarshal([]byte(profileRaw.String), &a.Profile)
	}
	if latencyMS.Valid {
		a.LatencyMS = &latencyMS.Int64
	}
	a.ErrorCode = nullString(errorCode)
	a.ErrorMessage = nullString(errorMessage)
	return a, nil
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return &value.Float64
}

func nullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalJSONB(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
