package submissions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new submission.
func (r *PGRepo) Create(ctx context.Context, submission Submission) error {
	const query = `
INSERT INTO submissions (id, user_id, user_email, input_text, query_id, analysis_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		submission.ID,
		submission.UserID,
		submission.UserEmail,
		submission.InputText,
		nullableString(submission.QueryID),
		nullableString(submission.AnalysisID),
		submission.Status,
	)
	return err
}

// UpdateStatus sets the lifecycle status of an existing submission.
func (r *PGRepo) UpdateStatus(ctx context.Context, submissionID, status string) error {
	const query = `UPDATE submissions SET status = $1, updated_at = now() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, status, submissionID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetAnalysisID back-fills the analysis reference on the submission.
func (r *PGRepo) SetAnalysisID(ctx context.Context, submissionID, analysisID string) error {
	const query = `UPDATE submissions SET analysis_id = $1, updated_at = now() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, analysisID, submissionID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetByID returns a submission by its ID.
func (r *PGRepo) GetByID(ctx context.Context, submissionID string) (Submission, error) {
	const query = `
SELECT id, user_id, user_email, input_text, query_id, analysis_id, status, created_at, updated_at
FROM submissions
WHERE id = $1
LIMIT 1`
	var s Submission
	var queryID sql.NullString
	var analysisID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, submissionID).Scan(
		&s.ID,
		&s.UserID,
		&s.UserEmail,
		&s.InputText,
		&queryID,
		&analysisID,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	if queryID.Valid {
		s.QueryID = queryID.String
	}
	if analysisID.Valid {
		s.AnalysisID = analysisID.String
	}
	return s, nil
}

// ListByUser returns submissions for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, user_email, input_text, query_id, analysis_id, status, created_at, updated_at
FROM submissions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var s Submission
		var queryID sql.NullString
		var analysisID sql.NullString
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.UserEmail,
			&s.InputText,
			&queryID,
			&analysisID,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if queryID.Valid {
			s.QueryID = queryID.String
		}
		if analysisID.Valid {
			s.AnalysisID = analysisID.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
