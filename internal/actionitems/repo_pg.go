package actionitems

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// InsertBatch inserts all items in one transaction so a mid-batch
// failure leaves no partial section behind.
func (r *PGRepo) InsertBatch(ctx context.Context, items []ActionItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO action_items (id, analysis_id, section, idx, text, completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query,
			item.ID,
			item.AnalysisID,
			item.Section,
			item.Idx,
			item.Text,
			item.Completed,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByAnalysis returns items ordered by section then insertion index.
func (r *PGRepo) ListByAnalysis(ctx context.Context, analysisID string) ([]ActionItem, error) {
	const query = `
SELECT id, analysis_id, section, idx, text, completed, created_at, updated_at
FROM action_items
WHERE analysis_id = $1
ORDER BY section, idx`
	rows, err := r.DB.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActionItem{}
	for rows.Next() {
		var item ActionItem
		if err := rows.Scan(
			&item.ID,
			&item.AnalysisID,
			&item.Section,
			&item.Idx,
			&item.Text,
			&item.Completed,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// SetCompleted toggles the completion flag on one item.
func (r *PGRepo) SetCompleted(ctx context.Context, itemID string, completed bool) error {
	const query = `UPDATE action_items SET completed = $1, updated_at = now() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, completed, itemID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
