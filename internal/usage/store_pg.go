package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(database *sql.DB) *pgStore {
	return &pgStore{DB: database}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer tx.Rollback()
	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	if n <= 0 {
		return s.Get(ctx, userID)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer tx.Rollback()

	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	if u.Used+n > u.Limit {
		return Usage{}, ErrLimitReached
	}
	u.Used += n
	if _, err := tx.ExecContext(ctx, `UPDATE usage SET used = $1 WHERE user_id = $2`, u.Used, userID); err != nil {
		return Usage{}, err
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	const selectQuery = `
SELECT plan, monthly_limit, used, resets_at
FROM usage
WHERE user_id = $1
FOR UPDATE`
	var u Usage
	err := tx.QueryRowContext(ctx, selectQuery, userID).Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	now := time.Now().UTC()
	if errors.Is(err, sql.ErrNoRows) {
		u = Usage{Plan: defaultPlan, Limit: defaultLimit, ResetsAt: nextReset(now)}
		const insertQuery = `
INSERT INTO usage (user_id, plan, monthly_limit, used, resets_at)
VALUES ($1, $2, $3, 0, $4)`
		if _, err := tx.ExecContext(ctx, insertQuery, userID, u.Plan, u.Limit, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}
	if !u.ResetsAt.After(now) {
		u.Used = 0
		u.ResetsAt = nextReset(now)
		const resetQuery = `UPDATE usage SET used = 0, resets_at = $1 WHERE user_id = $2`
		if _, err := tx.ExecContext(ctx, resetQuery, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
