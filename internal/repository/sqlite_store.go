package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studyplanner-backend/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Get(ctx context.Context, userID string) (*models.UserSession, error) {
	return getSQLiteSession(ctx, r.db.QueryRowContext(ctx, "SELECT data FROM syllabus_sessions WHERE user_id = ?", userID))
}

func getSQLiteSession(_ context.Context, row *sql.Row) (*models.UserSession, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var s models.UserSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *SQLiteStore) Put(ctx context.Context, session *models.UserSession) error {
	return putSQLiteSession(ctx, r.db, session)
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putSQLiteSession(ctx context.Context, db sqlExecer, session *models.UserSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO syllabus_sessions (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		session.UserID, string(raw), time.Now().UTC())
	return err
}

func (r *SQLiteStore) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM syllabus_sessions WHERE user_id = ?", userID)
	return err
}

// update reads, modifies and writes one session inside a transaction.
func (r *SQLiteStore) update(ctx context.Context, userID string, fn func(*models.UserSession)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s, err := getSQLiteSession(ctx, tx.QueryRowContext(ctx, "SELECT data FROM syllabus_sessions WHERE user_id = ?", userID))
	if err != nil {
		return err
	}
	fn(s)

	if err := putSQLiteSession(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteStore) SetProgress(ctx context.Context, userID string, day int, completed bool, notes string) (models.DayProgress, error) {
	p := newDayProgress(completed, notes)
	err := r.update(ctx, userID, func(s *models.UserSession) {
		applyProgress(s, day, p)
	})
	if err != nil {
		return models.DayProgress{}, err
	}
	return p, nil
}

func (r *SQLiteStore) SetPlan(ctx context.Context, userID string, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) error {
	return r.update(ctx, userID, func(s *models.UserSession) {
		applyPlan(s, plan, generatedAt, daysRemaining)
	})
}

func (r *SQLiteStore) Close() error { return r.db.Close() }
