package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyplanner-backend/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Get(ctx context.Context, userID string) (*models.UserSession, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT data FROM syllabus_sessions WHERE user_id = $1", userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s models.UserSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *PostgresStore) Put(ctx context.Context, session *models.UserSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := `
		INSERT INTO syllabus_sessions (user_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	_, err = r.pool.Exec(ctx, query, session.UserID, raw)
	return err
}

func (r *PostgresStore) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM syllabus_sessions WHERE user_id = $1", userID)
	return err
}

// SetProgress merges a single day into data->'progress' in one statement.
func (r *PostgresStore) SetProgress(ctx context.Context, userID string, day int, completed bool, notes string) (models.DayProgress, error) {
	p := newDayProgress(completed, notes)
	raw, err := json.Marshal(p)
	if err != nil {
		return models.DayProgress{}, err
	}

	query := `
		UPDATE syllabus_sessions
		SET data = jsonb_set(
				data,
				'{progress}',
				COALESCE(data->'progress', '{}'::jsonb) || jsonb_build_object($2::text, $3::jsonb),
				true),
			updated_at = NOW()
		WHERE user_id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, strconv.Itoa(day), raw)
	if err != nil {
		return models.DayProgress{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.DayProgress{}, ErrSessionNotFound
	}
	return p, nil
}

// SetPlan overwrites only the plan keys of data, leaving progress alone.
func (r *PostgresStore) SetPlan(ctx context.Context, userID string, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) error {
	rawPlan, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	rawGeneratedAt, err := json.Marshal(generatedAt.UTC())
	if err != nil {
		return err
	}

	query := `
		UPDATE syllabus_sessions
		SET data = data || jsonb_build_object(
				'studyPlan', $2::jsonb,
				'generatedAt', $3::jsonb,
				'daysRemaining', $4::int),
			updated_at = NOW()
		WHERE user_id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, rawPlan, rawGeneratedAt, daysRemaining)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Close is a no-op; the pool is owned by main.
func (r *PostgresStore) Close() error { return nil }
