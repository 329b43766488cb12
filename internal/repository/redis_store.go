package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studyplanner-backend/internal/models"
)

const sessionKeyPrefix = "syllabus_session:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*models.UserSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s models.UserSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, session *models.UserSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, sessionKey(userID)).Err()
}

// maxWatchRetries bounds how often an update is retried after another writer
// touched the key between WATCH and EXEC.
const maxWatchRetries = 3

// update applies fn to the stored session inside an optimistic WATCH/MULTI
// transaction so concurrent writers on the same key do not drop each other's
// changes.
func (r *RedisStore) update(ctx context.Context, userID string, fn func(*models.UserSession)) error {
	key := sessionKey(userID)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var s models.UserSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		fn(&s)

		updated, err := json.Marshal(&s)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("session update for %s kept conflicting", userID)
}

func (r *RedisStore) SetProgress(ctx context.Context, userID string, day int, completed bool, notes string) (models.DayProgress, error) {
	p := newDayProgress(completed, notes)
	err := r.update(ctx, userID, func(s *models.UserSession) {
		applyProgress(s, day, p)
	})
	if err != nil {
		return models.DayProgress{}, err
	}
	return p, nil
}

func (r *RedisStore) SetPlan(ctx context.Context, userID string, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) error {
	return r.update(ctx, userID, func(s *models.UserSession) {
		applyPlan(s, plan, generatedAt, daysRemaining)
	})
}

func (r *RedisStore) Close() error { return nil }
