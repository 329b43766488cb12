package repository

import (
	"context"
	"errors"
	"time"

	"studyplanner-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists one UserSession per user id. Writes for the same id
// are last-write-wins.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.UserSession, error)
	Put(ctx context.Context, session *models.UserSession) error
	Delete(ctx context.Context, userID string) error
	SetProgress(ctx context.Context, userID string, day int, completed bool, notes string) (models.DayProgress, error)
	// SetPlan stores a generated plan without touching the rest of the
	// session, so progress written meanwhile survives.
	SetPlan(ctx context.Context, userID string, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) error
	Close() error
}

func newDayProgress(completed bool, notes string) models.DayProgress {
	return models.DayProgress{
		Completed: completed,
		Notes:     notes,
		UpdatedAt: time.Now().UTC(),
	}
}

func applyPlan(s *models.UserSession, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) {
	generatedAt = generatedAt.UTC()
	s.StudyPlan = plan
	s.GeneratedAt = &generatedAt
	s.DaysRemaining = daysRemaining
}

func applyProgress(s *models.UserSession, day int, p models.DayProgress) {
	if s.Progress == nil {
		s.Progress = make(map[int]models.DayProgress)
	}
	s.Progress[day] = p
}
