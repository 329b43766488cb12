package repository

import (
	"context"
	"sync"
	"time"

	"studyplanner-backend/internal/models"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.UserSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.UserSession)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*models.UserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *MemoryStore) Put(_ context.Context, session *models.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.UserID] = cloneSession(session)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

func (m *MemoryStore) SetProgress(_ context.Context, userID string, day int, completed bool, notes string) (models.DayProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return models.DayProgress{}, ErrSessionNotFound
	}
	p := newDayProgress(completed, notes)
	applyProgress(s, day, p)
	return p, nil
}

func (m *MemoryStore) SetPlan(_ context.Context, userID string, plan *models.StudyPlan, generatedAt time.Time, daysRemaining int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	applyPlan(s, plan, generatedAt, daysRemaining)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// cloneSession copies the mutable parts so callers never share the stored map.
func cloneSession(s *models.UserSession) *models.UserSession {
	c := *s
	if s.Progress != nil {
		c.Progress = make(map[int]models.DayProgress, len(s.Progress))
		for k, v := range s.Progress {
			c.Progress[k] = v
		}
	}
	return &c
}
