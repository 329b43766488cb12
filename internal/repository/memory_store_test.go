package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"studyplanner-backend/internal/models"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nobody")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Put(ctx, &models.UserSession{UserID: "u1", Subject: "Physics"})
	store.Put(ctx, &models.UserSession{UserID: "u1", Subject: "Chemistry"})

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Subject != "Chemistry" {
		t.Errorf("Expected last write to win, got %q", got.Subject)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(ctx, &models.UserSession{UserID: "u1"})
	store.SetProgress(ctx, "u1", 1, true, "")

	got, _ := store.Get(ctx, "u1")
	got.Progress[1] = models.DayProgress{Completed: false}
	got.Subject = "mutated"

	again, _ := store.Get(ctx, "u1")
	if !again.Progress[1].Completed || again.Subject == "mutated" {
		t.Error("Mutating a returned session must not change the store")
	}
}

func TestMemoryStore_SetProgress(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.SetProgress(ctx, "u1", 1, true, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound, got %v", err)
	}

	store.Put(ctx, &models.UserSession{UserID: "u1"})
	p, err := store.SetProgress(ctx, "u1", 3, true, "read chapter 2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}

	store.SetProgress(ctx, "u1", 3, false, "redo")
	got, _ := store.Get(ctx, "u1")
	if got.Progress[3].Completed || got.Progress[3].Notes != "redo" {
		t.Errorf("Expected day 3 overwritten, got %+v", got.Progress[3])
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(ctx, &models.UserSession{UserID: "u1"})

	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected session gone, got %v", err)
	}
}

func TestMemoryStore_ConcurrentProgress(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(ctx, &models.UserSession{UserID: "u1"})

	var wg sync.WaitGroup
	for day := 1; day <= 50; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			store.SetProgress(ctx, "u1", day, true, "")
		}(day)
	}
	wg.Wait()

	got, _ := store.Get(ctx, "u1")
	if len(got.Progress) != 50 {
		t.Errorf("Expected 50 days recorded, got %d", len(got.Progress))
	}
}
