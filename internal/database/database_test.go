package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := embeddedMigrations()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("Expected embedded migrations")
	}
	if migrations[0].version != 1 || migrations[0].name != "001_syllabus_sessions.sql" {
		t.Errorf("Unexpected first migration %+v", migrations[0])
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].version <= migrations[i-1].version {
			t.Errorf("Migrations out of order: %+v", migrations)
		}
	}

	script, err := migrationFiles.ReadFile("migrations/" + migrations[0].name)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.Contains(string(script), "syllabus_sessions") {
		t.Error("Expected the first migration to create syllabus_sessions")
	}
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr(), RedisEvents)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer client.Close()

	if _, err := ConnectRedis(context.Background(), "not-a-url", RedisSessions); err == nil {
		t.Error("Expected an error for a malformed URL")
	}
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), "redis://"+addr, RedisSessions)
	if err == nil || !strings.Contains(err.Error(), "sessions") {
		t.Errorf("Expected a ping error naming the role, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()

	var name string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'syllabus_sessions'").Scan(&name); err != nil {
		t.Fatalf("Expected syllabus_sessions table: %v", err)
	}
}
