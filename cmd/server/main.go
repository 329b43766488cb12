package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"studyplanner-backend/internal/config"
	"studyplanner-backend/internal/database"
	"studyplanner-backend/internal/handlers"
	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/router"
	"studyplanner-backend/internal/services"
	"studyplanner-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Study Planner Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	ctx := context.Background()

	// ──── Step 2: Initialize Session Store ────
	var store repository.SessionStore
	switch cfg.SessionStore {
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.RedisURL, database.RedisSessions)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer client.Close()
		store = repository.NewRedisStore(client)
		log.Println("✓ Redis session store connected")

	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.PoolSize{
			MaxConns: int32(cfg.PostgresMaxConns),
			MinConns: int32(cfg.PostgresMinConns),
		})
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		if err := database.RunMigrations(ctx, pool); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		store = repository.NewPostgresStore(pool)
		log.Println("✓ PostgreSQL session store connected, migrations applied")

	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("✗ SQLite open failed: %v", err)
		}
		store = repository.NewSQLiteStore(db)
		log.Printf("✓ SQLite session store at %s", cfg.SQLitePath)

	default:
		store = repository.NewMemoryStore()
		log.Println("✓ In-memory session store")
	}
	defer store.Close()

	// ──── Step 3: Initialize Model Client ────
	var (
		generator services.TextGenerator
		ocr       services.ImageTranscriber
	)
	switch {
	case !cfg.AIEnabled():
		log.Printf("✗ No API key for provider %q, using fallback analysis and plans", cfg.LLMProvider)
	case cfg.LLMProvider == "groq":
		groq := services.NewOpenAICompatService(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
		generator, ocr = groq, groq
		log.Printf("✓ Groq client initialized (%s)", cfg.GroqModel)
	default:
		geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		generator, ocr = geminiService, geminiService
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	}
	modelTimeout := time.Duration(cfg.ModelTimeoutSeconds) * time.Second

	// ──── Step 4: Initialize Search Provider ────
	var search services.SearchProvider
	switch cfg.SearchProvider {
	case "scrape":
		search = services.NewScrapeSearchProvider(cfg.SearchURL, time.Duration(cfg.SearchTimeoutSeconds)*time.Second)
	case "none":
		search = services.NoopSearchProvider{}
	default:
		search = services.StaticSearchProvider{}
	}
	log.Printf("✓ Search provider: %s", cfg.SearchProvider)

	// ──── Step 5: Start WebSocket Hub ────
	var events *redis.Client
	if cfg.WSFanout == "redis" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL, database.RedisEvents)
		if err != nil {
			log.Fatalf("✗ Redis pub/sub connection failed: %v", err)
		}
		defer client.Close()
		events = client
	}
	wsHub := websocket.NewHub(events)
	log.Printf("✓ WebSocket hub started (%s fan-out)", cfg.WSFanout)

	// ──── Initialize Services ────
	fileExtractService := services.NewFileExtractService(ocr, cfg.PDFExtractionEnabled, modelTimeout)
	analysisService := services.NewAnalysisService(generator, modelTimeout)
	planner := services.NewPlanner(generator, modelTimeout)
	legacyService := services.NewLegacyPlanService(generator, modelTimeout)
	syllabusService := services.NewSyllabusService(store, fileExtractService, analysisService, planner, search, wsHub)

	// ──── Initialize Handlers ────
	syllabusHandler := handlers.NewSyllabusHandler(syllabusService, cfg.UploadDir, cfg.UploadMaxBytes)
	legacyHandler := handlers.NewLegacyHandler(legacyService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(syllabusHandler, legacyHandler, wsHub, cfg.FrontendURL, cfg.IsDevelopment())

	// Model calls can take most of a minute; keep the write timeout above them.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: modelTimeout*2 + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ Study Planner Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/syllabus", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/syllabus/ws?userId=...", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
