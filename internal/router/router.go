package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyplanner-backend/internal/handlers"
	"studyplanner-backend/internal/middleware"
	"studyplanner-backend/internal/websocket"
)

func New(
	syllabusHandler *handlers.SyllabusHandler,
	legacyHandler *handlers.LegacyHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	corsDebug bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL, corsDebug))

	r.Get("/", handlers.Index)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Free-text plan kept for older clients
	r.Post("/generate-plan", legacyHandler.GeneratePlan)

	r.Route("/api/syllabus", func(r chi.Router) {
		r.Post("/upload", syllabusHandler.Upload)
		r.Post("/generate-plan", syllabusHandler.GeneratePlan)
		r.Get("/user/{userId}", syllabusHandler.GetUser)
		r.Put("/progress", syllabusHandler.UpdateProgress)
		r.Get("/search", syllabusHandler.Search)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
