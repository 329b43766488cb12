package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/services"
)

type LegacyHandler struct {
	service *services.LegacyPlanService
}

func NewLegacyHandler(service *services.LegacyPlanService) *LegacyHandler {
	return &LegacyHandler{service: service}
}

// GeneratePlan answers POST /generate-plan with a free-text plan.
func (h *LegacyHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.LegacyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("BAD_REQUEST", "Invalid request body", r))
		return
	}
	if req.Days < 1 || req.Hours < 1 || req.Hours > services.MaxHoursPerDay {
		writeJSON(w, http.StatusBadRequest, errorRespWithDetails("VALIDATION_ERROR", "Validation failed",
			fmt.Sprintf("days and hours must be positive integers, hours at most %d", services.MaxHoursPerDay), r))
		return
	}

	plan, err := h.service.Generate(r.Context(), req.Subjects, int(req.Days), int(req.Hours))
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("PLAN_GENERATION_FAILED", "Failed to generate plan.", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}

// Index is the service banner served at GET /.
func Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "AI Study Planner API is running",
		"version": "2.0.0",
		"features": []string{
			"Syllabus upload (text, PDF, Word, images)",
			"Topic extraction and weightage analysis",
			"Online syllabus research",
			"Intelligent study planning",
			"Progress tracking",
			"User data persistence",
		},
	})
}
