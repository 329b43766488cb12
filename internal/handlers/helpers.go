package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}
}

func errorRespWithDetails(code, message, details string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Details = details
	return resp
}

// fieldDetails renders validation fields as "a: msg; b: msg" in key order.
func fieldDetails(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *services.ValidationError
		unsupportedErr *services.UnsupportedFileTypeError
		tooLargeErr    *services.FileTooLargeError
		notFoundErr    *services.SessionNotFoundError
		extractionErr  *services.ExtractionError
		analysisErr    *services.AnalysisError
		planErr        *services.PlanGenerationError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithDetails("VALIDATION_ERROR", "Validation failed", fieldDetails(validationErr.Fields), r))
	case errors.As(err, &unsupportedErr):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FILE_TYPE", unsupportedErr.Error(), r))
	case errors.As(err, &tooLargeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", tooLargeErr.Error(), r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Error(), r))
	case errors.As(err, &extractionErr):
		writeJSON(w, http.StatusInternalServerError, errorResp("EXTRACTION_FAILED", extractionErr.Error(), r))
	case errors.As(err, &analysisErr):
		writeJSON(w, http.StatusInternalServerError, errorResp("ANALYSIS_FAILED", analysisErr.Error(), r))
	case errors.As(err, &planErr):
		writeJSON(w, http.StatusInternalServerError, errorRespWithDetails("PLAN_GENERATION_FAILED", "Failed to generate study plan", planErr.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
