package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/services"
)

const (
	// multipartOverhead leaves room for form fields and part headers on top of
	// the file cap.
	multipartOverhead = 1 << 20
	extractPreviewLen = 500
)

type SyllabusHandler struct {
	service   *services.SyllabusService
	uploadDir string
	maxBytes  int64
}

func NewSyllabusHandler(service *services.SyllabusService, uploadDir string, maxBytes int64) *SyllabusHandler {
	return &SyllabusHandler{
		service:   service,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
	}
}

func (h *SyllabusHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tooLarge := &services.FileTooLargeError{Limit: h.maxBytes}
	if r.ContentLength > h.maxBytes+multipartOverhead {
		handleServiceError(w, r, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			handleServiceError(w, r, tooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("BAD_REQUEST", "Invalid multipart form", r))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("syllabus")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("NO_FILE", "No file uploaded", r))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !services.IsAllowedMimeType(mimeType) {
		handleServiceError(w, r, &services.UnsupportedFileTypeError{MimeType: mimeType})
		return
	}
	if header.Size > h.maxBytes {
		handleServiceError(w, r, tooLarge)
		return
	}

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save uploaded file", r))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("File cleanup error (non-critical): %v", err)
		}
	}()

	result, err := h.service.Upload(r.Context(), services.UploadInput{
		UserID:      r.FormValue("userId"),
		Subject:     r.FormValue("subject"),
		ExamType:    r.FormValue("examType"),
		ExamDate:    r.FormValue("examDate"),
		HoursPerDay: r.FormValue("hoursPerDay"),
		FilePath:    path,
		MimeType:    mimeType,
	})
	if err != nil {
		log.Printf("Upload error: %v", err)
		handleServiceError(w, r, err)
		return
	}

	session := result.Session
	writeJSON(w, http.StatusOK, models.UploadResponse{
		Success:       true,
		UserID:        session.UserID,
		Analysis:      session.Analysis,
		OnlineResults: session.OnlineResults,
		DaysRemaining: session.DaysRemaining,
		ExtractedText: preview(result.ExtractedText, extractPreviewLen),
		Message: fmt.Sprintf("Syllabus uploaded and analyzed successfully! Found %d main topics from your uploaded file.",
			session.Analysis.TotalTopics),
	})
}

// saveUpload writes the part to uploadDir as <uuid>-<unix millis><ext>.
func (h *SyllabusHandler) saveUpload(src io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixMilli(), strings.ToLower(filepath.Ext(originalName)))
	path := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

func (h *SyllabusHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("BAD_REQUEST", "Invalid request body", r))
		return
	}

	result, err := h.service.GeneratePlan(r.Context(), req)
	if err != nil {
		log.Printf("Plan generation error: %v", err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GeneratePlanResponse{
		Success:   true,
		StudyPlan: result.Plan,
		Source:    string(result.Source),
		UserInfo:  result.UserInfo,
	})
}

func (h *SyllabusHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	session, err := h.service.GetSession(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"userInfo": session.Summary(),
	})
}

func (h *SyllabusHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("BAD_REQUEST", "Invalid request body", r))
		return
	}

	progress, err := h.service.UpdateProgress(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Progress updated successfully",
		"day":      req.Day,
		"progress": progress,
	})
}

func (h *SyllabusHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results := h.service.Search(r.Context(), q.Get("subject"), q.Get("examType"))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}
