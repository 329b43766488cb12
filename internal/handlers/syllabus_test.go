package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/services"
)

const testMaxBytes = 10 * 1024 * 1024

type stubExtractor struct {
	text     string
	calls    int
	lastPath string
}

func (s *stubExtractor) Extract(_ context.Context, path, _ string) (string, error) {
	s.calls++
	s.lastPath = path
	return s.text, nil
}

type testEnv struct {
	router    http.Handler
	store     *repository.MemoryStore
	extractor *stubExtractor
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	extractor := &stubExtractor{text: strings.Repeat("Unit 1: Mechanics. ", 40)}
	svc := services.NewSyllabusService(
		store,
		extractor,
		services.NewAnalysisService(nil, 0),
		services.NewPlanner(nil, 0),
		services.StaticSearchProvider{},
		nil,
	)
	uploadDir := t.TempDir()
	h := NewSyllabusHandler(svc, uploadDir, testMaxBytes)

	r := chi.NewRouter()
	r.Post("/api/syllabus/upload", h.Upload)
	r.Post("/api/syllabus/generate-plan", h.GeneratePlan)
	r.Get("/api/syllabus/user/{userId}", h.GetUser)
	r.Put("/api/syllabus/progress", h.UpdateProgress)
	r.Get("/api/syllabus/search", h.Search)

	return &testEnv{router: r, store: store, extractor: extractor, uploadDir: uploadDir}
}

func multipartBody(t *testing.T, contentType string, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		w.WriteField(k, v)
	}

	if file != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="syllabus"; filename="syllabus.txt"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(file)
	}

	w.Close()
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

// ─── Upload ───

func TestUpload_Success(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "text/plain", []byte("Unit 1"), map[string]string{
		"subject":     "Physics",
		"examType":    "University",
		"examDate":    "2099-01-01",
		"hoursPerDay": "4",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.UploadResponse
	decodeBody(t, rr, &resp)

	if !resp.Success || resp.UserID == "" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.Analysis == nil || resp.Analysis.TotalTopics != 3 {
		t.Errorf("Expected fallback analysis, got %+v", resp.Analysis)
	}
	if resp.Message != "Syllabus uploaded and analyzed successfully! Found 3 main topics from your uploaded file." {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if len([]rune(resp.ExtractedText)) != 503 || !strings.HasSuffix(resp.ExtractedText, "...") {
		t.Errorf("Expected 500 char preview plus ellipsis, got %d chars", len(resp.ExtractedText))
	}
	if len(resp.OnlineResults) != 3 {
		t.Errorf("Expected 3 online results, got %d", len(resp.OnlineResults))
	}

	if env.extractor.calls != 1 {
		t.Errorf("Expected one extraction, got %d", env.extractor.calls)
	}
	if _, err := os.Stat(env.extractor.lastPath); !os.IsNotExist(err) {
		t.Errorf("Expected temporary upload %s to be removed", env.extractor.lastPath)
	}

	if _, err := env.store.Get(context.Background(), resp.UserID); err != nil {
		t.Errorf("Expected session stored: %v", err)
	}
}

func TestUpload_NoFile(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "", nil, map[string]string{"subject": "Physics"})

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error != "No file uploaded" {
		t.Errorf("Unexpected error %q", resp.Error)
	}
}

func TestUpload_UnsupportedTypeRejectedBeforeExtraction(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "application/zip", []byte("PK\x03\x04"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("Expected 415, got %d", rr.Code)
	}
	if env.extractor.calls != 0 {
		t.Errorf("Extractor must not run, ran %d times", env.extractor.calls)
	}
	entries, _ := os.ReadDir(env.uploadDir)
	if len(entries) != 0 {
		t.Errorf("Nothing should be written to the upload dir, found %d files", len(entries))
	}
}

func TestUpload_TooLargeRejectedBeforeExtraction(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "text/plain", bytes.Repeat([]byte("a"), testMaxBytes+1), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d", rr.Code)
	}
	if env.extractor.calls != 0 {
		t.Errorf("Extractor must not run, ran %d times", env.extractor.calls)
	}
}

func TestUpload_OversizedBodyRejectedByContentLength(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "text/plain", bytes.Repeat([]byte("a"), testMaxBytes+2*1024*1024), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d", rr.Code)
	}
}

// ─── Generate plan ───

func TestGeneratePlan_FallbackAndWriteBack(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(context.Background(), &models.UserSession{
		UserID:      "u1",
		Subject:     "Physics",
		ExamType:    "University",
		ExamDate:    "2099-01-01",
		HoursPerDay: 5,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/generate-plan",
		strings.NewReader(`{"userId":"u1","hoursPerDay":"6"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.GeneratePlanResponse
	decodeBody(t, rr, &resp)
	if !resp.Success || resp.Source != "fallback" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.UserInfo.HoursPerDay != 6 || resp.UserInfo.Subject != "Physics" {
		t.Errorf("Unexpected user info %+v", resp.UserInfo)
	}
	if resp.StudyPlan == nil || len(resp.StudyPlan.Days) != 10 {
		t.Fatalf("Expected a 10 day plan")
	}
	if resp.StudyPlan.Days[0].Focus != "Foundation Building" {
		t.Errorf("Unexpected first day %+v", resp.StudyPlan.Days[0])
	}

	stored, _ := env.store.Get(context.Background(), "u1")
	if stored.StudyPlan == nil {
		t.Error("Expected the plan stored on the session")
	}
}

func TestGeneratePlan_BadBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus/generate-plan", strings.NewReader(`{`))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

// ─── User / progress / search ───

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(context.Background(), &models.UserSession{UserID: "u1", Subject: "Physics", ExamDate: "2099-01-01"})

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{"existing", "u1", http.StatusOK},
		{"missing", "ghost", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/syllabus/user/"+tc.userID, nil)
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantStatus == http.StatusNotFound {
				var resp models.ErrorResponse
				decodeBody(t, rr, &resp)
				if resp.Error != "User data not found" || resp.Code != "NOT_FOUND" {
					t.Errorf("Unexpected error body %+v", resp)
				}
				return
			}

			var resp struct {
				Success  bool                  `json:"success"`
				UserInfo models.SessionSummary `json:"userInfo"`
			}
			decodeBody(t, rr, &resp)
			if !resp.Success || resp.UserInfo.Subject != "Physics" {
				t.Errorf("Unexpected body %+v", resp)
			}
		})
	}
}

func TestUpdateProgress(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(context.Background(), &models.UserSession{UserID: "u1"})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"userId":"u1","day":1,"completed":true,"notes":"done"}`, http.StatusOK},
		{"unknown user", `{"userId":"ghost","day":1,"completed":true}`, http.StatusNotFound},
		{"day zero", `{"userId":"u1","day":0,"completed":true}`, http.StatusBadRequest},
		{"bad json", `not json`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/syllabus/progress", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}

	stored, _ := env.store.Get(context.Background(), "u1")
	if !stored.Progress[1].Completed || stored.Progress[1].Notes != "done" {
		t.Errorf("Expected day 1 progress stored, got %+v", stored.Progress)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/syllabus/search?subject=Physics&examType=JEE", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var resp struct {
		Success bool                  `json:"success"`
		Results []models.SearchResult `json:"results"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Success || len(resp.Results) != 3 {
		t.Fatalf("Unexpected body %+v", resp)
	}
	if resp.Results[0].Title != "JEE Physics Syllabus - Official" {
		t.Errorf("Unexpected first result %+v", resp.Results[0])
	}
}

func TestFieldDetails(t *testing.T) {
	got := fieldDetails(map[string]string{"day": "must be at least 1", "userId": "is required"})
	want := fmt.Sprintf("%s; %s", "day: must be at least 1", "userId: is required")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
