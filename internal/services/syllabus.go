package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/repository"
)

const (
	defaultExamDays    = 30
	defaultHoursPerDay = 6

	EventPlanGenerated  = "plan_generated"
	EventProgressUpdate = "progress_updated"
)

type Extractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text, subject, examType string) (*models.TopicAnalysis, error)
}

// EventPublisher pushes live updates to a user's open sockets.
type EventPublisher interface {
	Publish(ctx context.Context, userID string, msg interface{})
}

type UploadInput struct {
	UserID      string
	Subject     string
	ExamType    string
	ExamDate    string
	HoursPerDay string
	FilePath    string
	MimeType    string
}

type UploadResult struct {
	Session       *models.UserSession
	ExtractedText string
}

type PlanResult struct {
	Plan     *models.StudyPlan
	Source   PlanSource
	UserInfo models.PlanUser
}

// SyllabusService runs the upload → analyze → plan → progress flow on top of
// a session store.
type SyllabusService struct {
	store     repository.SessionStore
	extractor Extractor
	analyzer  Analyzer
	planner   *Planner
	search    SearchProvider
	publisher EventPublisher
	now       func() time.Time
}

func NewSyllabusService(
	store repository.SessionStore,
	extractor Extractor,
	analyzer Analyzer,
	planner *Planner,
	search SearchProvider,
	publisher EventPublisher,
) *SyllabusService {
	if search == nil {
		search = NoopSearchProvider{}
	}
	return &SyllabusService{
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		planner:   planner,
		search:    search,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *SyllabusService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if !IsAllowedMimeType(in.MimeType) {
		return nil, &UnsupportedFileTypeError{MimeType: in.MimeType}
	}

	text, err := s.extractor.Extract(ctx, in.FilePath, in.MimeType)
	if err != nil {
		return nil, err
	}

	onlineResults := s.search.Search(ctx, in.Subject, in.ExamType)

	analysis, err := s.analyzer.Analyze(ctx, text, in.Subject, in.ExamType)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = uuid.NewString()
	}

	hours := models.ParseLeadingInt(in.HoursPerDay)
	if hours < 1 {
		hours = defaultHoursPerDay
	}
	if hours > MaxHoursPerDay {
		return nil, hoursTooHigh()
	}

	now := s.now()
	session := &models.UserSession{
		UserID:        userID,
		Subject:       in.Subject,
		ExamType:      in.ExamType,
		ExamDate:      in.ExamDate,
		HoursPerDay:   hours,
		DaysRemaining: s.daysRemaining(in.ExamDate, now),
		SyllabusText:  text,
		Analysis:      analysis,
		OnlineResults: onlineResults,
		UploadedAt:    now.UTC(),
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	log.Printf("Syllabus stored for user %s (%d topics)", userID, analysis.TotalTopics)

	return &UploadResult{Session: session, ExtractedText: text}, nil
}

// GeneratePlan builds a plan from the request, filling blanks from the stored
// session. A missing session is not an error; the plan is just not saved.
func (s *SyllabusService) GeneratePlan(ctx context.Context, req models.GeneratePlanRequest) (*PlanResult, error) {
	var session *models.UserSession
	if req.UserID != "" {
		stored, err := s.store.Get(ctx, req.UserID)
		switch {
		case err == nil:
			session = stored
		case errors.Is(err, repository.ErrSessionNotFound):
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	subject, examType, examDate := req.Subject, req.ExamType, req.ExamDate
	hours := int(req.HoursPerDay)
	var topics []models.Topic
	if session != nil {
		if subject == "" {
			subject = session.Subject
		}
		if examType == "" {
			examType = session.ExamType
		}
		if examDate == "" {
			examDate = session.ExamDate
		}
		if hours < 1 {
			hours = session.HoursPerDay
		}
		if session.Analysis != nil {
			topics = session.Analysis.Topics
		}
	}
	if hours < 1 {
		hours = defaultHoursPerDay
	}
	if hours > MaxHoursPerDay {
		return nil, hoursTooHigh()
	}

	now := s.now()
	var exam time.Time
	if strings.TrimSpace(examDate) == "" {
		exam = now.Add(defaultExamDays * 24 * time.Hour)
	} else {
		parsed, err := ParseExamDate(examDate)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"examDate": "must be a date like 2006-01-02"}}
		}
		exam = parsed
	}
	totalDays := DaysUntil(exam, now)

	plan, source, err := s.planner.Generate(ctx, PlanRequest{
		TotalDays:   totalDays,
		HoursPerDay: hours,
		StartDate:   now,
		ExamDate:    exam,
		Subject:     subject,
		ExamType:    examType,
		Preferences: req.Preferences,
		Topics:      topics,
	})
	if err != nil {
		return nil, err
	}

	if session != nil {
		err := s.store.SetPlan(ctx, session.UserID, plan, now, totalDays)
		switch {
		case err == nil:
			s.publish(ctx, session.UserID, EventPlanGenerated, plan)
		case errors.Is(err, repository.ErrSessionNotFound):
			// deleted while the plan was being generated
		default:
			return nil, fmt.Errorf("save plan: %w", err)
		}
	}

	return &PlanResult{
		Plan:   plan,
		Source: source,
		UserInfo: models.PlanUser{
			Subject:       subject,
			ExamType:      examType,
			ExamDate:      exam.UTC().Format(isoDateLayout),
			DaysRemaining: totalDays,
			HoursPerDay:   hours,
			TotalHours:    totalDays * hours,
		},
	}, nil
}

func (s *SyllabusService) GetSession(ctx context.Context, userID string) (*models.UserSession, error) {
	session, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, &SessionNotFoundError{UserID: userID}
	}
	if err != nil {
		return nil, err
	}

	session.DaysRemaining = s.daysRemaining(session.ExamDate, s.now())
	return session, nil
}

func (s *SyllabusService) UpdateProgress(ctx context.Context, req models.ProgressRequest) (models.DayProgress, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.UserID) == "" {
		fields["userId"] = "is required"
	}
	if req.Day < 1 {
		fields["day"] = "must be at least 1"
	}
	if len(fields) > 0 {
		return models.DayProgress{}, &ValidationError{Fields: fields}
	}

	progress, err := s.store.SetProgress(ctx, req.UserID, req.Day, req.Completed, req.Notes)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return models.DayProgress{}, &SessionNotFoundError{UserID: req.UserID}
	}
	if err != nil {
		return models.DayProgress{}, err
	}

	s.publish(ctx, req.UserID, EventProgressUpdate, models.ProgressEvent{
		UserID:   req.UserID,
		Day:      req.Day,
		Progress: progress,
	})

	return progress, nil
}

func (s *SyllabusService) Search(ctx context.Context, subject, examType string) []models.SearchResult {
	return s.search.Search(ctx, subject, examType)
}

func (s *SyllabusService) publish(ctx context.Context, userID, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, userID, models.WSMessage{Type: eventType, Payload: payload})
}

func hoursTooHigh() error {
	return &ValidationError{Fields: map[string]string{
		"hoursPerDay": fmt.Sprintf("must be at most %d", MaxHoursPerDay),
	}}
}

// daysRemaining falls back to the default horizon when the stored date is
// missing or unreadable.
func (s *SyllabusService) daysRemaining(examDate string, now time.Time) int {
	exam, err := ParseExamDate(examDate)
	if err != nil {
		return defaultExamDays
	}
	return DaysUntil(exam, now)
}
