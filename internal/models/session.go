package models

import "time"

// UserSession is everything the server remembers about one uploader.
type UserSession struct {
	UserID        string              `json:"userId"`
	Subject       string              `json:"subject"`
	ExamType      string              `json:"examType"`
	ExamDate      string              `json:"examDate"`
	HoursPerDay   int                 `json:"hoursPerDay"`
	DaysRemaining int                 `json:"daysRemaining"`
	SyllabusText  string              `json:"syllabusText,omitempty"`
	Analysis      *TopicAnalysis      `json:"analysis,omitempty"`
	OnlineResults []SearchResult      `json:"onlineResults"`
	StudyPlan     *StudyPlan          `json:"studyPlan,omitempty"`
	Progress      map[int]DayProgress `json:"progress,omitempty"`
	UploadedAt    time.Time           `json:"uploadedAt"`
	GeneratedAt   *time.Time          `json:"generatedAt,omitempty"`
}

type DayProgress struct {
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary is the public view returned by GET /user/{userId}.
type SessionSummary struct {
	UserID        string              `json:"userId"`
	Subject       string              `json:"subject"`
	ExamType      string              `json:"examType"`
	ExamDate      string              `json:"examDate"`
	DaysRemaining int                 `json:"daysRemaining"`
	HoursPerDay   int                 `json:"hoursPerDay"`
	Analysis      *TopicAnalysis      `json:"analysis"`
	StudyPlan     *StudyPlan          `json:"studyPlan"`
	Progress      map[int]DayProgress `json:"progress"`
	UploadedAt    time.Time           `json:"uploadedAt"`
	GeneratedAt   *time.Time          `json:"generatedAt,omitempty"`
}

func (s *UserSession) Summary() SessionSummary {
	progress := s.Progress
	if progress == nil {
		progress = map[int]DayProgress{}
	}
	return SessionSummary{
		UserID:        s.UserID,
		Subject:       s.Subject,
		ExamType:      s.ExamType,
		ExamDate:      s.ExamDate,
		DaysRemaining: s.DaysRemaining,
		HoursPerDay:   s.HoursPerDay,
		Analysis:      s.Analysis,
		StudyPlan:     s.StudyPlan,
		Progress:      progress,
		UploadedAt:    s.UploadedAt,
		GeneratedAt:   s.GeneratedAt,
	}
}
