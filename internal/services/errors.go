package services

import "fmt"

type UnsupportedFileTypeError struct{ MimeType string }

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", e.MimeType)
}

type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return "Failed to extract text from file: " + e.Message
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Message == "" {
		return "Failed to analyze syllabus"
	}
	return "Failed to analyze syllabus: " + e.Message
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// PlanGenerationError only surfaces when the deterministic fallback itself
// fails, which it does not for valid input.
type PlanGenerationError struct{ Message string }

func (e *PlanGenerationError) Error() string { return "Failed to generate study plan: " + e.Message }

type SessionNotFoundError struct{ UserID string }

func (e *SessionNotFoundError) Error() string { return "User data not found" }

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type FileTooLargeError struct{ Limit int64 }

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("File size exceeds %dMB limit", e.Limit/(1024*1024))
}
