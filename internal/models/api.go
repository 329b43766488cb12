package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string. Form inputs arrive as
// strings from the browser; anything unparsable or outside the int32 range
// decodes to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexInt(ParseLeadingInt(s))
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		*f = 0
		return nil
	}
	*f = FlexInt(int(n))
	return nil
}

// ParseLeadingInt reads the leading integer of s ("6 hours" -> 6) and
// returns 0 when there is none.
func ParseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

type GeneratePlanRequest struct {
	UserID      string                 `json:"userId"`
	ExamDate    string                 `json:"examDate"`
	HoursPerDay FlexInt                `json:"hoursPerDay"`
	Subject     string                 `json:"subject"`
	ExamType    string                 `json:"examType"`
	Preferences map[string]interface{} `json:"preferences"`
}

type GeneratePlanResponse struct {
	Success   bool       `json:"success"`
	StudyPlan *StudyPlan `json:"studyPlan"`
	Source    string     `json:"source"`
	UserInfo  PlanUser   `json:"userInfo"`
}

type PlanUser struct {
	Subject       string `json:"subject"`
	ExamType      string `json:"examType"`
	ExamDate      string `json:"examDate"`
	DaysRemaining int    `json:"daysRemaining"`
	HoursPerDay   int    `json:"hoursPerDay"`
	TotalHours    int    `json:"totalHours"`
}

type UploadResponse struct {
	Success       bool           `json:"success"`
	UserID        string         `json:"userId"`
	Analysis      *TopicAnalysis `json:"analysis"`
	OnlineResults []SearchResult `json:"onlineResults"`
	DaysRemaining int            `json:"daysRemaining"`
	ExtractedText string         `json:"extractedText"`
	Message       string         `json:"message"`
}

type ProgressRequest struct {
	UserID    string `json:"userId"`
	Day       int    `json:"day"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}

type LegacyPlanRequest struct {
	Subjects string  `json:"subjects"`
	Days     FlexInt `json:"days"`
	Hours    FlexInt `json:"hours"`
}

// WebSocket message envelope
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ProgressEvent struct {
	UserID   string      `json:"userId"`
	Day      int         `json:"day"`
	Progress DayProgress `json:"progress"`
}

// API Error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
