package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"studyplanner-backend/internal/models"
)

// RevisionCadenceDays marks every Nth day (0-based index) of the fallback
// schedule as a revision day, after the first/last-day rules.
const RevisionCadenceDays = 3

// MaxHoursPerDay is the largest daily study load a plan accepts.
const MaxHoursPerDay = 24

const (
	// maxMaterializedDays caps how many DayPlan entries the fallback emits.
	maxMaterializedDays = 10

	isoDateLayout   = "2006-01-02"
	titleDateLayout = "Mon Jan 02 2006"

	planTemperature = 0.4
)

var errAIUnavailable = errors.New("model provider is not configured")

type PlanSource string

const (
	PlanSourceAI       PlanSource = "ai"
	PlanSourceFallback PlanSource = "fallback"
)

type PlanRequest struct {
	TotalDays   int
	HoursPerDay int
	StartDate   time.Time
	ExamDate    time.Time
	Subject     string
	ExamType    string
	Preferences map[string]interface{}
	Topics      []models.Topic
}

type Planner struct {
	generator TextGenerator
	timeout   time.Duration
}

func NewPlanner(generator TextGenerator, timeout time.Duration) *Planner {
	return &Planner{generator: generator, timeout: timeout}
}

// Generate tries the model first and falls back to the deterministic plan on
// any failure. Model errors never reach the caller.
func (p *Planner) Generate(ctx context.Context, req PlanRequest) (plan *models.StudyPlan, source PlanSource, err error) {
	fields := map[string]string{}
	if req.TotalDays < 1 {
		fields["totalDays"] = "must be at least 1"
	}
	switch {
	case req.HoursPerDay < 1:
		fields["hoursPerDay"] = "must be at least 1"
	case req.HoursPerDay > MaxHoursPerDay:
		fields["hoursPerDay"] = fmt.Sprintf("must be at most %d", MaxHoursPerDay)
	}
	if len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	aiPlan, aiErr := p.tryExternal(ctx, req)
	if aiErr == nil {
		return aiPlan, PlanSourceAI, nil
	}
	if !errors.Is(aiErr, errAIUnavailable) {
		log.Printf("AI plan generation failed, using fallback: %v", aiErr)
	}

	defer func() {
		if r := recover(); r != nil {
			plan, source = nil, ""
			err = &PlanGenerationError{Message: fmt.Sprint(r)}
		}
	}()

	return FallbackPlan(req), PlanSourceFallback, nil
}

func (p *Planner) tryExternal(ctx context.Context, req PlanRequest) (*models.StudyPlan, error) {
	if p.generator == nil {
		return nil, errAIUnavailable
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.generator.GenerateText(ctx, buildPlanPrompt(req), planTemperature)
	if err != nil {
		return nil, err
	}

	cleaned, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var plan models.StudyPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse plan json: %w", err)
	}
	if len(plan.Days) == 0 {
		return nil, errors.New("model plan has no days")
	}

	if plan.TotalDays == 0 {
		plan.TotalDays = req.TotalDays
	}
	if plan.TotalHours == 0 {
		plan.TotalHours = req.TotalDays * req.HoursPerDay
	}
	if plan.StartDate == "" {
		plan.StartDate = dateOnly(req.StartDate).Format(isoDateLayout)
	}
	if plan.EndDate == "" {
		plan.EndDate = req.ExamDate.UTC().Format(isoDateLayout)
	}

	return &plan, nil
}

type dayKind int

const (
	dayFoundation dayKind = iota
	dayFinal
	dayRevision
	dayCore
)

func classifyDay(i, totalDays int) dayKind {
	switch {
	case i == 0:
		return dayFoundation
	case i == totalDays-1:
		return dayFinal
	case i%RevisionCadenceDays == 0:
		return dayRevision
	default:
		return dayCore
	}
}

// FallbackPlan builds the deterministic schedule. Same input, same output.
func FallbackPlan(req PlanRequest) *models.StudyPlan {
	totalDays := req.TotalDays
	hours := req.HoursPerDay

	start := dateOnly(req.StartDate)
	end := req.ExamDate.UTC()

	theoryHours := int(math.Floor(float64(hours) * 0.6))
	practiceHours := int(math.Floor(float64(hours) * 0.4))
	subjects := splitSubjects(req.Subject)

	n := totalDays
	if n > maxMaterializedDays {
		n = maxMaterializedDays
	}

	days := make([]models.DayPlan, 0, n)
	for i := 0; i < n; i++ {
		label := ""
		if len(subjects) > 0 {
			label = subjects[i%len(subjects)]
		}

		kind := classifyDay(i, totalDays)
		theory, practice := activityTexts(kind, label)

		days = append(days, models.DayPlan{
			Day:    i + 1,
			Date:   start.AddDate(0, 0, i).Format(isoDateLayout),
			Focus:  focusLabel(kind),
			Topics: dayTopics(kind, label),
			Activities: []models.Activity{
				{Activity: theory, Duration: fmt.Sprintf("%d hours", theoryHours), Type: "theory"},
				{Activity: practice, Duration: fmt.Sprintf("%d hours", practiceHours), Type: "practice"},
			},
			TotalTime:  fmt.Sprintf("%d hours", hours),
			Difficulty: difficulty(kind),
		})
	}

	subject := req.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Academic"
	}

	return &models.StudyPlan{
		PlanTitle: fmt.Sprintf("Study Plan for %s - %d Days (%s to %s)",
			subject, totalDays, start.Format(titleDateLayout), end.Format(titleDateLayout)),
		TotalDays:  totalDays,
		TotalHours: totalDays * hours,
		StartDate:  start.Format(isoDateLayout),
		EndDate:    end.Format(isoDateLayout),
		Days:       days,
		RevisionDays: []int{
			int(math.Floor(float64(totalDays) * 0.3)),
			int(math.Floor(float64(totalDays) * 0.6)),
			int(math.Floor(float64(totalDays) * 0.8)),
		},
		MockTestDays: []int{
			int(math.Floor(float64(totalDays) * 0.4)),
			int(math.Floor(float64(totalDays) * 0.7)),
			totalDays - 1,
		},
	}
}

func focusLabel(kind dayKind) string {
	switch kind {
	case dayFoundation:
		return "Foundation Building"
	case dayFinal:
		return "Final Revision"
	case dayRevision:
		return "Revision Day"
	default:
		return "Core Topics"
	}
}

func dayTopics(kind dayKind, label string) []string {
	switch kind {
	case dayFoundation:
		return []string{"Basic Concepts", "Introduction"}
	case dayFinal:
		return []string{"Final Review", "Last Minute Prep"}
	case dayRevision:
		return []string{"Previous Topics Review"}
	default:
		if label == "" {
			label = "Advanced Topics"
		}
		return []string{label, "Problem Solving"}
	}
}

func activityTexts(kind dayKind, label string) (theory, practice string) {
	switch kind {
	case dayFoundation:
		if label != "" {
			return "Study basic concepts of " + label, "Practice basic problems"
		}
		return "Study basic concepts", "Practice basic problems"
	case dayFinal:
		return "Final review of all topics", "Quick practice test"
	case dayRevision:
		return "Review previous topics", "Practice previous problems"
	default:
		if label != "" {
			return "Study " + label + " concepts", "Solve " + label + " problems"
		}
		return "Study advanced concepts", "Solve complex problems"
	}
}

func difficulty(kind dayKind) string {
	if kind == dayCore {
		return "Medium"
	}
	return "Easy"
}

func splitSubjects(subject string) []string {
	var out []string
	for _, s := range strings.Split(subject, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil is ceil((exam - now) / 24h), never less than 1. It works on
// epoch milliseconds since time.Duration saturates after ~292 years.
func DaysUntil(examDate, now time.Time) int {
	const msPerDay = 24 * 60 * 60 * 1000
	days := int(math.Ceil(float64(examDate.UnixMilli()-now.UnixMilli()) / msPerDay))
	if days < 1 {
		return 1
	}
	return days
}

// ParseExamDate accepts an ISO calendar date or a full RFC 3339 timestamp.
func ParseExamDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exam date %q", s)
	}
	return t, nil
}

func buildPlanPrompt(req PlanRequest) string {
	subject := req.Subject
	if subject == "" {
		subject = "Academic"
	}
	examType := req.ExamType
	if examType == "" {
		examType = "Academic"
	}

	start := dateOnly(req.StartDate)
	end := req.ExamDate.UTC()
	totalHours := req.TotalDays * req.HoursPerDay
	prefs, _ := json.Marshal(req.Preferences)
	if req.Preferences == nil {
		prefs = []byte("{}")
	}

	var b strings.Builder

	b.WriteString("Create a detailed day-wise study plan for a student with the following parameters:\n")
	b.WriteString(fmt.Sprintf("- Subject: %s\n", subject))
	b.WriteString(fmt.Sprintf("- Exam Type: %s\n", examType))
	b.WriteString(fmt.Sprintf("- Total days: %d\n", req.TotalDays))
	b.WriteString(fmt.Sprintf("- Hours per day: %d\n", req.HoursPerDay))
	b.WriteString(fmt.Sprintf("- Total hours: %d\n", totalHours))
	b.WriteString(fmt.Sprintf("- Start date: %s\n", start.Format(titleDateLayout)))
	b.WriteString(fmt.Sprintf("- Exam date: %s\n", end.Format(titleDateLayout)))
	b.WriteString(fmt.Sprintf("- User preferences: %s\n\n", prefs))

	if len(req.Topics) > 0 {
		b.WriteString("Topics with weightage and complexity:\n")
		for _, t := range req.Topics {
			b.WriteString(fmt.Sprintf("- %s (importance %s, weightage %g%%, complexity %s, ~%g hours)\n",
				t.Name, t.Importance, t.Weightage, t.Complexity, t.SuggestedHours))
		}
		b.WriteString("\n")
	}

	b.WriteString("Create a realistic study plan that:\n")
	b.WriteString(fmt.Sprintf("1. Starts from today (%s) and ends on exam day (%s)\n", start.Format(titleDateLayout), end.Format(titleDateLayout)))
	b.WriteString("2. Covers all topics progressively from basics to advanced\n")
	b.WriteString("3. Includes regular revision sessions (every 3-4 days)\n")
	b.WriteString("4. Has practice tests and mock exams (weekly)\n")
	b.WriteString(fmt.Sprintf("5. Balances workload with %d hours per day\n", req.HoursPerDay))
	b.WriteString("6. Includes rest days for better retention\n\n")

	b.WriteString("IMPORTANT: Respond ONLY with valid JSON. Do not include any comments, explanations, or text outside the JSON structure.\n\n")

	n := req.TotalDays
	if n > maxMaterializedDays {
		n = maxMaterializedDays
	}
	b.WriteString(fmt.Sprintf("Return this exact JSON structure with %d days (show first %d days if more than %d):\n", n, maxMaterializedDays, maxMaterializedDays))

	example := FallbackPlan(PlanRequest{
		TotalDays:   req.TotalDays,
		HoursPerDay: req.HoursPerDay,
		StartDate:   req.StartDate,
		ExamDate:    req.ExamDate,
		Subject:     req.Subject,
	})
	example.Days = example.Days[:1]
	schema, _ := json.MarshalIndent(example, "", "  ")
	b.Write(schema)
	b.WriteString("\n")

	return b.String()
}
