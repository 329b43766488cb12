package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"studyplanner-backend/internal/models"
)

const analysisTemperature = 0.3

type AnalysisService struct {
	generator TextGenerator
	timeout   time.Duration
}

func NewAnalysisService(generator TextGenerator, timeout time.Duration) *AnalysisService {
	return &AnalysisService{generator: generator, timeout: timeout}
}

// Analyze asks the model for a topic breakdown of the syllabus text. Without a
// configured model it returns a fixed three-topic analysis for the subject.
func (s *AnalysisService) Analyze(ctx context.Context, text, subject, examType string) (*models.TopicAnalysis, error) {
	if s.generator == nil {
		return DefaultAnalysis(subject), nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.generator.GenerateText(ctx, buildAnalysisPrompt(text, subject, examType), analysisTemperature)
	if err != nil {
		return nil, &AnalysisError{Message: err.Error(), Err: err}
	}

	var analysis models.TopicAnalysis
	if err := json.Unmarshal([]byte(trimCodeFences(raw)), &analysis); err != nil {
		return nil, &AnalysisError{Message: "model reply is not valid JSON", Err: err}
	}

	if analysis.TotalTopics == 0 {
		analysis.TotalTopics = len(analysis.Topics)
	}

	return &analysis, nil
}

// DefaultAnalysis is the analysis used when no model is configured. It does
// not depend on the syllabus text.
func DefaultAnalysis(subject string) *models.TopicAnalysis {
	return &models.TopicAnalysis{
		Topics: []models.Topic{
			{
				Name:           subject + " - Fundamentals",
				Subtopics:      []string{"Basic Concepts", "Core Principles", "Key Definitions"},
				Importance:     "High",
				Weightage:      35,
				Complexity:     "Beginner",
				SuggestedHours: 6,
			},
			{
				Name:           subject + " - Advanced Topics",
				Subtopics:      []string{"Complex Problems", "Advanced Applications", "Case Studies"},
				Importance:     "High",
				Weightage:      30,
				Complexity:     "Advanced",
				SuggestedHours: 8,
			},
			{
				Name:           subject + " - Practice & Revision",
				Subtopics:      []string{"Problem Solving", "Mock Tests", "Previous Papers"},
				Importance:     "Medium",
				Weightage:      25,
				Complexity:     "Intermediate",
				SuggestedHours: 4,
			},
		},
		TotalTopics:         3,
		EstimatedTotalHours: 18,
	}
}

func buildAnalysisPrompt(text, subject, examType string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Analyze the following syllabus for %s (%s exam) and extract:\n\n", subject, examType))
	b.WriteString("1. All topics and subtopics clearly\n")
	b.WriteString("2. Importance level (High/Medium/Low) for each topic\n")
	b.WriteString("3. Estimated exam weightage percentage for each topic\n")
	b.WriteString("4. Complexity level (Beginner/Intermediate/Advanced)\n")
	b.WriteString("5. Suggested study time allocation\n\n")
	b.WriteString("Syllabus Text:\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString("Respond ONLY with JSON in this structure:\n")
	b.WriteString(`{
  "topics": [
    {
      "name": "Topic Name",
      "subtopics": ["Subtopic 1", "Subtopic 2"],
      "importance": "High/Medium/Low",
      "weightage": 25,
      "complexity": "Beginner/Intermediate/Advanced",
      "suggestedHours": 8
    }
  ],
  "totalTopics": 10,
  "estimatedTotalHours": 80
}
`)

	return b.String()
}
