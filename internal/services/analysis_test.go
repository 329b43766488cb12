package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestAnalyze_NoModelReturnsConstant(t *testing.T) {
	svc := NewAnalysisService(nil, 0)

	for _, text := range []string{"", "Unit 1: Mechanics\nUnit 2: Waves", "anything at all"} {
		got, err := svc.Analyze(context.Background(), text, "Physics", "University")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if got.TotalTopics != 3 || got.EstimatedTotalHours != 18 {
			t.Errorf("Expected 3 topics / 18 hours, got %d / %g", got.TotalTopics, got.EstimatedTotalHours)
		}

		var weights, hours []float64
		var names []string
		for _, topic := range got.Topics {
			weights = append(weights, topic.Weightage)
			hours = append(hours, topic.SuggestedHours)
			names = append(names, topic.Name)
		}
		if !reflect.DeepEqual(weights, []float64{35, 30, 25}) {
			t.Errorf("Expected weightages [35 30 25], got %v", weights)
		}
		if !reflect.DeepEqual(hours, []float64{6, 8, 4}) {
			t.Errorf("Expected hours [6 8 4], got %v", hours)
		}
		wantNames := []string{"Physics - Fundamentals", "Physics - Advanced Topics", "Physics - Practice & Revision"}
		if !reflect.DeepEqual(names, wantNames) {
			t.Errorf("Expected names %v, got %v", wantNames, names)
		}
	}
}

func TestAnalyze_ModelReply(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{"topics":[{"name":"Optics","subtopics":["Lenses"],"importance":"High","weightage":40,"complexity":"Intermediate","suggestedHours":10},{"name":"Waves","importance":"Low","weightage":10}],"estimatedTotalHours":14}` + "\n```"}

	got, err := NewAnalysisService(gen, 0).Analyze(context.Background(), "syllabus", "Physics", "School")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got.Topics) != 2 || got.Topics[0].Name != "Optics" {
		t.Errorf("Unexpected topics: %+v", got.Topics)
	}
	if got.TotalTopics != 2 {
		t.Errorf("Expected totalTopics back-filled to 2, got %d", got.TotalTopics)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"request error", &stubGenerator{err: errors.New("timeout")}},
		{"prose around json", &stubGenerator{reply: `Here it is: {"topics":[]}`}},
		{"not json", &stubGenerator{reply: "Topics: optics, waves"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAnalysisService(tc.gen, 0).Analyze(context.Background(), "text", "Physics", "")
			var aErr *AnalysisError
			if !errors.As(err, &aErr) {
				t.Fatalf("Expected AnalysisError, got %v", err)
			}
		})
	}
}
