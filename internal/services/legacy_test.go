package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLegacyPlan_Template(t *testing.T) {
	plan, err := NewLegacyPlanService(nil, 0).Generate(context.Background(), "Maths,Physics", 14, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{
		"**Your Study Plan for 14 Days**",
		"Review basic concepts of Maths (3 hours)",
		"Study advanced topics in Physics (3 hours)",
		"Take mock tests (2 hours)",
		"**Day 14: Final Revision**",
		"- Time: 7 hours",
	} {
		if !strings.Contains(plan, want) {
			t.Errorf("Expected plan to contain %q", want)
		}
	}
}

func TestLegacyPlan_TemplateDefaults(t *testing.T) {
	plan, _ := NewLegacyPlanService(nil, 0).Generate(context.Background(), "", 3, 4)

	if !strings.Contains(plan, "Review basic concepts of main subject") {
		t.Error("Expected default first subject")
	}
	if !strings.Contains(plan, "Study advanced topics in second subject") {
		t.Error("Expected default second subject")
	}
}

func TestLegacyPlan_Model(t *testing.T) {
	gen := &stubGenerator{reply: "Day 1: read."}
	plan, err := NewLegacyPlanService(gen, 0).Generate(context.Background(), "Maths", 5, 2)
	if err != nil || plan != "Day 1: read." {
		t.Fatalf("Expected model text, got %q / %v", plan, err)
	}
	if !strings.Contains(gen.prompts[0], "5 days until their exam") {
		t.Errorf("Unexpected prompt %q", gen.prompts[0])
	}

	_, err = NewLegacyPlanService(&stubGenerator{err: errors.New("down")}, 0).Generate(context.Background(), "Maths", 5, 2)
	var pErr *PlanGenerationError
	if !errors.As(err, &pErr) {
		t.Errorf("Expected PlanGenerationError, got %v", err)
	}
}
