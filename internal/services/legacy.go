package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// LegacyPlanService serves the old free-text plan endpoint.
type LegacyPlanService struct {
	generator TextGenerator
	timeout   time.Duration
}

func NewLegacyPlanService(generator TextGenerator, timeout time.Duration) *LegacyPlanService {
	return &LegacyPlanService{generator: generator, timeout: timeout}
}

func (s *LegacyPlanService) Generate(ctx context.Context, subjects string, days, hours int) (string, error) {
	if s.generator == nil {
		return legacyTemplate(subjects, days, hours), nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(`You are an AI study planner. A student has %d days until their exam and wants to study the following subjects: %s.
They can study %d hours per day.

Create a day-wise study plan that:
  - Balances time between subjects
  - Suggests specific topics/activities per day
  - Includes one revision/mock test day
- Ends with a motivational note
`, days, subjects, hours)

	plan, err := s.generator.GenerateText(ctx, prompt, 0.7)
	if err != nil {
		log.Printf("Legacy plan generation failed: %v", err)
		return "", &PlanGenerationError{Message: err.Error()}
	}
	return plan, nil
}

func legacyTemplate(subjects string, days, hours int) string {
	parts := strings.Split(subjects, ",")
	first := "main subject"
	if s := strings.TrimSpace(parts[0]); s != "" {
		first = s
	}
	second := "second subject"
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		second = strings.TrimSpace(parts[1])
	}

	half := hours / 2
	third := hours / 3

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Your Study Plan for %d Days**\n\n", days))

	b.WriteString("**Day 1: Foundation Building**\n")
	b.WriteString(fmt.Sprintf("- Review basic concepts of %s (%d hours)\n", first, half))
	b.WriteString(fmt.Sprintf("- Practice problems and examples (%d hours)\n", half))
	b.WriteString(fmt.Sprintf("- Time: %d hours\n\n", hours))

	b.WriteString("**Day 2: Core Topics**\n")
	b.WriteString(fmt.Sprintf("- Study advanced topics in %s (%d hours)\n", second, half))
	b.WriteString(fmt.Sprintf("- Solve practice questions (%d hours)\n", half))
	b.WriteString(fmt.Sprintf("- Time: %d hours\n\n", hours))

	b.WriteString("**Day 3: Integration & Practice**\n")
	b.WriteString(fmt.Sprintf("- Combine concepts from all subjects (%d hours)\n", third))
	b.WriteString(fmt.Sprintf("- Take mock tests (%d hours)\n", third))
	b.WriteString(fmt.Sprintf("- Review and revise (%d hours)\n", third))
	b.WriteString(fmt.Sprintf("- Time: %d hours\n\n", hours))

	b.WriteString(fmt.Sprintf("**Day %d: Final Revision**\n", days))
	b.WriteString(fmt.Sprintf("- Quick review of all topics (%d hours)\n", half))
	b.WriteString(fmt.Sprintf("- Last-minute practice (%d hours)\n", half))
	b.WriteString(fmt.Sprintf("- Time: %d hours\n\n", hours))

	b.WriteString("**Motivational Note:** You've got this! Stay consistent and believe in your preparation. Good luck! 🍀\n")

	return b.String()
}
