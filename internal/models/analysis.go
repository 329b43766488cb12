package models

type TopicAnalysis struct {
	Topics              []Topic `json:"topics"`
	TotalTopics         int     `json:"totalTopics"`
	EstimatedTotalHours float64 `json:"estimatedTotalHours"`
}

type Topic struct {
	Name           string   `json:"name"`
	Subtopics      []string `json:"subtopics"`
	Importance     string   `json:"importance"` // "High" | "Medium" | "Low"
	Weightage      float64  `json:"weightage"`
	Complexity     string   `json:"complexity"` // "Beginner" | "Intermediate" | "Advanced"
	SuggestedHours float64  `json:"suggestedHours"`
}

type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
