package models

type StudyPlan struct {
	PlanTitle    string    `json:"planTitle"`
	TotalDays    int       `json:"totalDays"`
	TotalHours   int       `json:"totalHours"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Days         []DayPlan `json:"days"`
	RevisionDays []int     `json:"revisionDays"`
	MockTestDays []int     `json:"mockTestDays"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Focus      string     `json:"focus"`
	Topics     []string   `json:"topics"`
	Activities []Activity `json:"activities"`
	TotalTime  string     `json:"totalTime"`
	Difficulty string     `json:"difficulty"`
}

type Activity struct {
	Activity string `json:"activity"`
	Duration string `json:"duration"`
	Type     string `json:"type"` // "theory" | "practice"
}
