package model

// IntelStatus classifies a course-intel lookup.
type IntelStatus string

const (
	IntelOK    IntelStatus = "ok"
	IntelMiss  IntelStatus = "miss"
	IntelStale IntelStatus = "stale"
	IntelError IntelStatus = "error"
)

type IntelWorkload struct {
	WeeklyHours   string   `json:"weekly_hours"`
	AssessmentMix []string `json:"assessment_mix"`
}

type IntelProfNote struct {
	Name string `json:"name"`
	Take string `json:"take"`
}

type IntelSource struct {
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink"`
	Score     int    `json:"score"`
	AgeDays   int    `json:"age_days"`
}

// CourseIntel is cached advisory content about a course. The document shape
// is backend-owned and loosely structured, so it is decoded tolerantly rather
// than through the strict section/event mapping.
type CourseIntel struct {
	Course     string          `json:"course"`
	Term       string          `json:"term"`
	Summary    string          `json:"summary"`
	Workload   IntelWorkload   `json:"workload"`
	Difficulty string          `json:"difficulty"`
	Tips       []string        `json:"tips"`
	Pitfalls   []string        `json:"pitfalls"`
	ProfNotes  []IntelProfNote `json:"prof_notes"`
	Sources    []IntelSource   `json:"sources"`
	UpdatedAt  string          `json:"updatedAt"`
	TTL        string          `json:"ttl"`
}
