package models

// NoGradeSentinel is the placeholder stored when a course has no grade yet.
// It must stay distinguishable from any real grade string the portal emits.
const NoGradeSentinel = "Not graded yet"

// GradePair is one (course, grade) observation used by the poller diff.
type GradePair struct {
	Course string `json:"course"`
	Grade  string `json:"grade"`
}

// SubDetail is the innermost grade record (a single exam sitting or group).
type SubDetail struct {
	GroupName string `json:"group_name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Grade     string `json:"grade"`
}

// Detail holds per-component grade information inside a course.
type Detail struct {
	Name       string      `json:"name"`
	FinalGrade string      `json:"final_grade"`
	SubDetails []SubDetail `json:"sub_details,omitempty"`
}

// Course is a collapsed course row with its grade and nested details.
type Course struct {
	Name      string   `json:"name"`
	Grade     string   `json:"grade"`
	StudyYear string   `json:"study_year"`
	Weight    string   `json:"weight"`
	Details   []Detail `json:"details,omitempty"`
}

// GradesAverages carries the cumulative and per-year averages.
type GradesAverages struct {
	CumulativeAverage string   `json:"cumulative_average"`
	AnnualAverages    []string `json:"annual_averages"`
}

// GradesData is the complete grades view for a student.
type GradesData struct {
	Courses  []Course       `json:"courses"`
	Averages GradesAverages `json:"averages"`
}

// Snapshot returns the (course, grade) pairs the poller diffs against the
// persisted state.
func (g GradesData) Snapshot() []GradePair {
	pairs := make([]GradePair, 0, len(g.Courses))
	for _, c := range g.Courses {
		pairs = append(pairs, GradePair{Course: c.Name, Grade: c.Grade})
	}
	return pairs
}
