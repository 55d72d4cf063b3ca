// Package model contains domain entities passed between layers.
package model

import "github.com/acadmetrics/attain/internal/domain/types"

// Student identifies a learner. Inactive students are excluded from every
// population used in attainment aggregation.
type Student struct {
	ID        string // unique student identifier
	Name      string
	SectionID string // owning section
	Active    bool
}

// Section groups students within a course offering.
type Section struct {
	ID   string
	Name string
}

// Course owns the thresholds that drive course-level classification.
type Course struct {
	ID    string
	Code  string
	Title string
	// Target is the mastery percentage a student must reach to count as
	// meeting an outcome.
	Target float64
	// Level1 < Level2 < Level3 are ascending percentages of students
	// required to reach attainment levels 1..3. Validity is assumed, not
	// enforced here.
	Level1 float64
	Level2 float64
	Level3 float64
}

// Assessment is a graded activity belonging to a course.
type Assessment struct {
	ID       string
	CourseID string
	Name     string
}

// AssessmentQuestion is a single graded question. OutcomeID links it to the
// course outcome it provides evidence for; a question with an empty
// OutcomeID never contributes to any attainment calculation.
type AssessmentQuestion struct {
	ID           string
	AssessmentID string
	CourseID     string // denormalized from the owning assessment for batch lookups
	OutcomeID    string // linked course outcome, empty if unlinked
	MaxMarks     float64
}

// Mark is one score awarded to a student on one question.
// Invariant: 0 <= Score <= question.MaxMarks.
type Mark struct {
	StudentID  string
	QuestionID string
	Score      float64
}

// CourseOutcome is a skill or knowledge outcome defined at course level.
// Attainment is always computed from marks, never stored on the outcome.
type CourseOutcome struct {
	ID          string
	CourseID    string
	Code        string
	Description string
}

// Enrollment links a student to a course and defines the population scope
// for course-level aggregation when no section is given.
type Enrollment struct {
	StudentID string
	CourseID  string
	Active    bool
}

// Program is a degree program owning program outcomes.
type Program struct {
	ID   string
	Code string
	Name string
}

// ProgramOutcome is a program-level outcome. IndirectAttainment holds the
// survey-sourced value in [0,3]; nil means unset, in which case the blender
// falls back to its configured default.
type ProgramOutcome struct {
	ID                 string
	ProgramID          string
	Code               string
	Description        string
	IndirectAttainment *float64
}

// HasIndirect reports whether a survey value has been stored.
func (p ProgramOutcome) HasIndirect() bool {
	return p.IndirectAttainment != nil
}

// CoPoMapping correlates one course outcome with one program outcome.
// Level is the correlation strength 1..3; a strength of 0 means "no
// mapping" and such rows are never persisted.
type CoPoMapping struct {
	OutcomeID        string
	ProgramOutcomeID string
	Level            types.CorrelationLevel
}
