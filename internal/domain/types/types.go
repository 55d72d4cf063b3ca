// Package types contains common types used across the application.
package types

// AttainmentLevel is the discrete outcome-attainment score 0..3.
type AttainmentLevel int

// Attainment levels in ascending order.
const (
	LevelNone AttainmentLevel = iota
	Level1
	Level2
	Level3
)

// Valid reports whether the level is within the representable range.
func (l AttainmentLevel) Valid() bool {
	return l >= LevelNone && l <= Level3
}

// CorrelationLevel is the strength 1..3 of a CO's contribution to a PO.
// Zero means "absent": no mapping exists and none should be persisted.
type CorrelationLevel int

// Correlation strengths.
const (
	CorrelationAbsent CorrelationLevel = iota
	CorrelationLow
	CorrelationMedium
	CorrelationHigh
)

// Valid reports whether the level denotes a persistable mapping strength.
func (c CorrelationLevel) Valid() bool {
	return c >= CorrelationLow && c <= CorrelationHigh
}

// CourseOutcomeResult is the Tier-2 output for one course outcome.
type CourseOutcomeResult struct {
	Level             AttainmentLevel `json:"level"`
	PercentageMeeting float64         `json:"percentage_meeting_target"`
}

// ProgramOutcomeRow is one row of a program summary.
type ProgramOutcomeRow struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	DirectAttainment  float64 `json:"direct_attainment"`
	OverallAttainment float64 `json:"overall_attainment"`
	// Unavailable marks a row whose computation failed; its attainment
	// values are meaningless and must not be read as a genuine zero.
	Unavailable bool `json:"unavailable,omitempty"`
}

// ProgramSummary is the report-ready rollup for one program.
type ProgramSummary struct {
	ProgramID string              `json:"program_id"`
	POs       []ProgramOutcomeRow `json:"pos"`
}

// CourseOutcomeRow is one row of a course summary.
type CourseOutcomeRow struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	AttainmentLevel AttainmentLevel `json:"attainment_level"`
	Unavailable     bool            `json:"unavailable,omitempty"`
}

// StudentOutcome is one student's mastery of one course outcome.
type StudentOutcome struct {
	Percentage  float64 `json:"percentage"`
	MeetsTarget bool    `json:"meets_target"`
}

// StudentRow is the per-student breakdown within a course summary, keyed by
// course-outcome id.
type StudentRow struct {
	StudentID string                    `json:"student_id"`
	Name      string                    `json:"name"`
	Outcomes  map[string]StudentOutcome `json:"co_data"`
}

// CourseSummary is the report-ready rollup for one course.
type CourseSummary struct {
	CourseID string             `json:"course_id"`
	COs      []CourseOutcomeRow `json:"cos"`
	Students []StudentRow       `json:"students"`
}
