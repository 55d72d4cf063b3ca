// Package repository defines the outcome data-access interface and errors.
package repository

import (
	"context"

	"github.com/acadmetrics/attain/internal/domain/model"
)

// Reader provides read access to the academic graph the attainment engine
// traverses. Implementations must be safe for concurrent use; every method
// is a snapshot read with no side effects.
type Reader interface {
	// Program returns a program by id. Returns ErrNotFound if unknown.
	Program(ctx context.Context, id string) (model.Program, error)

	// Course returns a course by id. Returns ErrNotFound if unknown.
	Course(ctx context.Context, id string) (model.Course, error)

	// CourseOutcome returns a course outcome by id.
	CourseOutcome(ctx context.Context, id string) (model.CourseOutcome, error)

	// CourseOutcomes returns every outcome belonging to a course, in a
	// stable code order.
	CourseOutcomes(ctx context.Context, courseID string) ([]model.CourseOutcome, error)

	// ProgramOutcome returns a program outcome by id.
	ProgramOutcome(ctx context.Context, id string) (model.ProgramOutcome, error)

	// ProgramOutcomes returns every outcome belonging to a program, in a
	// stable code order.
	ProgramOutcomes(ctx context.Context, programID string) ([]model.ProgramOutcome, error)

	// QuestionsByOutcome returns every assessment question linked to the
	// given course outcome, across all assessments of its course.
	QuestionsByOutcome(ctx context.Context, outcomeID string) ([]model.AssessmentQuestion, error)

	// MarksByQuestions returns all marks recorded against the given
	// questions, for every student, in one batch.
	MarksByQuestions(ctx context.Context, questionIDs []string) ([]model.Mark, error)

	// ActiveStudentsByCourse returns the actively enrolled, active
	// students of a course.
	ActiveStudentsByCourse(ctx context.Context, courseID string) ([]model.Student, error)

	// ActiveStudentsBySection returns the active students of a section.
	ActiveStudentsBySection(ctx context.Context, sectionID string) ([]model.Student, error)

	// MappingsByProgramOutcome returns the CO correlations contributing to
	// a program outcome. Rows with an absent correlation are never stored.
	MappingsByProgramOutcome(ctx context.Context, poID string) ([]model.CoPoMapping, error)
}

// Store extends Reader with the single mutation this service performs on
// behalf of external collaborators: recording survey-sourced indirect
// attainment. The engine itself never writes.
type Store interface {
	Reader

	// SetIndirectAttainment stores an indirect attainment value for a
	// program outcome. The value must already be validated to [0,3].
	SetIndirectAttainment(ctx context.Context, poID string, value float64) error

	// Counts returns entity counts for diagnostics.
	Counts(ctx context.Context) Counts
}

// Counts summarizes store contents for the stats endpoint.
type Counts struct {
	Programs        int `json:"programs"`
	ProgramOutcomes int `json:"program_outcomes"`
	Courses         int `json:"courses"`
	CourseOutcomes  int `json:"course_outcomes"`
	Students        int `json:"students"`
	Questions       int `json:"questions"`
	Marks           int `json:"marks"`
	Mappings        int `json:"mappings"`
	Enrollments     int `json:"enrollments"`
}
