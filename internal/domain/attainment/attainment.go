// Package attainment implements the tiered outcome-attainment engine:
// student mastery percentages, course-outcome levels, and program-outcome
// direct and blended attainment.
package attainment

import (
	"context"
	"fmt"
	"math"

	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/types"
)

// Default blending configuration constants.
const (
	defaultDirectWeightPct   = 70
	defaultIndirectWeightPct = 30
	defaultIndirectValue     = 3.0
)

// BlendWeights is the percentage split between computed ("direct") and
// survey-sourced ("indirect") program-outcome attainment.
type BlendWeights struct {
	DirectPct   float64
	IndirectPct float64
}

// Engine computes attainment from the academic graph behind a
// repository.Reader. Every public method is a stateless, fully recomputed
// read: memoization lives in a per-call session and is discarded when the
// call returns, so results always reflect the latest persisted marks.
type Engine struct {
	store           repository.Reader
	blend           BlendWeights
	defaultIndirect float64
}

// New constructs an Engine over the given reader.
func New(store repository.Reader, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		blend:           BlendWeights{DirectPct: defaultDirectWeightPct, IndirectPct: defaultIndirectWeightPct},
		defaultIndirect: defaultIndirectValue,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StudentOutcome returns the mastery percentage in [0,100] of one student
// for one course outcome: marks obtained across every question linked to
// the outcome, over the questions' total max marks. No linked questions or
// a zero total yields a legitimate 0. A non-empty courseID must match the
// outcome's owning course; an empty one skips the check.
func (e *Engine) StudentOutcome(ctx context.Context, studentID, outcomeID, courseID string) (float64, error) {
	s := e.newSession()
	co, err := e.store.CourseOutcome(ctx, outcomeID)
	if err != nil {
		return 0, err
	}
	if courseID != "" && co.CourseID != courseID {
		return 0, fmt.Errorf("outcome %q, course %q: %w", outcomeID, courseID, ErrCourseMismatch)
	}
	return s.studentOutcome(ctx, studentID, outcomeID)
}

// CourseOutcome returns the Tier-2 attainment level for an outcome over a
// course-wide population, or over one section when sectionID is non-empty.
func (e *Engine) CourseOutcome(ctx context.Context, outcomeID, courseID, sectionID string) (types.CourseOutcomeResult, error) {
	s := e.newSession()
	return s.courseOutcome(ctx, outcomeID, courseID, sectionID)
}

// DirectProgramOutcome rolls up the attainment levels of every course
// outcome mapped to the program outcome, weighted by correlation strength,
// rounded half-up to two decimals. No mappings yields 0.
func (e *Engine) DirectProgramOutcome(ctx context.Context, poID string) (float64, error) {
	s := e.newSession()
	if _, err := e.store.ProgramOutcome(ctx, poID); err != nil {
		return 0, err
	}
	return s.directProgramOutcome(ctx, poID)
}

// OverallProgramOutcome blends direct and indirect attainment using the
// engine's configured weights.
func (e *Engine) OverallProgramOutcome(ctx context.Context, poID string) (float64, error) {
	return e.OverallProgramOutcomeWeighted(ctx, poID, e.blend.DirectPct, e.blend.IndirectPct)
}

// OverallProgramOutcomeWeighted blends direct and indirect attainment with
// caller-supplied weights. The weights are not forced to sum to 100; with
// any other sum the result is not guaranteed to stay within [0,3].
func (e *Engine) OverallProgramOutcomeWeighted(ctx context.Context, poID string, directPct, indirectPct float64) (float64, error) {
	s := e.newSession()
	po, err := e.store.ProgramOutcome(ctx, poID)
	if err != nil {
		return 0, err
	}
	direct, err := s.directProgramOutcome(ctx, poID)
	if err != nil {
		return 0, err
	}
	indirect := e.defaultIndirect
	if po.HasIndirect() {
		indirect = *po.IndirectAttainment
	}
	return round2(direct*directPct/100 + indirect*indirectPct/100), nil
}

// ProgramSummary computes direct and overall attainment for every outcome
// of a program. A row whose computation fails is flagged unavailable and
// reported without values rather than as an achieved zero; the summary as a
// whole fails only when the program itself is unknown or the context ends.
func (e *Engine) ProgramSummary(ctx context.Context, programID string) (types.ProgramSummary, error) {
	s := e.newSession()
	if _, err := e.store.Program(ctx, programID); err != nil {
		return types.ProgramSummary{}, err
	}
	pos, err := e.store.ProgramOutcomes(ctx, programID)
	if err != nil {
		return types.ProgramSummary{}, err
	}

	summary := types.ProgramSummary{ProgramID: programID, POs: make([]types.ProgramOutcomeRow, 0, len(pos))}
	for _, po := range pos {
		if err := ctx.Err(); err != nil {
			return types.ProgramSummary{}, err
		}
		row := types.ProgramOutcomeRow{ID: po.ID, Code: po.Code, Description: po.Description}
		direct, err := s.directProgramOutcome(ctx, po.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return types.ProgramSummary{}, ctxErr
			}
			row.Unavailable = true
			summary.POs = append(summary.POs, row)
			continue
		}
		indirect := e.defaultIndirect
		if po.HasIndirect() {
			indirect = *po.IndirectAttainment
		}
		row.DirectAttainment = direct
		row.OverallAttainment = round2(direct*e.blend.DirectPct/100 + indirect*e.blend.IndirectPct/100)
		summary.POs = append(summary.POs, row)
	}
	return summary, nil
}

// CourseSummary computes the attainment level of every outcome of a course
// plus a per-student mastery breakdown. meets_target always compares
// against the course's configured target.
func (e *Engine) CourseSummary(ctx context.Context, courseID string) (types.CourseSummary, error) {
	s := e.newSession()
	course, err := e.store.Course(ctx, courseID)
	if err != nil {
		return types.CourseSummary{}, err
	}
	cos, err := e.store.CourseOutcomes(ctx, courseID)
	if err != nil {
		return types.CourseSummary{}, err
	}

	summary := types.CourseSummary{CourseID: courseID, COs: make([]types.CourseOutcomeRow, 0, len(cos))}
	for _, co := range cos {
		if err := ctx.Err(); err != nil {
			return types.CourseSummary{}, err
		}
		row := types.CourseOutcomeRow{ID: co.ID, Code: co.Code, Description: co.Description}
		res, err := s.courseOutcome(ctx, co.ID, courseID, "")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return types.CourseSummary{}, ctxErr
			}
			row.Unavailable = true
			summary.COs = append(summary.COs, row)
			continue
		}
		row.AttainmentLevel = res.Level
		summary.COs = append(summary.COs, row)
	}

	students, err := e.store.ActiveStudentsByCourse(ctx, courseID)
	if err != nil {
		return types.CourseSummary{}, fmt.Errorf("%w: %w", ErrComputation, err)
	}
	summary.Students = make([]types.StudentRow, 0, len(students))
	for _, st := range students {
		if err := ctx.Err(); err != nil {
			return types.CourseSummary{}, err
		}
		row := types.StudentRow{StudentID: st.ID, Name: st.Name, Outcomes: make(map[string]types.StudentOutcome, len(cos))}
		for _, co := range cos {
			pct, err := s.studentOutcome(ctx, st.ID, co.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return types.CourseSummary{}, ctxErr
				}
				continue // flagged at the CO row already
			}
			row.Outcomes[co.ID] = types.StudentOutcome{
				Percentage:  round2(pct),
				MeetsTarget: pct >= course.Target,
			}
		}
		summary.Students = append(summary.Students, row)
	}
	return summary, nil
}

// classifyLevel maps the percentage of students meeting the target onto a
// discrete level using descending threshold checks with inclusive lower
// bounds. Thresholds are assumed to satisfy level1 < level2 < level3.
func classifyLevel(pct float64, level1, level2, level3 float64) types.AttainmentLevel {
	switch {
	case pct >= level3:
		return types.Level3
	case pct >= level2:
		return types.Level2
	case pct >= level1:
		return types.Level1
	default:
		return types.LevelNone
	}
}

// round2 rounds half away from zero to two decimals; for the non-negative
// attainment domain this is round-half-up.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
