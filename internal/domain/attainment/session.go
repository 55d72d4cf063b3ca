package attainment

import (
	"context"
	"fmt"

	"github.com/acadmetrics/attain/internal/domain/model"
	"github.com/acadmetrics/attain/internal/domain/types"
)

// evidence is the batch-loaded proof base for one course outcome: its
// linked questions, their combined max marks, and every student's obtained
// total. Building it costs two store round trips regardless of how many
// students or questions are involved.
type evidence struct {
	questions []model.AssessmentQuestion
	totalMax  float64
	obtained  map[string]float64 // studentID -> sum of scores
}

// courseOutcomeKey keys Tier-2 memoization.
type courseOutcomeKey struct {
	outcomeID string
	courseID  string
	sectionID string
}

// session memoizes tier results for the duration of a single engine call.
// All tiers are pure functions of data that does not change within one
// request, so caching here is safe; nothing survives across calls.
type session struct {
	engine      *Engine
	evidence    map[string]*evidence                          // outcomeID -> evidence
	courseLevel map[courseOutcomeKey]types.CourseOutcomeResult
}

func (e *Engine) newSession() *session {
	return &session{
		engine:      e,
		evidence:    make(map[string]*evidence),
		courseLevel: make(map[courseOutcomeKey]types.CourseOutcomeResult),
	}
}

// evidenceFor loads and indexes the outcome's questions and marks once per
// session.
func (s *session) evidenceFor(ctx context.Context, outcomeID string) (*evidence, error) {
	if ev, ok := s.evidence[outcomeID]; ok {
		return ev, nil
	}

	questions, err := s.engine.store.QuestionsByOutcome(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("%w: questions for outcome %q: %w", ErrComputation, outcomeID, err)
	}
	ev := &evidence{questions: questions, obtained: make(map[string]float64)}
	if len(questions) > 0 {
		ids := make([]string, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
			ev.totalMax += q.MaxMarks
		}
		marks, err := s.engine.store.MarksByQuestions(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: marks for outcome %q: %w", ErrComputation, outcomeID, err)
		}
		for _, m := range marks {
			ev.obtained[m.StudentID] += m.Score
		}
	}
	s.evidence[outcomeID] = ev
	return ev, nil
}

// studentOutcome is Tier 1: one student's mastery percentage for one
// outcome, unrounded. Empty evidence or a zero max total yields 0.
func (s *session) studentOutcome(ctx context.Context, studentID, outcomeID string) (float64, error) {
	ev, err := s.evidenceFor(ctx, outcomeID)
	if err != nil {
		return 0, err
	}
	if len(ev.questions) == 0 || ev.totalMax == 0 {
		return 0, nil
	}
	return ev.obtained[studentID] / ev.totalMax * 100, nil
}

// courseOutcome is Tier 2: classify the fraction of the population meeting
// the course target into a discrete level.
func (s *session) courseOutcome(ctx context.Context, outcomeID, courseID, sectionID string) (types.CourseOutcomeResult, error) {
	key := courseOutcomeKey{outcomeID: outcomeID, courseID: courseID, sectionID: sectionID}
	if res, ok := s.courseLevel[key]; ok {
		return res, nil
	}

	course, err := s.engine.store.Course(ctx, courseID)
	if err != nil {
		return types.CourseOutcomeResult{}, err
	}
	co, err := s.engine.store.CourseOutcome(ctx, outcomeID)
	if err != nil {
		return types.CourseOutcomeResult{}, err
	}
	if co.CourseID != courseID {
		return types.CourseOutcomeResult{}, fmt.Errorf("outcome %q, course %q: %w", outcomeID, courseID, ErrCourseMismatch)
	}

	var population []model.Student
	if sectionID != "" {
		population, err = s.engine.store.ActiveStudentsBySection(ctx, sectionID)
	} else {
		population, err = s.engine.store.ActiveStudentsByCourse(ctx, courseID)
	}
	if err != nil {
		return types.CourseOutcomeResult{}, fmt.Errorf("%w: population for course %q: %w", ErrComputation, courseID, err)
	}
	if len(population) == 0 {
		res := types.CourseOutcomeResult{Level: types.LevelNone, PercentageMeeting: 0}
		s.courseLevel[key] = res
		return res, nil
	}

	meeting := 0
	for _, st := range population {
		if err := ctx.Err(); err != nil {
			return types.CourseOutcomeResult{}, err
		}
		pct, err := s.studentOutcome(ctx, st.ID, outcomeID)
		if err != nil {
			return types.CourseOutcomeResult{}, err
		}
		if pct >= course.Target {
			meeting++
		}
	}

	pct := float64(meeting) / float64(len(population)) * 100
	res := types.CourseOutcomeResult{
		Level:             classifyLevel(pct, course.Level1, course.Level2, course.Level3),
		PercentageMeeting: pct,
	}
	s.courseLevel[key] = res
	return res, nil
}

// directProgramOutcome is Tier 3a: correlation-weighted mean of mapped
// course-outcome levels, rounded to two decimals. No mappings yields 0.
func (s *session) directProgramOutcome(ctx context.Context, poID string) (float64, error) {
	mappings, err := s.engine.store.MappingsByProgramOutcome(ctx, poID)
	if err != nil {
		return 0, err
	}
	if len(mappings) == 0 {
		return 0, nil
	}

	var weightedSum, totalWeight float64
	for _, m := range mappings {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		co, err := s.engine.store.CourseOutcome(ctx, m.OutcomeID)
		if err != nil {
			return 0, fmt.Errorf("%w: mapped outcome %q: %w", ErrComputation, m.OutcomeID, err)
		}
		res, err := s.courseOutcome(ctx, co.ID, co.CourseID, "")
		if err != nil {
			return 0, err
		}
		weightedSum += float64(res.Level) * float64(m.Level)
		totalWeight += float64(m.Level)
	}
	if totalWeight == 0 {
		return 0, nil
	}
	return round2(weightedSum / totalWeight), nil
}
