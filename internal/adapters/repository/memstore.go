package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/acadmetrics/attain/internal/domain/model"
)

// MemStore is an in-memory Store backed by indexed maps. It stands in for
// the institution's persistence layer, which this service treats as an
// external collaborator; the engine only ever sees the Reader interface.
type MemStore struct {
	mu sync.RWMutex

	programs      map[string]model.Program
	courses       map[string]model.Course
	sections      map[string]model.Section
	students      map[string]model.Student
	outcomes      map[string]model.CourseOutcome
	pos           map[string]model.ProgramOutcome
	questionsByID map[string]model.AssessmentQuestion

	// Secondary indexes, maintained on write.
	outcomesByCourse   map[string][]string // courseID -> outcome ids
	posByProgram       map[string][]string // programID -> po ids
	questionsByOutcome map[string][]string // outcomeID -> question ids
	studentsBySection  map[string][]string // sectionID -> student ids
	enrollByCourse     map[string][]model.Enrollment
	marksByQuestion    map[string][]model.Mark
	mappingsByPO       map[string][]model.CoPoMapping

	markCount    int
	mappingCount int
	enrollCount  int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		programs:           make(map[string]model.Program),
		courses:            make(map[string]model.Course),
		sections:           make(map[string]model.Section),
		students:           make(map[string]model.Student),
		outcomes:           make(map[string]model.CourseOutcome),
		pos:                make(map[string]model.ProgramOutcome),
		questionsByID:      make(map[string]model.AssessmentQuestion),
		outcomesByCourse:   make(map[string][]string),
		posByProgram:       make(map[string][]string),
		questionsByOutcome: make(map[string][]string),
		studentsBySection:  make(map[string][]string),
		enrollByCourse:     make(map[string][]model.Enrollment),
		marksByQuestion:    make(map[string][]model.Mark),
		mappingsByPO:       make(map[string][]model.CoPoMapping),
	}
}

// PutProgram adds or replaces a program.
func (s *MemStore) PutProgram(p model.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[p.ID] = p
}

// PutCourse adds or replaces a course.
func (s *MemStore) PutCourse(c model.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = c
}

// PutSection adds or replaces a section.
func (s *MemStore) PutSection(sec model.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sec.ID] = sec
}

// PutStudent adds or replaces a student and indexes it by section. A
// replace that moves the student to another section reindexes it.
func (s *MemStore) PutStudent(st model.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, exists := s.students[st.ID]
	if exists && prev.SectionID != st.SectionID && prev.SectionID != "" {
		ids := s.studentsBySection[prev.SectionID]
		for i, id := range ids {
			if id == st.ID {
				s.studentsBySection[prev.SectionID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	if st.SectionID != "" && (!exists || prev.SectionID != st.SectionID) {
		s.studentsBySection[st.SectionID] = append(s.studentsBySection[st.SectionID], st.ID)
	}
	s.students[st.ID] = st
}

// PutCourseOutcome adds or replaces a course outcome.
func (s *MemStore) PutCourseOutcome(co model.CourseOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outcomes[co.ID]; !exists {
		s.outcomesByCourse[co.CourseID] = append(s.outcomesByCourse[co.CourseID], co.ID)
	}
	s.outcomes[co.ID] = co
}

// PutProgramOutcome adds or replaces a program outcome.
func (s *MemStore) PutProgramOutcome(po model.ProgramOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pos[po.ID]; !exists {
		s.posByProgram[po.ProgramID] = append(s.posByProgram[po.ProgramID], po.ID)
	}
	s.pos[po.ID] = po
}

// PutQuestion adds or replaces an assessment question and indexes it by its
// linked outcome. Unlinked questions are stored but never indexed, so they
// can never contribute to a calculation.
func (s *MemStore) PutQuestion(q model.AssessmentQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.questionsByID[q.ID]; !exists && q.OutcomeID != "" {
		s.questionsByOutcome[q.OutcomeID] = append(s.questionsByOutcome[q.OutcomeID], q.ID)
	}
	s.questionsByID[q.ID] = q
}

// PutEnrollment records a student-course enrollment.
func (s *MemStore) PutEnrollment(e model.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollByCourse[e.CourseID] = append(s.enrollByCourse[e.CourseID], e)
	s.enrollCount++
}

// PutMark records one mark. Re-marking replaces the previous score for the
// same (student, question) pair.
func (s *MemStore) PutMark(m model.Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marks := s.marksByQuestion[m.QuestionID]
	for i := range marks {
		if marks[i].StudentID == m.StudentID {
			marks[i].Score = m.Score
			return
		}
	}
	s.marksByQuestion[m.QuestionID] = append(marks, m)
	s.markCount++
}

// PutMapping records a CO->PO correlation. Absent-strength rows are
// rejected rather than stored.
func (s *MemStore) PutMapping(m model.CoPoMapping) error {
	if !m.Level.Valid() {
		return fmt.Errorf("mapping %s->%s strength %d: %w", m.OutcomeID, m.ProgramOutcomeID, m.Level, ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappingsByPO[m.ProgramOutcomeID] = append(s.mappingsByPO[m.ProgramOutcomeID], m)
	s.mappingCount++
	return nil
}

// Program implements Reader.
func (s *MemStore) Program(ctx context.Context, id string) (model.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.programs[id]
	if !ok {
		return model.Program{}, fmt.Errorf("program %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// Course implements Reader.
func (s *MemStore) Course(ctx context.Context, id string) (model.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return model.Course{}, fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// CourseOutcome implements Reader.
func (s *MemStore) CourseOutcome(ctx context.Context, id string) (model.CourseOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	co, ok := s.outcomes[id]
	if !ok {
		return model.CourseOutcome{}, fmt.Errorf("course outcome %q: %w", id, ErrNotFound)
	}
	return co, nil
}

// CourseOutcomes implements Reader.
func (s *MemStore) CourseOutcomes(ctx context.Context, courseID string) ([]model.CourseOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.courses[courseID]; !ok {
		return nil, fmt.Errorf("course %q: %w", courseID, ErrNotFound)
	}
	ids := s.outcomesByCourse[courseID]
	cos := make([]model.CourseOutcome, 0, len(ids))
	for _, id := range ids {
		cos = append(cos, s.outcomes[id])
	}
	sort.Slice(cos, func(i, j int) bool { return cos[i].Code < cos[j].Code })
	return cos, nil
}

// ProgramOutcome implements Reader.
func (s *MemStore) ProgramOutcome(ctx context.Context, id string) (model.ProgramOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.pos[id]
	if !ok {
		return model.ProgramOutcome{}, fmt.Errorf("program outcome %q: %w", id, ErrNotFound)
	}
	return po, nil
}

// ProgramOutcomes implements Reader.
func (s *MemStore) ProgramOutcomes(ctx context.Context, programID string) ([]model.ProgramOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.programs[programID]; !ok {
		return nil, fmt.Errorf("program %q: %w", programID, ErrNotFound)
	}
	ids := s.posByProgram[programID]
	pos := make([]model.ProgramOutcome, 0, len(ids))
	for _, id := range ids {
		pos = append(pos, s.pos[id])
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i].Code < pos[j].Code })
	return pos, nil
}

// QuestionsByOutcome implements Reader.
func (s *MemStore) QuestionsByOutcome(ctx context.Context, outcomeID string) ([]model.AssessmentQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.outcomes[outcomeID]; !ok {
		return nil, fmt.Errorf("course outcome %q: %w", outcomeID, ErrNotFound)
	}
	ids := s.questionsByOutcome[outcomeID]
	qs := make([]model.AssessmentQuestion, 0, len(ids))
	for _, id := range ids {
		qs = append(qs, s.questionsByID[id])
	}
	return qs, nil
}

// MarksByQuestions implements Reader.
func (s *MemStore) MarksByQuestions(ctx context.Context, questionIDs []string) ([]model.Mark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Mark
	for _, qid := range questionIDs {
		out = append(out, s.marksByQuestion[qid]...)
	}
	return out, nil
}

// ActiveStudentsByCourse implements Reader.
func (s *MemStore) ActiveStudentsByCourse(ctx context.Context, courseID string) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.courses[courseID]; !ok {
		return nil, fmt.Errorf("course %q: %w", courseID, ErrNotFound)
	}
	var out []model.Student
	for _, e := range s.enrollByCourse[courseID] {
		if !e.Active {
			continue
		}
		st, ok := s.students[e.StudentID]
		if !ok || !st.Active {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ActiveStudentsBySection implements Reader.
func (s *MemStore) ActiveStudentsBySection(ctx context.Context, sectionID string) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sections[sectionID]; !ok {
		return nil, fmt.Errorf("section %q: %w", sectionID, ErrNotFound)
	}
	var out []model.Student
	for _, id := range s.studentsBySection[sectionID] {
		if st := s.students[id]; st.Active {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MappingsByProgramOutcome implements Reader.
func (s *MemStore) MappingsByProgramOutcome(ctx context.Context, poID string) ([]model.CoPoMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.pos[poID]; !ok {
		return nil, fmt.Errorf("program outcome %q: %w", poID, ErrNotFound)
	}
	out := make([]model.CoPoMapping, len(s.mappingsByPO[poID]))
	copy(out, s.mappingsByPO[poID])
	return out, nil
}

// SetIndirectAttainment implements Store.
func (s *MemStore) SetIndirectAttainment(ctx context.Context, poID string, value float64) error {
	if value < 0 || value > 3 {
		return fmt.Errorf("indirect attainment %v out of [0,3]: %w", value, ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.pos[poID]
	if !ok {
		return fmt.Errorf("program outcome %q: %w", poID, ErrNotFound)
	}
	po.IndirectAttainment = &value
	s.pos[poID] = po
	return nil
}

// Counts implements Store.
func (s *MemStore) Counts(ctx context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Programs:        len(s.programs),
		ProgramOutcomes: len(s.pos),
		Courses:         len(s.courses),
		CourseOutcomes:  len(s.outcomes),
		Students:        len(s.students),
		Questions:       len(s.questionsByID),
		Marks:           s.markCount,
		Mappings:        s.mappingCount,
		Enrollments:     s.enrollCount,
	}
}
