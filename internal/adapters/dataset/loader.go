// Package dataset loads institution-export JSON into the in-memory store
// and generates synthetic datasets for demos and load checks.
package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/model"
	"github.com/acadmetrics/attain/internal/domain/types"
	"github.com/acadmetrics/attain/pkg/logger"
)

// Stats counts what a load accepted and what it skipped.
type Stats struct {
	Programs        int
	ProgramOutcomes int
	Courses         int
	Sections        int
	CourseOutcomes  int
	Questions       int
	Students        int
	Enrollments     int
	Marks           int
	Mappings        int
	Skipped         int
}

// Loader parses export JSON and feeds it into a MemStore. Rows that cannot
// be used (missing relations, absent correlation strength) are skipped with
// a warning rather than failing the whole load.
type Loader struct {
	defaultTarget float64
	log           logger.Logger
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithDefaultTarget sets the target percentage applied to courses whose
// source row omits one.
func WithDefaultTarget(target float64) LoaderOption {
	return func(l *Loader) {
		if target > 0 && target <= 100 {
			l.defaultTarget = target
		}
	}
}

// WithLoaderLogger sets a custom logger for the loader.
func WithLoaderLogger(log logger.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{defaultTarget: 60}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads a dataset file and loads it into store.
func (l *Loader) LoadFile(ctx context.Context, path string, store *repository.MemStore) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return l.Load(ctx, data, store)
}

// Load parses export JSON and populates store.
func (l *Loader) Load(ctx context.Context, data []byte, store *repository.MemStore) (Stats, error) {
	if !gjson.ValidBytes(data) {
		return Stats{}, fmt.Errorf("%w: not valid JSON", ErrInvalid)
	}
	root := gjson.ParseBytes(data)

	var stats Stats
	maxByQuestion := make(map[string]float64)
	l.loadPrograms(ctx, root, store, &stats)
	l.loadCourses(ctx, root, store, &stats, maxByQuestion)
	l.loadStudents(ctx, root, store, &stats)
	l.loadEnrollments(ctx, root, store, &stats)
	l.loadMarks(ctx, root, store, &stats, maxByQuestion)
	l.loadMappings(ctx, root, store, &stats)

	if stats.Courses == 0 && stats.Programs == 0 {
		return stats, fmt.Errorf("%w: no programs or courses found", ErrInvalid)
	}
	return stats, nil
}

func (l *Loader) loadPrograms(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats) {
	root.Get("programs").ForEach(func(_, p gjson.Result) bool {
		program := model.Program{
			ID:   idOr(p.Get("id")),
			Code: p.Get("code").String(),
			Name: p.Get("name").String(),
		}
		store.PutProgram(program)
		stats.Programs++

		p.Get("outcomes").ForEach(func(_, o gjson.Result) bool {
			po := model.ProgramOutcome{
				ID:          idOr(o.Get("id")),
				ProgramID:   program.ID,
				Code:        o.Get("code").String(),
				Description: o.Get("description").String(),
			}
			if v := o.Get("indirect_attainment"); v.Exists() {
				if f := v.Float(); f >= 0 && f <= 3 {
					po.IndirectAttainment = &f
				} else {
					l.warn(ctx, "dropping out-of-range indirect attainment",
						logger.String("po", po.ID), logger.Float64("value", f))
					stats.Skipped++
				}
			}
			store.PutProgramOutcome(po)
			stats.ProgramOutcomes++
			return true
		})
		return true
	})
}

func (l *Loader) loadCourses(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats, maxByQuestion map[string]float64) {
	root.Get("courses").ForEach(func(_, c gjson.Result) bool {
		course := model.Course{
			ID:     idOr(c.Get("id")),
			Code:   c.Get("code").String(),
			Title:  c.Get("title").String(),
			Target: l.defaultTarget,
			Level1: c.Get("levels.0").Float(),
			Level2: c.Get("levels.1").Float(),
			Level3: c.Get("levels.2").Float(),
		}
		if t := c.Get("target"); t.Exists() {
			course.Target = t.Float()
		}
		store.PutCourse(course)
		stats.Courses++

		c.Get("sections").ForEach(func(_, s gjson.Result) bool {
			store.PutSection(model.Section{ID: idOr(s.Get("id")), Name: s.Get("name").String()})
			stats.Sections++
			return true
		})

		c.Get("outcomes").ForEach(func(_, o gjson.Result) bool {
			store.PutCourseOutcome(model.CourseOutcome{
				ID:          idOr(o.Get("id")),
				CourseID:    course.ID,
				Code:        o.Get("code").String(),
				Description: o.Get("description").String(),
			})
			stats.CourseOutcomes++
			return true
		})

		c.Get("assessments").ForEach(func(_, a gjson.Result) bool {
			assessmentID := idOr(a.Get("id"))
			a.Get("questions").ForEach(func(_, q gjson.Result) bool {
				maxMarks := q.Get("max_marks").Float()
				if maxMarks <= 0 {
					l.warn(ctx, "skipping question with non-positive max marks",
						logger.String("question", q.Get("id").String()))
					stats.Skipped++
					return true
				}
				questionID := idOr(q.Get("id"))
				store.PutQuestion(model.AssessmentQuestion{
					ID:           questionID,
					AssessmentID: assessmentID,
					CourseID:     course.ID,
					OutcomeID:    q.Get("co").String(),
					MaxMarks:     maxMarks,
				})
				maxByQuestion[questionID] = maxMarks
				stats.Questions++
				return true
			})
			return true
		})
		return true
	})
}

func (l *Loader) loadStudents(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats) {
	root.Get("students").ForEach(func(_, s gjson.Result) bool {
		active := true
		if v := s.Get("active"); v.Exists() {
			active = v.Bool()
		}
		store.PutStudent(model.Student{
			ID:        idOr(s.Get("id")),
			Name:      s.Get("name").String(),
			SectionID: s.Get("section").String(),
			Active:    active,
		})
		stats.Students++
		return true
	})
}

func (l *Loader) loadEnrollments(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats) {
	root.Get("enrollments").ForEach(func(_, e gjson.Result) bool {
		studentID := e.Get("student").String()
		courseID := e.Get("course").String()
		if studentID == "" || courseID == "" {
			l.warn(ctx, "skipping enrollment with missing relation")
			stats.Skipped++
			return true
		}
		active := true
		if v := e.Get("active"); v.Exists() {
			active = v.Bool()
		}
		store.PutEnrollment(model.Enrollment{StudentID: studentID, CourseID: courseID, Active: active})
		stats.Enrollments++
		return true
	})
}

func (l *Loader) loadMarks(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats, maxByQuestion map[string]float64) {
	root.Get("marks").ForEach(func(_, m gjson.Result) bool {
		studentID := m.Get("student").String()
		questionID := m.Get("question").String()
		score := m.Get("score").Float()
		if studentID == "" || questionID == "" || score < 0 {
			l.warn(ctx, "skipping invalid mark",
				logger.String("student", studentID), logger.String("question", questionID))
			stats.Skipped++
			return true
		}
		maxMarks, ok := maxByQuestion[questionID]
		if !ok {
			l.warn(ctx, "skipping mark for unknown question",
				logger.String("student", studentID), logger.String("question", questionID))
			stats.Skipped++
			return true
		}
		// Invariant: 0 <= score <= the question's max marks. An over-max
		// score would push a student's mastery percentage past 100.
		if score > maxMarks {
			l.warn(ctx, "skipping mark exceeding max marks",
				logger.String("student", studentID), logger.String("question", questionID),
				logger.Float64("score", score), logger.Float64("max_marks", maxMarks))
			stats.Skipped++
			return true
		}
		store.PutMark(model.Mark{StudentID: studentID, QuestionID: questionID, Score: score})
		stats.Marks++
		return true
	})
}

func (l *Loader) loadMappings(ctx context.Context, root gjson.Result, store *repository.MemStore, stats *Stats) {
	root.Get("mappings").ForEach(func(_, m gjson.Result) bool {
		mapping := model.CoPoMapping{
			OutcomeID:        m.Get("co").String(),
			ProgramOutcomeID: m.Get("po").String(),
			Level:            types.CorrelationLevel(m.Get("level").Int()),
		}
		// Strength 0 means "no mapping"; such rows are dropped, not stored.
		if err := store.PutMapping(mapping); err != nil {
			l.warn(ctx, "skipping mapping", logger.Error(err))
			stats.Skipped++
			return true
		}
		stats.Mappings++
		return true
	})
}

func (l *Loader) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if l.log != nil {
		l.log.Warn(ctx, msg, fields...)
	}
}

// idOr returns the given id, or a generated one when the source omits it.
func idOr(v gjson.Result) string {
	if s := v.String(); s != "" {
		return s
	}
	return uuid.New().String()
}
