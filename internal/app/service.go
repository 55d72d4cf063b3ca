// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/acadmetrics/attain/internal/adapters/dataset"
	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/attainment"
	"github.com/acadmetrics/attain/internal/domain/types"
	"github.com/acadmetrics/attain/pkg/logger"
	"github.com/acadmetrics/attain/pkg/metrics"
)

// Tier labels used for metrics.
const (
	tierStudent = "student_outcome"
	tierCourse  = "course_outcome"
	tierDirect  = "direct_po"
	tierOverall = "overall_po"
	tierProgram = "program_summary"
	tierSummary = "course_summary"
)

// Service implements the API dependencies for the attainment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  *repository.MemStore
	engine *attainment.Engine

	// Configuration
	directWeightPct   float64
	indirectWeightPct float64
	defaultIndirect   float64
	defaultTarget     float64
	datasetPath       string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithBlendWeights sets the direct/indirect blend split.
func WithBlendWeights(directPct, indirectPct float64) Option {
	return func(s *Service) {
		if directPct >= 0 && indirectPct >= 0 {
			s.directWeightPct = directPct
			s.indirectWeightPct = indirectPct
		}
	}
}

// WithDefaultIndirect sets the indirect attainment assumed when a program
// outcome has no stored survey value.
func WithDefaultIndirect(v float64) Option {
	return func(s *Service) {
		if v >= 0 && v <= 3 {
			s.defaultIndirect = v
		}
	}
}

// WithDefaultCourseTarget sets the target applied to dataset courses that
// omit one.
func WithDefaultCourseTarget(target float64) Option {
	return func(s *Service) {
		if target > 0 && target <= 100 {
			s.defaultTarget = target
		}
	}
}

// WithDatasetPath points the service at a JSON dataset to load on Start.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithStore injects a pre-populated store, mainly for tests.
func WithStore(store *repository.MemStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		directWeightPct:   70,
		indirectWeightPct: 30,
		defaultIndirect:   3.0,
		defaultTarget:     60,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store and engine and loads the configured dataset.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting attainment service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
	}

	if s.datasetPath != "" {
		loader := dataset.NewLoader(
			dataset.WithDefaultTarget(s.defaultTarget),
			dataset.WithLoaderLogger(s.logger),
		)
		stats, err := loader.LoadFile(ctx, s.datasetPath, s.store)
		if err != nil {
			return err
		}
		s.logger.Info(ctx, "dataset loaded",
			logger.String("path", s.datasetPath),
			logger.Int("courses", stats.Courses),
			logger.Int("students", stats.Students),
			logger.Int("marks", stats.Marks),
			logger.Int("skipped", stats.Skipped),
		)
	}

	s.engine = attainment.New(s.store,
		attainment.WithBlendWeights(s.directWeightPct, s.indirectWeightPct),
		attainment.WithDefaultIndirect(s.defaultIndirect),
	)

	s.started = true
	s.logger.Info(ctx, "attainment service started",
		logger.Float64("directWeightPct", s.directWeightPct),
		logger.Float64("indirectWeightPct", s.indirectWeightPct),
	)

	return nil
}

// Stop shuts the service down. The engine holds no background work, so
// this only flips lifecycle state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "attainment service stopped")
}

// instrument runs fn, recording per-tier counters and latency.
func instrument[T any](tier string, fn func() (T, error)) (T, error) {
	start := time.Now()
	metrics.RecordComputation(tier)
	v, err := fn()
	metrics.RecordComputationDuration(tier, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordComputationError(tier)
	}
	return v, err
}

// StudentOutcome returns a student's mastery percentage for one outcome,
// scoped to the outcome's owning course when courseID is non-empty.
func (s *Service) StudentOutcome(ctx context.Context, studentID, outcomeID, courseID string) (float64, error) {
	return instrument(tierStudent, func() (float64, error) {
		return s.engine.StudentOutcome(ctx, studentID, outcomeID, courseID)
	})
}

// CourseOutcome returns the attainment level of one outcome over a course
// or section population.
func (s *Service) CourseOutcome(ctx context.Context, outcomeID, courseID, sectionID string) (types.CourseOutcomeResult, error) {
	return instrument(tierCourse, func() (types.CourseOutcomeResult, error) {
		return s.engine.CourseOutcome(ctx, outcomeID, courseID, sectionID)
	})
}

// DirectProgramOutcome returns the computed program-outcome attainment.
func (s *Service) DirectProgramOutcome(ctx context.Context, poID string) (float64, error) {
	return instrument(tierDirect, func() (float64, error) {
		return s.engine.DirectProgramOutcome(ctx, poID)
	})
}

// OverallProgramOutcome returns the blended program-outcome attainment
// using the configured weights.
func (s *Service) OverallProgramOutcome(ctx context.Context, poID string) (float64, error) {
	return instrument(tierOverall, func() (float64, error) {
		return s.engine.OverallProgramOutcome(ctx, poID)
	})
}

// OverallProgramOutcomeWeighted returns the blended attainment with
// caller-supplied weights. The pair is not forced to sum to 100.
func (s *Service) OverallProgramOutcomeWeighted(ctx context.Context, poID string, directPct, indirectPct float64) (float64, error) {
	return instrument(tierOverall, func() (float64, error) {
		return s.engine.OverallProgramOutcomeWeighted(ctx, poID, directPct, indirectPct)
	})
}

// ProgramSummary returns the report-ready rollup for a program.
func (s *Service) ProgramSummary(ctx context.Context, programID string) (types.ProgramSummary, error) {
	return instrument(tierProgram, func() (types.ProgramSummary, error) {
		return s.engine.ProgramSummary(ctx, programID)
	})
}

// CourseSummary returns the report-ready rollup for a course.
func (s *Service) CourseSummary(ctx context.Context, courseID string) (types.CourseSummary, error) {
	return instrument(tierSummary, func() (types.CourseSummary, error) {
		return s.engine.CourseSummary(ctx, courseID)
	})
}

// SetIndirectAttainment stores a survey-sourced indirect attainment value
// for a program outcome. The value must lie in [0,3].
func (s *Service) SetIndirectAttainment(ctx context.Context, poID string, value float64) error {
	if err := s.store.SetIndirectAttainment(ctx, poID, value); err != nil {
		return err
	}
	metrics.RecordIndirectUpdate()
	s.logger.Info(ctx, "indirect attainment updated",
		logger.String("po", poID), logger.Float64("value", value))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"directWeightPct":   s.directWeightPct,
		"indirectWeightPct": s.indirectWeightPct,
		"defaultIndirect":   s.defaultIndirect,
	}

	if s.started {
		counts := s.store.Counts(context.Background())
		stats["counts"] = counts

		metrics.UpdateStoreEntities("students", counts.Students)
		metrics.UpdateStoreEntities("courses", counts.Courses)
		metrics.UpdateStoreEntities("marks", counts.Marks)
		metrics.UpdateStoreEntities("mappings", counts.Mappings)
	}

	return stats
}
