package attainment_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/attainment"
	"github.com/acadmetrics/attain/internal/domain/model"
	"github.com/acadmetrics/attain/internal/domain/types"
)

// countingReader wraps a store and counts the batch-load calls the engine
// makes, so tests can pin how many store round trips one request costs.
type countingReader struct {
	*repository.MemStore

	questionLoads   int
	markLoads       int
	populationLoads int
}

func (c *countingReader) QuestionsByOutcome(ctx context.Context, outcomeID string) ([]model.AssessmentQuestion, error) {
	c.questionLoads++
	return c.MemStore.QuestionsByOutcome(ctx, outcomeID)
}

func (c *countingReader) MarksByQuestions(ctx context.Context, questionIDs []string) ([]model.Mark, error) {
	c.markLoads++
	return c.MemStore.MarksByQuestions(ctx, questionIDs)
}

func (c *countingReader) ActiveStudentsByCourse(ctx context.Context, courseID string) ([]model.Student, error) {
	c.populationLoads++
	return c.MemStore.ActiveStudentsByCourse(ctx, courseID)
}

// failingReader wraps a store and fails every mark load, simulating a
// broken relation under an otherwise intact graph.
type failingReader struct {
	*repository.MemStore
}

var errMarksDown = errors.New("marks backend unavailable")

func (f *failingReader) MarksByQuestions(ctx context.Context, questionIDs []string) ([]model.Mark, error) {
	return nil, errMarksDown
}

func TestSessionBatching(t *testing.T) {
	Convey("Given a course summary over many students", t, func() {
		counting := &countingReader{MemStore: scenarioStore()}
		for i := 0; i < 40; i++ {
			id := "extra" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			counting.PutStudent(model.Student{ID: id, Name: id, SectionID: "sec1", Active: true})
			counting.PutEnrollment(model.Enrollment{StudentID: id, CourseID: "c1", Active: true})
		}
		engine := attainment.New(counting)

		Convey("When the summary is computed", func() {
			_, err := engine.CourseSummary(context.Background(), "c1")
			So(err, ShouldBeNil)

			Convey("Then question and mark loads happen once per outcome", func() {
				// Three outcomes; co3 has no questions, so no mark load.
				So(counting.questionLoads, ShouldEqual, 3)
				So(counting.markLoads, ShouldEqual, 2)
			})

			Convey("Then population loads do not scale with class size", func() {
				// One per outcome row plus one for the student breakdown.
				So(counting.populationLoads, ShouldEqual, 4)
			})
		})

		Convey("When the same outcome is queried twice in one roll-up", func() {
			// Both mappings point at course c1, so its population and each
			// outcome's evidence load at most once within the call.
			_, err := engine.DirectProgramOutcome(context.Background(), "po1")
			So(err, ShouldBeNil)
			So(counting.questionLoads, ShouldEqual, 2)
			So(counting.populationLoads, ShouldEqual, 2)
		})
	})
}

func TestComputationFailures(t *testing.T) {
	Convey("Given a store whose mark loads fail", t, func() {
		failing := &failingReader{MemStore: scenarioStore()}
		engine := attainment.New(failing)
		ctx := context.Background()

		Convey("Then student mastery reports a computation error, not zero", func() {
			_, err := engine.StudentOutcome(ctx, "s1", "co1", "c1")
			So(errors.Is(err, attainment.ErrComputation), ShouldBeTrue)
			So(errors.Is(err, errMarksDown), ShouldBeTrue)
		})

		Convey("Then a course-outcome level reports a computation error", func() {
			_, err := engine.CourseOutcome(ctx, "co1", "c1", "")
			So(errors.Is(err, attainment.ErrComputation), ShouldBeTrue)
		})

		Convey("Then a direct roll-up reports a computation error", func() {
			_, err := engine.DirectProgramOutcome(ctx, "po1")
			So(errors.Is(err, attainment.ErrComputation), ShouldBeTrue)
		})

		Convey("Then a program summary flags the affected row instead of failing", func() {
			sum, err := engine.ProgramSummary(ctx, "p1")
			So(err, ShouldBeNil)
			So(len(sum.POs), ShouldEqual, 2)
			So(sum.POs[0].Unavailable, ShouldBeTrue) // PO1 depends on marks
			So(sum.POs[1].Unavailable, ShouldBeFalse)
			So(sum.POs[1].OverallAttainment, ShouldEqual, 0.9)
		})

		Convey("Then a course summary flags the affected rows instead of failing", func() {
			sum, err := engine.CourseSummary(ctx, "c1")
			So(err, ShouldBeNil)
			So(sum.COs[0].Unavailable, ShouldBeTrue)
			So(sum.COs[1].Unavailable, ShouldBeTrue)
			So(sum.COs[2].Unavailable, ShouldBeFalse) // no questions, no mark load
			So(sum.COs[2].AttainmentLevel, ShouldEqual, types.LevelNone)
		})
	})
}
