package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/acadmetrics/attain/internal/adapters/http/api"
	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/attainment"
	"github.com/acadmetrics/attain/internal/domain/types"
)

// stubDeps implements api.Dependencies with canned values and an optional
// forced error, recording the single mutation for inspection.
type stubDeps struct {
	err error

	studentCourse string
	indirectPO    string
	indirectValue float64
}

func (s *stubDeps) StudentOutcome(ctx context.Context, studentID, outcomeID, courseID string) (float64, error) {
	s.studentCourse = courseID
	return 85, s.err
}

func (s *stubDeps) CourseOutcome(ctx context.Context, outcomeID, courseID, sectionID string) (types.CourseOutcomeResult, error) {
	return types.CourseOutcomeResult{Level: types.Level2, PercentageMeeting: 60}, s.err
}

func (s *stubDeps) DirectProgramOutcome(ctx context.Context, poID string) (float64, error) {
	return 1.6, s.err
}

func (s *stubDeps) OverallProgramOutcome(ctx context.Context, poID string) (float64, error) {
	return 2.02, s.err
}

func (s *stubDeps) OverallProgramOutcomeWeighted(ctx context.Context, poID string, directPct, indirectPct float64) (float64, error) {
	return (1.6*directPct + 3.0*indirectPct) / 100, s.err
}

func (s *stubDeps) ProgramSummary(ctx context.Context, programID string) (types.ProgramSummary, error) {
	return types.ProgramSummary{ProgramID: programID, POs: []types.ProgramOutcomeRow{{ID: "po1", Code: "PO1"}}}, s.err
}

func (s *stubDeps) CourseSummary(ctx context.Context, courseID string) (types.CourseSummary, error) {
	return types.CourseSummary{CourseID: courseID}, s.err
}

func (s *stubDeps) SetIndirectAttainment(ctx context.Context, poID string, value float64) error {
	if s.err != nil {
		return s.err
	}
	s.indirectPO, s.indirectValue = poID, value
	return nil
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"status": "running"}
}

func newTestServer(deps *stubDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
	return body
}

func TestAttainmentEndpoint(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := &stubDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When querying student mastery", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=student-co&student_id=s1&course_id=c1&co_id=co1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["percentage"], ShouldEqual, 85)
			// The course scope must reach the computation, not be dropped.
			So(deps.studentCourse, ShouldEqual, "c1")
		})

		Convey("When querying a course outcome level", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=course-co&course_id=c1&co_id=co1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["level"], ShouldEqual, 2)
			So(body["percentage_meeting_target"], ShouldEqual, 60)
		})

		Convey("When querying direct program attainment", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=direct-po&po_id=po1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["attainment"], ShouldEqual, 1.6)
		})

		Convey("When querying overall attainment with default weights", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=overall-po&po_id=po1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["attainment"], ShouldEqual, 2.02)
		})

		Convey("When querying overall attainment with explicit weights", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=overall-po&po_id=po1&direct_weight=50&indirect_weight=50")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["attainment"], ShouldEqual, 2.3)
		})

		Convey("When only one weight is given", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=overall-po&po_id=po1&direct_weight=50")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "missing_parameter")
		})

		Convey("When a weight is not a number", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=overall-po&po_id=po1&direct_weight=abc&indirect_weight=50")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the type selector is missing", func() {
			resp, err := http.Get(srv.URL + "/attainment")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "missing_parameter")
		})

		Convey("When the type selector is unknown", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=everything")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "bad_request")
		})

		Convey("When a required id is missing", func() {
			resp, err := http.Get(srv.URL + "/attainment?type=student-co&student_id=s1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "missing_parameter")
		})
	})
}

func TestErrorTranslation(t *testing.T) {
	Convey("Given a server whose computations fail", t, func() {
		deps := &stubDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When the entity is unknown", func() {
			deps.err = repository.ErrNotFound
			resp, err := http.Get(srv.URL + "/attainment?type=direct-po&po_id=nope")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "not_found")
		})

		Convey("When the data graph is broken", func() {
			deps.err = attainment.ErrComputation
			resp, err := http.Get(srv.URL + "/attainment?type=direct-po&po_id=po1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "computation_failed")
		})

		Convey("When the outcome belongs to another course", func() {
			deps.err = attainment.ErrCourseMismatch
			resp, err := http.Get(srv.URL + "/attainment?type=course-co&course_id=c2&co_id=co1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the computation is cancelled", func() {
			deps.err = context.DeadlineExceeded
			resp, err := http.Get(srv.URL + "/attainment?type=direct-po&po_id=po1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "timeout")
		})
	})
}

func TestSummaryEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := &stubDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When requesting a program summary", func() {
			resp, err := http.Get(srv.URL + "/programs/p1/summary")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["program_id"], ShouldEqual, "p1")
		})

		Convey("When requesting a course summary", func() {
			resp, err := http.Get(srv.URL + "/courses/c1/summary")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["course_id"], ShouldEqual, "c1")
		})

		Convey("When the id segment is malformed", func() {
			resp, err := http.Get(srv.URL + "/programs/a/b/summary")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the path has no summary suffix", func() {
			resp, err := http.Get(srv.URL + "/programs/p1")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestIndirectEndpoint(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := &stubDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		put := func(path, payload string) *http.Response {
			req, err := http.NewRequest(http.MethodPut, srv.URL+path, strings.NewReader(payload))
			So(err, ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When storing a valid survey value", func() {
			resp := put("/program-outcomes/po1/indirect", `{"value": 2.5}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["program_outcome_id"], ShouldEqual, "po1")
			So(body["value"], ShouldEqual, 2.5)
			So(deps.indirectPO, ShouldEqual, "po1")
			So(deps.indirectValue, ShouldEqual, 2.5)
		})

		Convey("When storing an explicit zero", func() {
			resp := put("/program-outcomes/po1/indirect", `{"value": 0}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When the value is out of range", func() {
			resp := put("/program-outcomes/po1/indirect", `{"value": 3.5}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "invalid_range")
		})

		Convey("When the value is missing", func() {
			resp := put("/program-outcomes/po1/indirect", `{}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			body := decodeBody(t, resp)
			So(body["code"], ShouldEqual, "missing_parameter")
		})

		Convey("When the payload is not JSON", func() {
			resp := put("/program-outcomes/po1/indirect", `not json`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the program outcome does not exist", func() {
			deps.err = repository.ErrNotFound
			resp := put("/program-outcomes/nope/indirect", `{"value": 2.0}`)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the method is GET", func() {
			resp, err := http.Get(srv.URL + "/program-outcomes/po1/indirect")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		srv := newTestServer(&stubDeps{})
		defer srv.Close()

		Convey("When requesting stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decodeBody(t, resp)
			So(body["status"], ShouldEqual, "running")
		})

		Convey("When requesting health metrics", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
