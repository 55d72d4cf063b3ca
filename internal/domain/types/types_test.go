package types_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/acadmetrics/attain/internal/domain/types"
)

func TestAttainmentLevel(t *testing.T) {
	Convey("Given the attainment level scale", t, func() {
		Convey("Then only 0 through 3 are valid", func() {
			So(types.LevelNone.Valid(), ShouldBeTrue)
			So(types.Level1.Valid(), ShouldBeTrue)
			So(types.Level2.Valid(), ShouldBeTrue)
			So(types.Level3.Valid(), ShouldBeTrue)
			So(types.AttainmentLevel(4).Valid(), ShouldBeFalse)
			So(types.AttainmentLevel(-1).Valid(), ShouldBeFalse)
		})
	})
}

func TestCorrelationLevel(t *testing.T) {
	Convey("Given the correlation strength scale", t, func() {
		Convey("Then only 1 through 3 are valid mapping strengths", func() {
			So(types.CorrelationLow.Valid(), ShouldBeTrue)
			So(types.CorrelationMedium.Valid(), ShouldBeTrue)
			So(types.CorrelationHigh.Valid(), ShouldBeTrue)
			So(types.CorrelationAbsent.Valid(), ShouldBeFalse)
			So(types.CorrelationLevel(4).Valid(), ShouldBeFalse)
		})
	})
}

func TestSummaryJSON(t *testing.T) {
	Convey("Given a student row", t, func() {
		row := types.StudentRow{
			StudentID: "s1",
			Name:      "Ada",
			Outcomes: map[string]types.StudentOutcome{
				"co1": {Percentage: 85, MeetsTarget: true},
			},
		}

		Convey("When encoded as JSON", func() {
			data, err := json.Marshal(row)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"co_data"`)
			So(string(data), ShouldContainSubstring, `"meets_target":true`)
		})
	})

	Convey("Given a program outcome row with no values", t, func() {
		row := types.ProgramOutcomeRow{ID: "po1", Code: "PO1", Unavailable: true}

		Convey("When encoded as JSON", func() {
			data, err := json.Marshal(row)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"unavailable":true`)
		})
	})
}
