package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			log := Get()
			So(log, ShouldNotBeNil)
			// Must not panic at any level.
			log.Debug(context.Background(), "debug message")
			log.Info(context.Background(), "info message", String("key", "value"))
			log.Warn(context.Background(), "warn message", Int("count", 3))
			log.Error(context.Background(), "error message", Error(errors.New("boom")))
		})

		Convey("Then Named returns a scoped logger", func() {
			named := Named("engine")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "scoped message")
		})

		Convey("Then Sync is a no-op", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known names parse", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelDebug)

			So(SetLevelString("INFO"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelInfo)

			So(SetLevelString("warning"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelWarn)

			So(SetLevelString(" error "), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelError)
		})

		Convey("Then the empty string means info", func() {
			So(SetLevelString(""), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelInfo)
		})

		Convey("Then unknown names are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestFields(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		So(String("k", "v"), ShouldResemble, Field{Key: "k", Value: "v"})
		So(Int("k", 7), ShouldResemble, Field{Key: "k", Value: 7})
		So(Float64("k", 1.5), ShouldResemble, Field{Key: "k", Value: 1.5})
		So(Bool("k", true), ShouldResemble, Field{Key: "k", Value: true})
		So(Any("k", []int{1}), ShouldResemble, Field{Key: "k", Value: []int{1}})

		err := errors.New("boom")
		So(Error(err), ShouldResemble, Field{Key: "error", Value: err})
	})
}
