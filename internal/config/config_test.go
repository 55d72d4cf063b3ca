package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := New()

		Convey("Then the defaults are sane", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DatasetPath, ShouldBeEmpty)
			So(cfg.DirectWeightPct, ShouldEqual, 70)
			So(cfg.IndirectWeightPct, ShouldEqual, 30)
			So(cfg.DefaultIndirectAttainment, ShouldEqual, 3.0)
			So(cfg.DefaultCourseTarget, ShouldEqual, 60)
		})

		Convey("Then the defaults validate", func() {
			So(cfg.validate(), ShouldBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a valid base configuration", t, func() {
		base := New()

		Convey("When the address is empty", func() {
			cfg := *base
			cfg.Addr = ""
			So(errors.Is(cfg.validate(), ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When a blend weight is negative", func() {
			cfg := *base
			cfg.DirectWeightPct = -10
			cfg.IndirectWeightPct = 110
			So(errors.Is(cfg.validate(), ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the blend weights do not sum to 100", func() {
			cfg := *base
			cfg.DirectWeightPct = 60
			cfg.IndirectWeightPct = 30
			So(errors.Is(cfg.validate(), ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the default indirect attainment is out of range", func() {
			cfg := *base
			cfg.DefaultIndirectAttainment = 3.5
			So(errors.Is(cfg.validate(), ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the default course target is out of range", func() {
			cfg := *base
			cfg.DefaultCourseTarget = 150
			So(errors.Is(cfg.validate(), ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When a 50/50 split is configured", func() {
			cfg := *base
			cfg.DirectWeightPct = 50
			cfg.IndirectWeightPct = 50
			So(cfg.validate(), ShouldBeNil)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		// Convey re-runs this closure per branch while t.Setenv cleanups
		// only fire at test end, so scrub the prefix explicitly.
		for _, key := range []string{
			"ATTAIN_CONFIG", "ATTAIN_ADDR", "ATTAIN_LOG_LEVEL",
			"ATTAIN_DIRECT_WEIGHT_PCT", "ATTAIN_INDIRECT_WEIGHT_PCT",
		} {
			os.Unsetenv(key)
		}
		ctx := context.Background()

		Convey("When nothing is configured", func() {
			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DirectWeightPct, ShouldEqual, 70)
		})

		Convey("When environment variables override defaults", func() {
			t.Setenv("ATTAIN_ADDR", ":7070")
			t.Setenv("ATTAIN_LOG_LEVEL", "debug")
			t.Setenv("ATTAIN_DIRECT_WEIGHT_PCT", "80")
			t.Setenv("ATTAIN_INDIRECT_WEIGHT_PCT", "20")

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.DirectWeightPct, ShouldEqual, 80)
			So(cfg.IndirectWeightPct, ShouldEqual, 20)
		})

		Convey("When a config file is provided", func() {
			path := filepath.Join(t.TempDir(), "attain.yaml")
			content := "addr: \":6060\"\ndefault_course_target: 55\n"
			So(os.WriteFile(path, []byte(content), 0600), ShouldBeNil)
			t.Setenv("ATTAIN_CONFIG", path)

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.DefaultCourseTarget, ShouldEqual, 55)
			// Untouched keys keep their defaults.
			So(cfg.DirectWeightPct, ShouldEqual, 70)
		})

		Convey("When env overrides the file", func() {
			path := filepath.Join(t.TempDir(), "attain.yaml")
			So(os.WriteFile(path, []byte("addr: \":6060\"\n"), 0600), ShouldBeNil)
			t.Setenv("ATTAIN_CONFIG", path)
			t.Setenv("ATTAIN_ADDR", ":5050")

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
		})

		Convey("When the config file is missing", func() {
			t.Setenv("ATTAIN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := Load(ctx)
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When the loaded weights do not sum to 100", func() {
			t.Setenv("ATTAIN_DIRECT_WEIGHT_PCT", "90")
			_, err := Load(ctx)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
