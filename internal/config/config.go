// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Default attainment policy constants.
const (
	defaultDirectWeightPct    = 70
	defaultIndirectWeightPct  = 30
	defaultIndirectAttainment = 3.0
	defaultCourseTarget       = 60
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath optionally points at a JSON dataset loaded into the
	// in-memory store at startup.
	DatasetPath string `koanf:"dataset_path"`

	// DirectWeightPct and IndirectWeightPct split the blend between
	// computed and survey-sourced program-outcome attainment. They must
	// sum to 100.
	DirectWeightPct   float64 `koanf:"direct_weight_pct"`
	IndirectWeightPct float64 `koanf:"indirect_weight_pct"`

	// DefaultIndirectAttainment is assumed for program outcomes with no
	// stored survey value. Must lie in [0,3].
	DefaultIndirectAttainment float64 `koanf:"default_indirect_attainment"`

	// DefaultCourseTarget is applied at dataset-load time to courses
	// whose source row omits a target percentage.
	DefaultCourseTarget float64 `koanf:"default_course_target"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		Addr:                      ":9080",
		DirectWeightPct:           defaultDirectWeightPct,
		IndirectWeightPct:         defaultIndirectWeightPct,
		DefaultIndirectAttainment: defaultIndirectAttainment,
		DefaultCourseTarget:       defaultCourseTarget,
	}
}
