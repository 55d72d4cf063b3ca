package attainment

import "errors"

// Sentinel kinds for engine errors. These allow errors.Is/As from callers.
var (
	// ErrComputation tags failures encountered while traversing the data
	// graph after the requested entities were resolved, e.g. a broken
	// relation. Callers must never present the affected value as zero.
	ErrComputation = errors.New("attainment computation failed")

	// ErrCourseMismatch reports a course outcome evaluated against a
	// course it does not belong to.
	ErrCourseMismatch = errors.New("outcome does not belong to course")
)
