package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrRead    = errors.New("dataset read failed")
	ErrInvalid = errors.New("invalid dataset")
)
