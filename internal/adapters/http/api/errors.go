package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidRange     = errors.New("value out of range")
)
