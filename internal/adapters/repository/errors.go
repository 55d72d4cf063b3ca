package repository

import "errors"

// Sentinel kinds for data-access errors. These allow errors.Is from callers.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidValue = errors.New("invalid value")
)
