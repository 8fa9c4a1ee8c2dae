package gnubg

import "errors"

var (
	ErrAllocation        = errors.New("allocation failed")
	ErrFormat            = errors.New("invalid format")
	ErrTruncatedData     = errors.New("truncated data")
	ErrIO                = errors.New("i/o error")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotLoaded         = errors.New("neural net not loaded")
	ErrInvalidArgument   = errors.New("invalid argument")
)
