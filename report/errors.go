package report

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeed means the seed document is missing or not a valid PDF.
	ErrInvalidSeed = errors.New("report: invalid seed document")
	// ErrAssetUnavailable means a required asset could not be fetched or decoded.
	ErrAssetUnavailable = errors.New("report: required asset unavailable")
)

// StageError reports the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("report: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
