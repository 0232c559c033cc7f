// Package apperr holds the error values shared across Cuaderno packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrMalformedIndex = errors.New("malformed index")
	ErrScanFailure    = errors.New("scan failure")
	ErrInvalidInput   = errors.New("invalid input")
)

// ScanError reports a note that could not be read during a rebuild.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() []error {
	return []error{ErrScanFailure, e.Err}
}
