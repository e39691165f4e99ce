package xlsxconnect

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the package file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the file is not a readable xlsx package.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrUnknownSheet indicates the requested sheet is not declared in the workbook.
var ErrUnknownSheet = errors.New("unknown sheet")

// ErrInvalidRange indicates a row range with a bound below 1 or reversed bounds.
var ErrInvalidRange = errors.New("invalid row range")

// ReadError is returned by every Reader operation that fails.
type ReadError struct {
	Path      string
	SheetName string // empty for package-level operations
	Op        string // "sheets", "columns", "rows", "count", "open"
	Err       error
}

func (e *ReadError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s (sheet %q): %v", e.Op, e.Path, e.SheetName, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsInvalidArgument reports whether err was caused by a bad sheet name or row range
// rather than by the package itself.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrUnknownSheet) || errors.Is(err, ErrInvalidRange)
}

func newReadError(path, sheetName, op string, err error) *ReadError {
	return &ReadError{
		Path:      path,
		SheetName: sheetName,
		Op:        op,
		Err:       err,
	}
}
