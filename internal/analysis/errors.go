package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when the input path is not a regular file.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmptyResult is returned when parsing succeeded but no genre was counted.
	ErrEmptyResult = errors.New("no valid data found")
)

// Column kinds reported by MissingColumnError.
const (
	GenreColumn    = "Genres"
	ScheduleColumn = "Schedule (time)"
)

// MissingColumnError reports a header without one of the required columns.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("Could not find a %s column in header", e.Column)
}

// IsMissingColumn reports whether err (or anything it wraps) is a MissingColumnError.
func IsMissingColumn(err error) bool {
	var mce *MissingColumnError
	return errors.As(err, &mce)
}
