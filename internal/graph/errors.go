package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidStart is returned when the starting value normalizes to the empty
// identifier. Traversal does not run and no dataset is scanned.
var ErrInvalidStart = errors.New("invalid start identifier")

// InvalidStartError carries the raw starting value that failed normalization.
type InvalidStartError struct {
	Raw string
}

func (e *InvalidStartError) Error() string {
	return fmt.Sprintf("%v: %q contains no digits", ErrInvalidStart, e.Raw)
}

// Unwrap allows errors.Is(err, ErrInvalidStart).
func (e *InvalidStartError) Unwrap() error {
	return ErrInvalidStart
}
