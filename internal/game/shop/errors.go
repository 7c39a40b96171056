package shop

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable is reported when the catalog source is missing or unreadable.
var ErrDataUnavailable = errors.New("catalog data unavailable")

// ErrDataFormat is reported when the catalog source is present but malformed.
var ErrDataFormat = errors.New("catalog data malformed")

// LoadError describes why a catalog source could not be loaded.
// Kind is ErrDataUnavailable or ErrDataFormat.
type LoadError struct {
	Source string
	Kind   error
	Err    error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("loading catalog from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("loading catalog from %s: %v: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as an ErrDataUnavailable failure.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
}

// Malformed wraps err as an ErrDataFormat failure.
func Malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrDataFormat, err)
}

// classify returns the kind of a source failure. Failures that carry no kind
// are treated as ErrDataUnavailable.
func classify(err error) error {
	if errors.Is(err, ErrDataFormat) {
		return ErrDataFormat
	}
	return ErrDataUnavailable
}
