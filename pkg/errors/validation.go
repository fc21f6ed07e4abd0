package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidArgument, "%s must be a finite number, got %g", name, v)
	}
	return nil
}

// ValidatePositive rejects values that are not strictly greater than zero.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidArgument, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateMinCount rejects counts below minimum.
func ValidateMinCount(name string, n, minimum int) error {
	if n < minimum {
		return New(ErrCodeInvalidArgument, "%s must be at least %d, got %d", name, minimum, n)
	}
	return nil
}

// ValidateRange checks a paired (low, high) range. Both ends must be finite
// and low must not exceed high. Equal ends are a valid degenerate range.
func ValidateRange(name string, low, high float64) error {
	if err := ValidateFinite(name+" low", low); err != nil {
		return err
	}
	if err := ValidateFinite(name+" high", high); err != nil {
		return err
	}
	if low > high {
		return New(ErrCodeInvalidArgument, "%s is inverted: low %g > high %g", name, low, high)
	}
	return nil
}

// ValidateWithin rejects values outside the closed interval [lo, hi].
func ValidateWithin(name string, v, lo, hi float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return New(ErrCodeInvalidArgument, "%s must be within [%g, %g], got %g", name, lo, hi, v)
	}
	return nil
}

// ValidateLabel validates a text label drawn onto the poster.
//
// A label is rejected when it is:
//   - longer than 200 characters
//   - carrying control characters (labels are single-line)
//
// Empty labels are allowed and simply not drawn.
func ValidateLabel(name, text string) error {
	const maxLabelLength = 200
	if len([]rune(text)) > maxLabelLength {
		return New(ErrCodeInvalidArgument, "%s too long (max %d characters)", name, maxLabelLength)
	}
	if strings.IndexFunc(text, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidArgument, "%s contains invalid control characters", name)
	}
	return nil
}
