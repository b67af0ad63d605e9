package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField   = errors.New("missing value")
	ErrInvalidNumeric = errors.New("invalid numeric value")
)

// Reason values reported by FieldError.
const (
	ReasonMissing = "missing"
	ReasonInvalid = "invalid_numeric"
)

// FieldError identifies the first field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("missing value for %s", e.Field)
	}
	return fmt.Sprintf("invalid numeric value for %s", e.Field)
}

func (e *FieldError) Unwrap() error {
	if e.Reason == ReasonMissing {
		return ErrMissingField
	}
	return ErrInvalidNumeric
}

// Validate checks every field of rec in order and stops at the first one
// that is absent, empty or not numeric.
func Validate(rec VitalRecord) error {
	for _, f := range rec.fields {
		if isBlank(f.Value) {
			return &FieldError{Field: f.Name, Reason: ReasonMissing}
		}
		if !Coerce(f.Value).Valid {
			return &FieldError{Field: f.Name, Reason: ReasonInvalid}
		}
	}
	return nil
}
