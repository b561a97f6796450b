// Package quote turns a validated lead plus retrieved context into a
// structured, priced quote draft.
package quote

import (
	"errors"
	"fmt"
)

// UnknownSpecialtyError indicates the lead carries a specialty tag with no
// prompt template behind it. Drafting cannot proceed.
type UnknownSpecialtyError struct {
	Specialty string
}

func (e *UnknownSpecialtyError) Error() string {
	return fmt.Sprintf("unknown specialty: %q", e.Specialty)
}

// MalformedOutputError indicates the model's response could not be parsed
// into a usable quote payload, even after extraction and cleanup.
type MalformedOutputError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed model output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// IsMalformedOutput returns true if err indicates unparseable model output.
func IsMalformedOutput(err error) bool {
	var me *MalformedOutputError
	return errors.As(err, &me)
}

// IsUnknownSpecialty returns true if err indicates an unmapped specialty tag.
func IsUnknownSpecialty(err error) bool {
	var ue *UnknownSpecialtyError
	return errors.As(err, &ue)
}
