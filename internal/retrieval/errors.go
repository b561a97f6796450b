// Package retrieval provides similarity search over the agency knowledge base
// stored in a Qdrant collection.
package retrieval

import (
	"errors"
	"fmt"
)

// InvalidQueryError indicates the caller supplied an unusable search query.
type InvalidQueryError struct {
	Message string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Message)
}

// UnavailableError indicates the backing index could not be reached or answered
// with an error. Callers treat this as a degradation signal, not a hard failure.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("knowledge index unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("knowledge index unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// IsUnavailable returns true if the error indicates the index could not serve
// the request.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsInvalidQuery returns true if the error indicates a caller-side query problem.
func IsInvalidQuery(err error) bool {
	var qe *InvalidQueryError
	return errors.As(err, &qe)
}
