// Package mailer stages quote emails as Gmail drafts for human review.
package mailer

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Common staging errors.
var (
	// ErrAuthExpired indicates the Gmail credentials are invalid or expired.
	// The pipeline degrades on this: the rendered quote is kept, no draft is staged.
	ErrAuthExpired = errors.New("mailer: credentials expired or revoked")

	// ErrRateLimited indicates the Gmail API rate limit was exceeded.
	ErrRateLimited = errors.New("mailer: rate limit exceeded")
)

// StagingError represents a non-auth failure while creating the draft.
type StagingError struct {
	Message string
	Cause   error
}

func (e *StagingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("staging failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("staging failed: %s", e.Message)
}

func (e *StagingError) Unwrap() error {
	return e.Cause
}

// IsAuthExpired returns true if the error indicates invalid credentials.
func IsAuthExpired(err error) bool {
	if errors.Is(err, ErrAuthExpired) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	// Refresh token rejections surface as oauth2 retrieve errors, not
	// googleapi errors.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return rerr.Response.StatusCode == http.StatusBadRequest ||
			rerr.Response.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited returns true if the error indicates Gmail rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// classifyError converts a Gmail API error into a package error.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if IsAuthExpired(err) {
		return fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	if IsRateLimited(err) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return &StagingError{Message: "gmail api error", Cause: err}
}
