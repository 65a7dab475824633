package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState occurs when a lifecycle action violates the document workflow.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrConflict indicates a derived-state conflict such as overpayment.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the actor lacks a required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns a message safe to surface to end users. Wrapped
// domain errors keep their text; anything else collapses to a generic line.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidCredentials):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
