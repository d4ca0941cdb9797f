package session

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeRoleMismatch        = "ROLE_MISMATCH"
	TextCodeProfileFetchFailure = "PROFILE_FETCH_FAILURE"
	TextCodeSignInInFlight      = "SIGN_IN_IN_FLIGHT"
	TextCodeNotAuthenticated    = "NOT_AUTHENTICATED"
)

// ErrInvalidCredentials is returned when the provider rejects the
// email/password pair.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrRoleMismatch is returned when the authenticated profile's role differs
// from the role requested at sign-in. The just-established provider session
// is revoked before this error surfaces.
var ErrRoleMismatch = goerrors.New("account role does not match the requested login role", goerrors.CategoryAuth).
	WithTextCode(TextCodeRoleMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrProfileFetchFailure is returned when the profile lookup errors after a
// successful credential check.
var ErrProfileFetchFailure = goerrors.New("could not load the account profile", goerrors.CategoryInternal).
	WithTextCode(TextCodeProfileFetchFailure).
	WithCode(goerrors.CodeInternal)

// ErrSignInInFlight is returned when a sign-in is requested while another is
// still pending. No provider call is made.
var ErrSignInInFlight = goerrors.New("a sign-in is already in progress", goerrors.CategoryConflict).
	WithTextCode(TextCodeSignInInFlight).
	WithCode(goerrors.CodeConflict)

// ErrNotAuthenticated is returned for operations that require an active
// session while the store is anonymous.
var ErrNotAuthenticated = goerrors.New("you must be logged in to do that", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the bcrypt comparison sentinel.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrNoEmptyString guards against hashing empty passwords.
var ErrNoEmptyString = errors.New("cannot hash an empty string")

// ErrValuesMustMatch is returned by form rules that compare two fields.
var ErrValuesMustMatch = errors.New("values must match")

// IsInvalidCredentials checks for a credential rejection.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsRoleMismatch checks for a role-verification rejection.
func IsRoleMismatch(err error) bool {
	return hasTextCode(err, TextCodeRoleMismatch)
}

// IsProfileFetchFailure checks for a failed profile lookup.
func IsProfileFetchFailure(err error) bool {
	return hasTextCode(err, TextCodeProfileFetchFailure)
}

// IsSignInInFlight checks for the single-flight guard rejection.
func IsSignInInFlight(err error) bool {
	return hasTextCode(err, TextCodeSignInInFlight)
}

// IsNotAuthenticated checks for the anonymous-store rejection.
func IsNotAuthenticated(err error) bool {
	return hasTextCode(err, TextCodeNotAuthenticated)
}

func hasTextCode(err error, code string) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if richErr, ok := current.(*goerrors.Error); ok && richErr.TextCode == code {
			return true
		}
	}
	return false
}
