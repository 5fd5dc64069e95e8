// Package apperr defines the typed errors returned by services and mapped to
// HTTP responses at the API boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error codes returned to clients
const (
	CodeMissingToken     = "MISSING_TOKEN"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeInvalidTokenType = "INVALID_TOKEN_TYPE"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeUserDisabled     = "USER_DISABLED"
	CodeAdminRequired    = "ADMIN_REQUIRED"
	CodeForbidden        = "FORBIDDEN"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeSlugConflict     = "SLUG_CONFLICT"
	CodeDuplicate        = "DUPLICATE"
	CodeBadCredentials   = "INVALID_CREDENTIALS"
	CodeWeakPassword     = "WEAK_PASSWORD"
	CodeCategoryInUse    = "CATEGORY_IN_USE"
	CodeUserHasArticles  = "USER_HAS_ARTICLES"
	CodeSelfAction       = "SELF_ACTION"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// Error is an application error carrying a kind, a machine-readable code
// and a client-safe message
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error kind
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Validation reports malformed or missing input
func Validation(code, msg string) *Error { return newError(KindValidation, code, msg) }

// Conflict reports a uniqueness or referential conflict
func Conflict(code, msg string) *Error { return newError(KindConflict, code, msg) }

// Unauthorized reports missing or unusable credentials
func Unauthorized(code, msg string) *Error { return newError(KindUnauthorized, code, msg) }

// Forbidden reports an authenticated caller lacking permission
func Forbidden(code, msg string) *Error { return newError(KindForbidden, code, msg) }

// NotFound reports a missing resource
func NotFound(msg string) *Error { return newError(KindNotFound, CodeNotFound, msg) }

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: err}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Status maps any error to an HTTP status; unknown errors are 500
func Status(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}
