package service

import (
	"context"
	"errors"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/validation"
)

// invalid converts validation errors into a single client error
func invalid(errs validation.Errors) error {
	first := errs.First()
	if first == nil {
		return nil
	}
	return apperr.Validation(apperr.CodeInvalidInput, first.Message)
}

// internal wraps unexpected errors, leaving typed ones alone
func internal(err error) error {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Internal(err)
}

// canModify reports whether user may change an article they may not own
func canModify(user *models.User, article *models.Article) error {
	if user == nil {
		return apperr.Unauthorized(apperr.CodeMissingToken, "authentication required")
	}
	if !user.IsAdmin() && user.ID != article.UserID {
		return apperr.Forbidden(apperr.CodeForbidden, "permission denied")
	}
	return nil
}

// viewerRequired is returned when an optional-auth operation needs a viewer.
// A token rejected by the guard keeps its own reason.
func viewerRequired(ctx context.Context) error {
	if err := auth.AuthErrorFromContext(ctx); err != nil {
		return err
	}
	return apperr.Unauthorized(apperr.CodeMissingToken, "authentication required")
}
