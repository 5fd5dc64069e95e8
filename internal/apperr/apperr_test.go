package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/newsroom-api/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation(apperr.CodeInvalidInput, "bad"), http.StatusBadRequest},
		{"conflict", apperr.Conflict(apperr.CodeSlugConflict, "taken"), http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorized(apperr.CodeMissingToken, "no token"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden(apperr.CodeAdminRequired, "admin"), http.StatusForbidden},
		{"not found", apperr.NotFound("missing"), http.StatusNotFound},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", apperr.NotFound("missing")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(tt.err))
		})
	}
}

func TestAsAndIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", apperr.Forbidden(apperr.CodeAdminRequired, "admin required"))

	e, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeAdminRequired, e.Code)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.False(t, apperr.IsKind(err, apperr.KindNotFound))

	_, ok = apperr.As(errors.New("plain"))
	assert.False(t, ok)
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := apperr.Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error: db down", err.Error())
}
