package auth

import (
	"context"

	"github.com/newsroom-api/internal/models"
)

type userContextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*models.User)
	return user, ok && user != nil
}

type authErrorContextKey struct{}

// WithAuthError records why a token presented on an optional route was not
// accepted
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authErrorContextKey{}, err)
}

// AuthErrorFromContext returns the error recorded by WithAuthError, if any
func AuthErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(authErrorContextKey{}).(error)
	return err
}
