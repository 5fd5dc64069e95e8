package service

import (
	"context"
	"errors"
	"strings"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	log    zerolog.Logger
}

func newAuthService(users repository.UserRepository, tokens *auth.TokenService, log zerolog.Logger) *authService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account. The very first account becomes an admin.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	if errs := validation.ValidateRegistration(req); len(errs) > 0 {
		return nil, invalid(errs)
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, internal(err)
	}
	if exists {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "username already exists")
	}
	exists, err = s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, internal(err)
	}
	if exists {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "email already exists")
	}

	// count-then-insert: two simultaneous first registrations may both become admin
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}
	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, internal(err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(apperr.CodeDuplicate, "username or email already exists")
		}
		return nil, internal(err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("role", user.Role).Msg("User registered")
	return s.issue(user)
}

// Login accepts a username or an email
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" || req.Password == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "username and password are required")
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, internal(err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.log.Warn().Str("login", login).Msg("Failed login attempt")
		return nil, apperr.Unauthorized(apperr.CodeBadCredentials, "invalid username or password")
	}
	if !user.Active {
		return nil, apperr.Forbidden(apperr.CodeUserDisabled, "account is disabled")
	}

	s.log.Info().Int64("user_id", user.ID).Msg("User logged in")
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new token pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	claims, err := s.decode(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CheckRevoked(ctx, claims); err != nil {
		if errors.Is(err, auth.ErrTokenRevoked) {
			return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "token revoked")
		}
		return nil, internal(err)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to revoke rotated refresh token")
	}
	return result, nil
}

// Logout revokes the refresh token when revocation is configured
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil || claims.Type != auth.TokenTypeRefresh {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("Failed to revoke refresh token on logout")
	}
	return nil
}

// Authenticate resolves an access token to an active user
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.decode(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return s.activeUser(ctx, claims.UserID)
}

// ChangePassword verifies the old password and stores a new hash
func (s *authService) ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "old_password and new_password are required")
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		return apperr.Validation(apperr.CodeBadCredentials, "old password is incorrect")
	}
	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		return apperr.Validation(apperr.CodeWeakPassword, err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return internal(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return internal(err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("Password changed")
	return nil
}

func (s *authService) decode(token string, want auth.TokenType) (*auth.Claims, error) {
	if token == "" {
		return nil, apperr.Unauthorized(apperr.CodeMissingToken, "authentication token is missing")
	}
	claims, err := s.tokens.Decode(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "token expired")
		}
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "invalid token")
	}
	if claims.Type != want {
		return nil, apperr.Unauthorized(apperr.CodeInvalidTokenType, "wrong token type")
	}
	return claims, nil
}

func (s *authService) activeUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	if user == nil {
		return nil, apperr.Unauthorized(apperr.CodeUserNotFound, "user not found")
	}
	if !user.Active {
		return nil, apperr.Unauthorized(apperr.CodeUserDisabled, "account is disabled")
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*models.AuthResult, error) {
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, internal(err)
	}
	return &models.AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
