package service

import (
	"context"
	"errors"

	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/rs/zerolog"
)

type setupService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newSetupService(repos *repository.Repositories, log zerolog.Logger) *setupService {
	return &setupService{
		repos: repos,
		log:   log.With().Str("service", "setup").Logger(),
	}
}

// EnsureDefaultCategories creates the built-in categories that are missing
// and returns how many were created
func (s *setupService) EnsureDefaultCategories(ctx context.Context) (int, error) {
	created := 0
	for _, def := range models.DefaultCategories {
		existing, err := s.repos.Category.GetByNameOrSlug(ctx, def.Slug)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		category := def
		if err := s.repos.Category.Create(ctx, &category); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}
	if created > 0 {
		s.log.Info().Int("created", created).Msg("Default categories seeded")
	}
	return created, nil
}

// EnsureAdmin creates an admin account unless the username already exists.
// The boolean result reports whether a user was created.
func (s *setupService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	existing, err := s.repos.User.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, false, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", username).Msg("Admin account created")
	return user, true, nil
}
