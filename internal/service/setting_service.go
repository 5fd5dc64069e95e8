package service

import (
	"context"
	"strings"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/rs/zerolog"
)

// MaxSettingKeyLength bounds setting keys
const MaxSettingKeyLength = 100

type settingService struct {
	settings repository.SettingRepository
	log      zerolog.Logger
}

func newSettingService(settings repository.SettingRepository, log zerolog.Logger) *settingService {
	return &settingService{
		settings: settings,
		log:      log.With().Str("service", "setting").Logger(),
	}
}

func (s *settingService) List(ctx context.Context) ([]*models.Setting, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if settings == nil {
		settings = []*models.Setting{}
	}
	return settings, nil
}

func (s *settingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, internal(err)
	}
	if setting == nil {
		return nil, apperr.NotFound("setting not found")
	}
	return setting, nil
}

// Set creates or replaces a setting
func (s *settingService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > MaxSettingKeyLength {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid setting key")
	}

	setting, err := s.settings.Set(ctx, key, value)
	if err != nil {
		return nil, internal(err)
	}
	s.log.Info().Str("key", key).Msg("Setting updated")
	return setting, nil
}
