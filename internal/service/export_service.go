package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// flushEvery controls how often streamed exports are flushed to the client
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamUsers streams users in the specified format
func (s *exportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting users export")

	switch format {
	case FormatNDJSON:
		return streamNDJSON(w, "users", s.log, func(emit func(any) error) error {
			return s.repos.User.StreamAll(ctx, func(u *models.User) error { return emit(u) })
		})
	case FormatJSON:
		return streamJSONArray(w, "users", func(emit func(any) error) error {
			return s.repos.User.StreamAll(ctx, func(u *models.User) error { return emit(u) })
		})
	case FormatCSV:
		return s.streamUsersCSV(ctx, w)
	default:
		return unsupportedFormat(format)
	}
}

// StreamArticles streams articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	switch format {
	case FormatNDJSON:
		return streamNDJSON(w, "articles", s.log, func(emit func(any) error) error {
			return s.repos.Article.StreamAll(ctx, func(a *models.Article) error { return emit(a) })
		})
	case FormatJSON:
		return streamJSONArray(w, "articles", func(emit func(any) error) error {
			return s.repos.Article.StreamAll(ctx, func(a *models.Article) error { return emit(a) })
		})
	default:
		return unsupportedFormat(format)
	}
}

func (s *exportService) streamUsersCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=users.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "username", "email", "role", "is_active", "created_at", "updated_at"}); err != nil {
		return err
	}

	return s.repos.User.StreamAll(ctx, func(user *models.User) error {
		return writer.Write([]string{
			strconv.FormatInt(user.ID, 10),
			user.Username,
			user.Email,
			user.Role,
			strconv.FormatBool(user.Active),
			user.CreatedAt.UTC().Format(time.RFC3339),
			user.UpdatedAt.UTC().Format(time.RFC3339),
		})
	})
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "articles":
		counts, err := s.repos.Article.CountByStatus(ctx)
		if err != nil {
			return 0, err
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		return total, nil
	default:
		return 0, apperr.Validation(apperr.CodeInvalidInput, "unknown resource: "+resource)
	}
}

func unsupportedFormat(format string) error {
	return apperr.Validation(apperr.CodeInvalidInput, "unsupported format: "+format)
}

func streamNDJSON(w http.ResponseWriter, name string, log zerolog.Logger, each func(emit func(any) error) error) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := each(func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		count++
		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	log.Info().Str("resource", name).Int("count", count).Msg("Export completed")
	return err
}

func streamJSONArray(w http.ResponseWriter, name string, each func(emit func(any) error) error) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".json")

	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	first := true

	err := each(func(v any) error {
		if !first {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		first = false

		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})

	if err != nil {
		return err
	}
	_, err = w.Write([]byte("]"))
	return err
}
