package resolver

import (
	"context"
	"errors"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
)

// DatabaseBackend serves articles stored in the database and enforces
// visibility of unpublished articles
type DatabaseBackend struct {
	articles repository.ArticleRepository
}

// NewDatabaseBackend creates a DatabaseBackend
func NewDatabaseBackend(articles repository.ArticleRepository) *DatabaseBackend {
	return &DatabaseBackend{articles: articles}
}

func (b *DatabaseBackend) Name() string { return string(SourceDatabase) }

// TryResolve looks the identifier up as a slug. Unpublished articles are
// visible to their owner and to admins only; a visibility failure is an
// error so later backends are not consulted. Every successful read counts
// as a view.
func (b *DatabaseBackend) TryResolve(ctx context.Context, identifier string, viewer *models.User) (*Content, error) {
	article, err := b.articles.GetBySlug(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, nil
	}

	if !article.IsPublished() {
		if err := CanView(ctx, article, viewer); err != nil {
			return nil, err
		}
	}

	count, err := b.articles.IncrementViewCount(ctx, article.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// deleted between the read and the increment
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	article.ViewCount = count

	return &Content{
		Identifier: article.Slug,
		Title:      article.Title,
		Source:     SourceDatabase,
		HTML:       []byte(article.HTMLContent),
		Article:    article,
	}, nil
}

// CanView checks whether viewer may read an unpublished article. Without a
// viewer, a token rejected earlier in the request keeps its own reason.
func CanView(ctx context.Context, article *models.Article, viewer *models.User) error {
	if viewer == nil {
		if err := auth.AuthErrorFromContext(ctx); err != nil {
			return err
		}
		return apperr.Unauthorized(apperr.CodeMissingToken, "authentication required")
	}
	if !viewer.IsAdmin() && viewer.ID != article.UserID {
		return apperr.Forbidden(apperr.CodeAdminRequired, "admin privileges required")
	}
	return nil
}
