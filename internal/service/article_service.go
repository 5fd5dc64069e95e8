package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/resolver"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

// Pagination defaults for article listings
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// StatusAll lists articles of every status; "null" is accepted as an alias
const StatusAll = "all"

type articleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	resolver   *resolver.Resolver
	legacy     *resolver.LegacyDir
	renderer   *content.Renderer
	now        func() time.Time
	log        zerolog.Logger
}

func newArticleService(
	repos *repository.Repositories,
	res *resolver.Resolver,
	legacy *resolver.LegacyDir,
	renderer *content.Renderer,
	now func() time.Time,
	log zerolog.Logger,
) *articleService {
	return &articleService{
		articles:   repos.Article,
		categories: repos.Category,
		resolver:   res,
		legacy:     legacy,
		renderer:   renderer,
		now:        now,
		log:        log.With().Str("service", "article").Logger(),
	}
}

// List returns a page of articles. Anonymous callers only see published
// articles; other statuses need an admin, except for a caller's own articles.
func (s *articleService) List(ctx context.Context, viewer *models.User, q models.ArticleQuery) (*models.ArticlePage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	status := strings.TrimSpace(q.Status)
	if status == "null" {
		status = StatusAll
	}
	if status != "" && status != StatusAll && !models.ValidStatuses[status] {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid status filter")
	}

	filter := models.ArticleFilter{
		CategoryID: q.CategoryID,
		Search:     strings.TrimSpace(q.Search),
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}

	switch {
	case q.Mine:
		if viewer == nil {
			return nil, viewerRequired(ctx)
		}
		filter.UserID = &viewer.ID
		if status != StatusAll {
			filter.Status = status
		}
	case status == "" || status == models.StatusPublished:
		filter.Status = models.StatusPublished
	default:
		if viewer == nil {
			return nil, viewerRequired(ctx)
		}
		if !viewer.IsAdmin() {
			return nil, apperr.Forbidden(apperr.CodeAdminRequired, "admin privileges required")
		}
		if status != StatusAll {
			filter.Status = status
		}
	}

	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, internal(err)
	}

	pages := 0
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &models.ArticlePage{
		Articles: articles,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		Pages:    pages,
	}, nil
}

// Resolve finds an article by identifier in the database or the legacy directory
func (s *articleService) Resolve(ctx context.Context, identifier string, viewer *models.User) (*resolver.Content, error) {
	return s.resolver.Resolve(ctx, identifier, viewer)
}

// Create stores a new article owned by user
func (s *articleService) Create(ctx context.Context, user *models.User, req *models.CreateArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateArticleCreate(req); len(errs) > 0 {
		return nil, invalid(errs)
	}
	if req.Status != "" && req.Status != models.StatusDraft && req.Status != models.StatusPublished {
		return nil, apperr.Validation(apperr.CodeInvalidStatus, "new articles must be draft or published")
	}

	slugSource := req.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = req.Title
	}
	slug := content.Slugify(slugSource)
	if slug == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "slug could not be derived; please provide one")
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	category, err := s.lookupCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.Render(req.Content)
	if err != nil {
		return nil, internal(err)
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	article := &models.Article{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Content:     req.Content,
		HTMLContent: html,
		Excerpt:     excerptOrDefault(req.Excerpt, html),
		CoverImage:  strings.TrimSpace(req.CoverImage),
		Status:      status,
		SortOrder:   req.SortOrder,
		UserID:      user.ID,
		AuthorName:  user.Username,
	}
	if category != nil {
		article.CategoryID = &category.ID
		article.CategoryName = category.Name
	}
	if status == models.StatusPublished {
		now := s.now()
		article.PublishedAt = &now
	}

	if err := s.articles.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, slugConflict()
		}
		return nil, internal(err)
	}

	s.log.Info().
		Int64("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", article.Status).
		Int64("user_id", user.ID).
		Msg("Article created")
	return article, nil
}

// Update applies a partial update. published_at is stamped only when the
// article enters the published status without one.
func (s *articleService) Update(ctx context.Context, user *models.User, slug string, req *models.UpdateArticleRequest) (*models.Article, error) {
	article, err := s.loadForWrite(ctx, user, slug)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateArticleUpdate(req); len(errs) > 0 {
		return nil, invalid(errs)
	}

	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		newSlug := content.Slugify(*req.Slug)
		if newSlug == "" {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "slug cannot be empty")
		}
		if newSlug != article.Slug {
			if err := s.ensureSlugFree(ctx, newSlug, article.ID); err != nil {
				return nil, err
			}
			article.Slug = newSlug
		}
	}
	if req.Content != nil && *req.Content != article.Content {
		html, err := s.renderer.Render(*req.Content)
		if err != nil {
			return nil, internal(err)
		}
		article.Content = *req.Content
		article.HTMLContent = html
	}
	if req.Excerpt != nil {
		article.Excerpt = excerptOrDefault(*req.Excerpt, article.HTMLContent)
	} else if article.Excerpt == "" {
		article.Excerpt = excerptOrDefault("", article.HTMLContent)
	}
	if req.CoverImage != nil {
		article.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.SortOrder != nil {
		article.SortOrder = *req.SortOrder
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			article.CategoryID = nil
			article.CategoryName = ""
		} else {
			category, err := s.lookupCategory(ctx, req.CategoryID)
			if err != nil {
				return nil, err
			}
			article.CategoryID = &category.ID
			article.CategoryName = category.Name
		}
	}
	if req.Status != nil && *req.Status != article.Status {
		if !models.CanTransition(article.Status, *req.Status) {
			return nil, apperr.Validation(apperr.CodeInvalidStatus,
				"cannot change status from "+article.Status+" to "+*req.Status)
		}
		if *req.Status == models.StatusPublished && article.PublishedAt == nil {
			now := s.now()
			article.PublishedAt = &now
		}
		article.Status = *req.Status
	}

	if err := s.save(ctx, article); err != nil {
		return nil, err
	}
	s.log.Info().Int64("article_id", article.ID).Str("slug", article.Slug).Msg("Article updated")
	return article, nil
}

// Publish makes the article public and always refreshes published_at
func (s *articleService) Publish(ctx context.Context, user *models.User, slug string) (*models.Article, error) {
	article, err := s.loadForWrite(ctx, user, slug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	article.Status = models.StatusPublished
	article.PublishedAt = &now

	if err := s.save(ctx, article); err != nil {
		return nil, err
	}
	s.log.Info().Int64("article_id", article.ID).Time("published_at", now).Msg("Article published")
	return article, nil
}

// Unpublish returns the article to draft and keeps published_at
func (s *articleService) Unpublish(ctx context.Context, user *models.User, slug string) (*models.Article, error) {
	article, err := s.loadForWrite(ctx, user, slug)
	if err != nil {
		return nil, err
	}

	article.Status = models.StatusDraft
	if err := s.save(ctx, article); err != nil {
		return nil, err
	}
	s.log.Info().Int64("article_id", article.ID).Msg("Article unpublished")
	return article, nil
}

// Delete hard-deletes the article
func (s *articleService) Delete(ctx context.Context, user *models.User, slug string) error {
	article, err := s.loadForWrite(ctx, user, slug)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("article not found")
		}
		return internal(err)
	}
	s.log.Info().Int64("article_id", article.ID).Int64("user_id", user.ID).Msg("Article deleted")
	return nil
}

// LegacyIndex lists the flat-file articles
func (s *articleService) LegacyIndex(ctx context.Context) ([]resolver.Entry, error) {
	entries, err := s.legacy.List()
	if err != nil {
		return nil, internal(err)
	}
	if entries == nil {
		entries = []resolver.Entry{}
	}
	return entries, nil
}

func (s *articleService) loadForWrite(ctx context.Context, user *models.User, slug string) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, internal(err)
	}
	if article == nil {
		return nil, apperr.NotFound("article not found")
	}
	if err := canModify(user, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) save(ctx context.Context, article *models.Article) error {
	if err := s.articles.Update(ctx, article); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return slugConflict()
		case errors.Is(err, repository.ErrNotFound):
			return apperr.NotFound("article not found")
		}
		return internal(err)
	}
	return nil
}

func (s *articleService) ensureSlugFree(ctx context.Context, slug string, excludeID int64) error {
	taken, err := s.articles.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return internal(err)
	}
	if taken {
		return slugConflict()
	}
	return nil
}

func (s *articleService) lookupCategory(ctx context.Context, id *int64) (*models.Category, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	category, err := s.categories.GetByID(ctx, *id)
	if err != nil {
		return nil, internal(err)
	}
	if category == nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "category not found")
	}
	return category, nil
}

func slugConflict() error {
	return apperr.Conflict(apperr.CodeSlugConflict, "slug already exists")
}

func excerptOrDefault(excerpt, html string) string {
	if e := strings.TrimSpace(excerpt); e != "" {
		return e
	}
	return content.Excerpt(html, content.ExcerptLength)
}
