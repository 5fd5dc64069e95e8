package service

import (
	"context"
	"errors"
	"strings"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

type categoryService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
	log        zerolog.Logger
}

func newCategoryService(repos *repository.Repositories, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: repos.Category,
		articles:   repos.Article,
		log:        log.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}
	return category, nil
}

// Create adds a category. The slug defaults to one derived from the name.
func (s *categoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	if errs := validation.ValidateCategory(req, true); len(errs) > 0 {
		return nil, invalid(errs)
	}

	category := &models.Category{Name: strings.TrimSpace(*req.Name)}
	slugSource := category.Name
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slugSource = *req.Slug
	}
	category.Slug = content.Slugify(slugSource)
	if category.Slug == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "slug could not be derived; please provide one")
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.ensureUnique(ctx, category, 0); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(apperr.CodeDuplicate, "category already exists")
		}
		return nil, internal(err)
	}

	s.log.Info().Int64("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req *models.CategoryRequest) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateCategory(req, false); len(errs) > 0 {
		return nil, invalid(errs)
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := content.Slugify(*req.Slug)
		if slug == "" {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "slug cannot be empty")
		}
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.ensureUnique(ctx, category, category.ID); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Conflict(apperr.CodeDuplicate, "category already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("category not found")
		}
		return nil, internal(err)
	}

	s.log.Info().Int64("category_id", category.ID).Msg("Category updated")
	return category, nil
}

// Delete removes a category that no article references
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.articles.CountByCategory(ctx, id)
	if err != nil {
		return internal(err)
	}
	if count > 0 {
		return apperr.Validation(apperr.CodeCategoryInUse, "category still has articles")
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrForeignKey):
			return apperr.Validation(apperr.CodeCategoryInUse, "category still has articles")
		case errors.Is(err, repository.ErrNotFound):
			return apperr.NotFound("category not found")
		}
		return internal(err)
	}

	s.log.Info().Int64("category_id", id).Msg("Category deleted")
	return nil
}

func (s *categoryService) ensureUnique(ctx context.Context, category *models.Category, excludeID int64) error {
	taken, err := s.categories.NameTaken(ctx, category.Name, excludeID)
	if err != nil {
		return internal(err)
	}
	if taken {
		return apperr.Conflict(apperr.CodeDuplicate, "category name already exists")
	}
	taken, err = s.categories.SlugTaken(ctx, category.Slug, excludeID)
	if err != nil {
		return internal(err)
	}
	if taken {
		return apperr.Conflict(apperr.CodeDuplicate, "category slug already exists")
	}
	return nil
}
