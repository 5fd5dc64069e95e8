package service

import (
	"context"
	"errors"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

// DashboardRecent is the number of recent articles on the admin dashboard
const DashboardRecent = 5

type userAdminService struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
	log      zerolog.Logger
}

func newUserAdminService(repos *repository.Repositories, log zerolog.Logger) *userAdminService {
	return &userAdminService{
		users:    repos.User,
		articles: repos.Article,
		log:      log.With().Str("service", "user_admin").Logger(),
	}
}

// List returns a page of users and the total user count
func (s *userAdminService) List(ctx context.Context, page, perPage int) ([]*models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	users, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, internal(err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, internal(err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, total, nil
}

func (s *userAdminService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// Update changes role and active flag. Admins cannot disable or demote themselves.
func (s *userAdminService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	if errs := validation.ValidateUserUpdate(req); len(errs) > 0 {
		return nil, invalid(errs)
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.ID == user.ID {
		if req.Active != nil && !*req.Active {
			return nil, apperr.Validation(apperr.CodeSelfAction, "cannot disable your own account")
		}
		if req.Role != nil && *req.Role != models.RoleAdmin {
			return nil, apperr.Validation(apperr.CodeSelfAction, "cannot remove your own admin role")
		}
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Int64("actor_id", actor.ID).
		Str("role", user.Role).
		Bool("active", user.Active).
		Msg("User updated")
	return user, nil
}

// Delete removes a user that owns no articles. Admins cannot delete themselves.
func (s *userAdminService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if actor.ID == id {
		return apperr.Validation(apperr.CodeSelfAction, "cannot delete your own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	owned, err := s.articles.CountByUser(ctx, id)
	if err != nil {
		return internal(err)
	}
	if owned > 0 {
		return apperr.Validation(apperr.CodeUserHasArticles, "user still owns articles")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrForeignKey):
			return apperr.Validation(apperr.CodeUserHasArticles, "user still owns articles")
		case errors.Is(err, repository.ErrNotFound):
			return apperr.NotFound("user not found")
		}
		return internal(err)
	}

	s.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("User deleted")
	return nil
}

// ToggleActive flips the active flag of another user
func (s *userAdminService) ToggleActive(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor.ID == id {
		return nil, apperr.Validation(apperr.CodeSelfAction, "cannot disable your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = !user.Active
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", id).Bool("active", user.Active).Msg("User active flag toggled")
	return user, nil
}

// Dashboard summarizes users and articles for the admin overview
func (s *userAdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}
	byStatus, err := s.articles.CountByStatus(ctx)
	if err != nil {
		return nil, internal(err)
	}
	recent, err := s.articles.Recent(ctx, DashboardRecent)
	if err != nil {
		return nil, internal(err)
	}
	if recent == nil {
		recent = []*models.Article{}
	}

	stats := &models.DashboardStats{
		TotalUsers:     totalUsers,
		Published:      byStatus[models.StatusPublished],
		Drafts:         byStatus[models.StatusDraft],
		Archived:       byStatus[models.StatusArchived],
		RecentArticles: recent,
	}
	for _, n := range byStatus {
		stats.TotalArticles += n
	}
	return stats, nil
}

func (s *userAdminService) save(ctx context.Context, user *models.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return internal(err)
	}
	return nil
}
