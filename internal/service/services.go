package service

import (
	"context"
	"net/http"
	"time"

	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/resolver"
	"github.com/rs/zerolog"
)

// AuthService defines account and token operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	// Authenticate resolves an access token to an active user
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error
}

// ArticleService defines the article lifecycle and read path
type ArticleService interface {
	List(ctx context.Context, viewer *models.User, query models.ArticleQuery) (*models.ArticlePage, error)
	Resolve(ctx context.Context, identifier string, viewer *models.User) (*resolver.Content, error)
	Create(ctx context.Context, user *models.User, req *models.CreateArticleRequest) (*models.Article, error)
	Update(ctx context.Context, user *models.User, slug string, req *models.UpdateArticleRequest) (*models.Article, error)
	Publish(ctx context.Context, user *models.User, slug string) (*models.Article, error)
	Unpublish(ctx context.Context, user *models.User, slug string) (*models.Article, error)
	Delete(ctx context.Context, user *models.User, slug string) error
	LegacyIndex(ctx context.Context) ([]resolver.Entry, error)
}

// CategoryService defines category management
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id int64, req *models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// UserAdminService defines admin-only user management
type UserAdminService interface {
	List(ctx context.Context, page, perPage int) ([]*models.User, int, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	ToggleActive(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// SettingService defines site settings access
type SettingService interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
}

// ImportService imports legacy flat files into the database
type ImportService interface {
	ImportLegacy(ctx context.Context, ownerID int64) (*models.ImportReport, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// SetupService creates default data on a fresh install
type SetupService interface {
	EnsureDefaultCategories(ctx context.Context) (int, error)
	EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error)
}

// Services holds all service interfaces
type Services struct {
	Auth     AuthService
	Article  ArticleService
	Category CategoryService
	User     UserAdminService
	Setting  SettingService
	Import   ImportService
	Export   ExportService
	Setup    SetupService
}

// Option customizes service construction
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for timestamps written by services
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, tokens *auth.TokenService, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	legacy := resolver.NewLegacyDir(cfg.Legacy.Dir)
	articleRenderer := content.NewArticleRenderer()
	res := resolver.New(log,
		resolver.NewDatabaseBackend(repos.Article),
		resolver.NewMarkdownBackend(legacy, content.NewLegacyRenderer()),
		resolver.NewHTMLBackend(legacy),
	)

	return &Services{
		Auth:     newAuthService(repos.User, tokens, log),
		Article:  newArticleService(repos, res, legacy, articleRenderer, o.now, log),
		Category: newCategoryService(repos, log),
		User:     newUserAdminService(repos, log),
		Setting:  newSettingService(repos.Setting, log),
		Import:   newImportService(repos, legacy, articleRenderer, o.now, log),
		Export:   newExportService(repos, log),
		Setup:    newSetupService(repos, log),
	}
}
