package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

var (
	// ErrNotFound is returned by writes that matched no row. Reads return
	// (nil, nil) for a missing row instead.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate wraps unique constraint violations
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey wraps foreign key violations
	ErrForeignKey = errors.New("record is still referenced")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.User) error) error
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	// SlugTaken reports whether slug is used by an article other than excludeID
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	IncrementViewCount(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Recent(ctx context.Context, limit int) ([]*models.Article, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	// GetByNameOrSlug matches either column, used by the legacy importer
	GetByNameOrSlug(ctx context.Context, value string) (*models.Category, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// SettingRepository defines the interface for site settings
type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
	List(ctx context.Context) ([]*models.Setting, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Article  ArticleRepository
	Category CategoryRepository
	Setting  SettingRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Article:  NewArticleRepo(db),
		Category: NewCategoryRepo(db),
		Setting:  NewSettingRepo(db),
	}
}

// translateError maps PostgreSQL constraint violations onto sentinel errors
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return errors.Join(ErrDuplicate, err)
		case "23503":
			return errors.Join(ErrForeignKey, err)
		}
	}
	return err
}
