package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const categoryColumns = `id, name, slug, description, sort_order, created_at, updated_at`

type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description, c.SortOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", translateError(err))
	}
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.SortOrder).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, translateError(err))
	}
	return nil
}

// Delete removes a category; fails with ErrForeignKey while articles reference it
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, translateError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *categoryRepo) GetByNameOrSlug(ctx context.Context, value string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1 OR slug = $1 ORDER BY id LIMIT 1`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *categoryRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND id <> $2)", name, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *categoryRepo) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)", slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// List returns categories in display order
func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
