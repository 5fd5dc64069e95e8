package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

type settingRepo struct {
	db *database.DB
}

// NewSettingRepo creates a new settings repository
func NewSettingRepo(db *database.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT id, key, value, created_at, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Set upserts a setting by key
func (r *settingRepo) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
		RETURNING id, key, value, created_at, updated_at
	`
	var s models.Setting
	err := r.db.QueryRowContext(ctx, query, key, value).
		Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepo) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, key, value, created_at, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]*models.Setting, 0)
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}
