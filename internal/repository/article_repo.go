package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const articleSelect = `
	SELECT a.id, a.title, a.slug, a.content, a.html_content, a.excerpt, a.cover_image,
		a.status, a.view_count, a.sort_order, a.user_id, a.category_id,
		COALESCE(c.name, ''), COALESCE(u.username, ''),
		a.created_at, a.updated_at, a.published_at
	FROM articles a
	LEFT JOIN categories c ON c.id = a.category_id
	LEFT JOIN users u ON u.id = a.user_id
`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		article     models.Article
		categoryID  sql.NullInt64
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&article.ID, &article.Title, &article.Slug, &article.Content, &article.HTMLContent,
		&article.Excerpt, &article.CoverImage, &article.Status, &article.ViewCount,
		&article.SortOrder, &article.UserID, &categoryID,
		&article.CategoryName, &article.AuthorName,
		&article.CreatedAt, &article.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		article.CategoryID = &id
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}

// Create inserts a new article and fills in the generated ID and timestamps
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (title, slug, content, html_content, excerpt, cover_image,
			status, sort_order, user_id, category_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, view_count, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		article.Title, article.Slug, article.Content, article.HTMLContent, article.Excerpt,
		article.CoverImage, article.Status, article.SortOrder, article.UserID,
		article.CategoryID, article.PublishedAt,
	).Scan(&article.ID, &article.ViewCount, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", translateError(err))
	}
	return nil
}

// Update writes every mutable article column; view_count is left alone
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $2, slug = $3, content = $4, html_content = $5, excerpt = $6,
			cover_image = $7, status = $8, sort_order = $9, category_id = $10,
			published_at = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Content, article.HTMLContent,
		article.Excerpt, article.CoverImage, article.Status, article.SortOrder,
		article.CategoryID, article.PublishedAt,
	).Scan(&article.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update article %d: %w", article.ID, translateError(err))
	}
	return nil
}

// Delete hard-deletes an article
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return r.getOne(ctx, "a.id = $1", id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, "a.slug = $1", slug)
}

// SlugTaken checks slug uniqueness, ignoring the article being edited
func (r *articleRepo) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)", slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// IncrementViewCount bumps view_count in a single statement and returns the new value
func (r *articleRepo) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"UPDATE articles SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count", id,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return count, err
}

// buildArticleWhere renders the filter as a WHERE clause with positional args
func buildArticleWhere(filter models.ArticleFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("a.status = $%d", filter.Status)
	}
	if filter.CategoryID != nil {
		add("a.category_id = $%d", *filter.CategoryID)
	}
	if filter.UserID != nil {
		add("a.user_id = $%d", *filter.UserID)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(a.title ILIKE $%d OR a.content ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of articles matching filter plus the total match count
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error) {
	where, args := buildArticleWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles a"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	query := articleSelect + where + fmt.Sprintf(
		" ORDER BY a.published_at DESC NULLS LAST, a.created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2,
	)
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	return articles, total, rows.Err()
}

// CountByStatus returns the number of articles per status
func (r *articleRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM articles GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountByCategory returns how many articles reference a category
func (r *articleRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE category_id = $1", categoryID).Scan(&count)
	return count, err
}

// CountByUser returns how many articles a user owns
func (r *articleRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

// Recent returns the most recently created articles
func (r *articleRepo) Recent(ctx context.Context, limit int) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, articleSelect+" ORDER BY a.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	rows, err := r.db.QueryContext(ctx, articleSelect+" ORDER BY a.id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}

	return rows.Err()
}
