package models

import (
	"time"
)

// Article statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Article represents an article stored in the database
type Article struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Slug         string     `json:"slug" db:"slug"`
	Content      string     `json:"content" db:"content"`
	HTMLContent  string     `json:"html_content" db:"html_content"`
	Excerpt      string     `json:"excerpt" db:"excerpt"`
	CoverImage   string     `json:"cover_image,omitempty" db:"cover_image"`
	Status       string     `json:"status" db:"status"`
	ViewCount    int64      `json:"view_count" db:"view_count"`
	SortOrder    int        `json:"sort_order" db:"sort_order"`
	UserID       int64      `json:"user_id" db:"user_id"`
	CategoryID   *int64     `json:"category_id" db:"category_id"`
	CategoryName string     `json:"category_name,omitempty" db:"-"`
	AuthorName   string     `json:"author_name,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	PublishedAt  *time.Time `json:"published_at" db:"published_at"`
}

// IsPublished reports whether the article is publicly visible
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[string]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusArchived:  true,
}

// statusTransitions lists the allowed moves between distinct statuses.
var statusTransitions = map[string][]string{
	StatusDraft:     {StatusPublished},
	StatusPublished: {StatusDraft, StatusArchived},
	StatusArchived:  {StatusDraft, StatusPublished},
}

// CanTransition reports whether an article may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return ValidStatuses[to]
	}
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateArticleRequest is the payload for POST /api/articles
type CreateArticleRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	Excerpt    string `json:"excerpt"`
	CoverImage string `json:"cover_image"`
	Status     string `json:"status"`
	CategoryID *int64 `json:"category_id"`
	SortOrder  int    `json:"sort_order"`
}

// UpdateArticleRequest is a partial update; nil fields are left unchanged
type UpdateArticleRequest struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	CoverImage *string `json:"cover_image"`
	Status     *string `json:"status"`
	CategoryID *int64  `json:"category_id"`
	SortOrder  *int    `json:"sort_order"`
}

// ArticleFilter narrows article listings
type ArticleFilter struct {
	// Status filters by a single status; empty means any status.
	Status     string
	CategoryID *int64
	UserID     *int64
	Search     string
	Limit      int
	Offset     int
}

// ArticleQuery is the public listing query as received over HTTP
type ArticleQuery struct {
	Page       int
	PerPage    int
	Status     string
	CategoryID *int64
	Search     string
	Mine       bool
}

// ArticlePage is a paginated article listing
type ArticlePage struct {
	Articles []*Article `json:"articles"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
	Pages    int        `json:"pages"`
}
