package models

import "time"

// Category groups articles
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryRequest is used for both create and update
type CategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

// DefaultCategories are seeded on a fresh install
var DefaultCategories = []Category{
	{Name: "技术", Slug: "tech", Description: "技术相关文章", SortOrder: 1},
	{Name: "产品", Slug: "product", Description: "产品相关文章", SortOrder: 2},
	{Name: "行业", Slug: "industry", Description: "行业动态", SortOrder: 3},
}
