package models

import "time"

// Setting is a site-wide key/value pair
type Setting struct {
	ID        int64     `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	TotalUsers     int        `json:"total_users"`
	TotalArticles  int        `json:"total_articles"`
	Published      int        `json:"published_articles"`
	Drafts         int        `json:"draft_articles"`
	Archived       int        `json:"archived_articles"`
	RecentArticles []*Article `json:"recent_articles"`
}
