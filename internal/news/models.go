// Package news implements the club news board: announcements with an
// author, an active flag and paginated listing.
package news

import (
	"strings"
	"time"
)

// Item is one news post. AuthorID is nil when the author account was
// deleted; AuthorName is filled by the listing join.
type Item struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content,omitempty"`
	ImagePath    string    `json:"image_path,omitempty"`
	DownloadPath string    `json:"download_path,omitempty"`
	AuthorID     *int64    `json:"user_id,omitempty"`
	AuthorName   string    `json:"author_name,omitempty"`
	Active       bool      `json:"is_active"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddRequest carries a new post. Date defaults to the request time.
type AddRequest struct {
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ImagePath    string     `json:"image_path"`
	DownloadPath string     `json:"download_path"`
	Date         *time.Time `json:"date"`
}

// ListParams controls the board listing. Search matches the title.
type ListParams struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Search     string `json:"search"`
	OnlyActive bool   `json:"onlyActive"`
}

// Normalize fills pagination defaults.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 15
	}
	p.Search = strings.TrimSpace(p.Search)
}

// Offset converts page/limit into a SQL offset.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
