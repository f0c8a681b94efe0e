package domain

import "time"

// PostStatus lifecycle state of a post
type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPublished PostStatus = "PUBLISHED"
	StatusArchived  PostStatus = "ARCHIVED"
)

// Valid reports whether s is a known post status
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// CategoryRef category reference embedded in publish info
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PublishInfo publication metadata of a post
type PublishInfo struct {
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Category    CategoryRef `json:"category"`
	Status      PostStatus  `json:"status"`
	PublishedAt string      `json:"publishedAt,omitempty"`
}

// Post a post as served by the backend.
// Content is the rendered HTML, ContentJSON the canonical document tree.
type Post struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	ContentJSON string      `json:"contentJson,omitempty"`
	PublishInfo PublishInfo `json:"publishInfo"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PostListQuery filters for GET /posts
type PostListQuery struct {
	Search    string
	Page      int
	Limit     int
	Status    string // "ALL" omits the filter
	Category  int    // 0 omits the filter
	StartDate string
	EndDate   string
}

// PostList paginated list response
type PostList struct {
	Items    []Post `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	LastPage int    `json:"lastPage"`
}

// UpdatePostRequest payload for PATCH /posts/:id.
// Slug is a pointer so draft saves can send null instead of "".
type UpdatePostRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ContentJSON string     `json:"contentJson"`
	Slug        *string    `json:"slug"`
	Description string     `json:"description"`
	CategoryID  int        `json:"categoryId"`
	Status      PostStatus `json:"status" validate:"required"`
}

// PublishData operator-edited publish fields held alongside the editor
type PublishData struct {
	Slug        string     `json:"slug"`
	Description string     `json:"description" validate:"max=200"`
	CategoryID  int        `json:"categoryId"`
	Status      PostStatus `json:"status"`
}
