package domain

import "time"

// CommentStatus moderation state of a comment
type CommentStatus string

const (
	CommentPublished CommentStatus = "PUBLISHED"
	CommentHidden    CommentStatus = "HIDDEN"
	CommentDeleted   CommentStatus = "DELETED"
)

// DeletedCommentTombstone replaces the content of deleted comments
const DeletedCommentTombstone = "사용자 또는 관리자에 의해 삭제된 댓글입니다."

// CommentPostRef the post a comment belongs to
type CommentPostRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// AdminReply an administrative reply attached to a comment
type AdminReply struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment a visitor comment under moderation
type Comment struct {
	ID           string        `json:"id"`
	Nickname     string        `json:"nickname"`
	Content      string        `json:"content"`
	Status       CommentStatus `json:"status"`
	ParentID     *string       `json:"parentId,omitempty"`
	Post         CommentPostRef `json:"post"`
	AdminReplies []AdminReply  `json:"adminReplies"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// DisplayContent returns the tombstone for deleted comments and the raw
// content otherwise. DELETED is terminal for display.
func (c *Comment) DisplayContent() string {
	if c.Status == CommentDeleted {
		return DeletedCommentTombstone
	}
	return c.Content
}

// ActionsVisible reports whether moderation buttons should render
func (c *Comment) ActionsVisible() bool {
	return c.Status != CommentDeleted
}

// CommentListQuery filters for GET /comments
type CommentListQuery struct {
	Search string
	Page   int
	Limit  int
	Status string // "ALL" omits the filter
}

// CommentList paginated list response
type CommentList struct {
	Items    []Comment `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	LastPage int       `json:"lastPage"`
}

// UpdateCommentStatusRequest payload for PATCH /comments/:id/status
type UpdateCommentStatusRequest struct {
	Status CommentStatus `json:"status" validate:"required,oneof=PUBLISHED HIDDEN DELETED"`
}

// CreateReplyRequest payload for POST /comments/:id/reply
type CreateReplyRequest struct {
	Content string `json:"content" validate:"required"`
}
