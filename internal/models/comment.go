// ABOUTME: Threaded comment model with moderation status
// ABOUTME: Replies nest recursively as delivered by the API

package models

// Moderation status values
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Comment is one node of an article's comment tree
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
	User      User      `json:"user"`
	Replies   []Comment `json:"replies,omitempty"`
}

// CommentInput is the body of POST /posts/{id}/comments
type CommentInput struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}
