// ABOUTME: Comment submission and moderation endpoints
// ABOUTME: Moderation calls require a writer or superadmin session server-side

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// CreateComment calls POST /posts/{id}/comments
func (c *Client) CreateComment(ctx context.Context, postID int64, input models.CommentInput) (*models.Comment, error) {
	return call[*models.Comment](ctx, c, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/posts/%d/comments", postID),
		JSON:   input,
	})
}

// ApproveComment calls PUT /admin/comments/{id}/approve
func (c *Client) ApproveComment(ctx context.Context, id int64) (*models.Comment, error) {
	return call[*models.Comment](ctx, c, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/admin/comments/%d/approve", id),
	})
}

// RejectComment calls PUT /admin/comments/{id}/reject
func (c *Client) RejectComment(ctx context.Context, id int64) (*models.Comment, error) {
	return call[*models.Comment](ctx, c, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/admin/comments/%d/reject", id),
	})
}

// DeleteComment calls DELETE /admin/comments/{id}
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	_, err := c.Send(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/admin/comments/%d", id),
	})
	return err
}
