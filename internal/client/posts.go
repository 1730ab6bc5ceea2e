// ABOUTME: Public content endpoints: posts, categories, tags
// ABOUTME: Includes the generic paginated list call shared by all collections

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// Paginated is the envelope of a list endpoint
type Paginated[T any] struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    []T              `json:"data"`
	Meta    models.PageMeta  `json:"meta"`
	Links   models.PageLinks `json:"links"`
}

// List calls GET path with query and decodes a paginated envelope
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (*Paginated[T], error) {
	resp, err := c.Send(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}

	var page Paginated[T]
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, &APIError{Kind: ErrServer, Status: resp.StatusCode, Message: "invalid response from API", Err: err}
	}
	return &page, nil
}

// PostBySlug calls GET /posts/{slug}; the post carries its comment tree
func (c *Client) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return call[*models.Post](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/posts/" + url.PathEscape(slug),
	})
}

// Categories calls GET /categories
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	return call[[]models.Category](ctx, c, Request{Method: http.MethodGet, Path: "/categories"})
}

// Tags calls GET /tags
func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	return call[[]models.Tag](ctx, c, Request{Method: http.MethodGet, Path: "/tags"})
}
