// ABOUTME: Admin post management endpoints with multipart uploads
// ABOUTME: Featured images pass through as opaque file parts

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// FilePart is an opaque binary payload forwarded as a form file
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is a multipart/form-data request body
type Multipart struct {
	Fields url.Values
	Files  []FilePart
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, values := range m.Fields {
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// PostInput holds the writable fields of a post. Zero values are omitted,
// which makes the same type usable for partial updates.
type PostInput struct {
	Title         string
	Excerpt       string
	Content       string
	CategoryID    int64
	Tags          []int64
	Status        string
	PublishedAt   string
	FeaturedImage *FilePart
}

func (p PostInput) form() *Multipart {
	fields := url.Values{}
	set := func(key, value string) {
		if value != "" {
			fields.Set(key, value)
		}
	}
	set("title", p.Title)
	set("content", p.Content)
	if p.CategoryID > 0 {
		fields.Set("category_id", strconv.FormatInt(p.CategoryID, 10))
	}
	set("status", p.Status)
	set("excerpt", p.Excerpt)
	set("published_at", p.PublishedAt)
	for _, id := range p.Tags {
		fields.Add("tags[]", strconv.FormatInt(id, 10))
	}

	m := &Multipart{Fields: fields}
	if p.FeaturedImage != nil {
		img := *p.FeaturedImage
		if img.Field == "" {
			img.Field = "featured_image"
		}
		m.Files = append(m.Files, img)
	}
	return m
}

// AdminPost calls GET /admin/posts/{id}
func (c *Client) AdminPost(ctx context.Context, id int64) (*models.Post, error) {
	return call[*models.Post](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/admin/posts/%d", id),
	})
}

// CreatePost calls POST /admin/posts as multipart/form-data
func (c *Client) CreatePost(ctx context.Context, input PostInput) (*models.Post, error) {
	return call[*models.Post](ctx, c, Request{
		Method:    http.MethodPost,
		Path:      "/admin/posts",
		Multipart: input.form(),
	})
}

// UpdatePost calls POST /admin/posts/{id}?_method=PUT (method override)
func (c *Client) UpdatePost(ctx context.Context, id int64, input PostInput) (*models.Post, error) {
	return call[*models.Post](ctx, c, Request{
		Method:    http.MethodPost,
		Path:      fmt.Sprintf("/admin/posts/%d", id),
		Query:     url.Values{"_method": []string{http.MethodPut}},
		Multipart: input.form(),
	})
}

// DeletePost calls DELETE /admin/posts/{id}
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	_, err := c.Send(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/admin/posts/%d", id),
	})
	return err
}
