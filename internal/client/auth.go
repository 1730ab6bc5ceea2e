// ABOUTME: Authentication endpoints of the blog API
// ABOUTME: Register, login, logout and current-user lookups

package client

import (
	"context"
	"net/http"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// Register calls POST /register
func (c *Client) Register(ctx context.Context, input models.Registration) (*models.AuthResponse, error) {
	return call[*models.AuthResponse](ctx, c, Request{
		Method:             http.MethodPost,
		Path:               "/register",
		JSON:               input,
		CredentialExchange: true,
	})
}

// Login calls POST /login
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return call[*models.AuthResponse](ctx, c, Request{
		Method:             http.MethodPost,
		Path:               "/login",
		JSON:               creds,
		CredentialExchange: true,
	})
}

// Logout calls POST /logout with the current bearer token
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Send(ctx, Request{Method: http.MethodPost, Path: "/logout"})
	return err
}

// CurrentUser calls GET /user
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	return call[*models.User](ctx, c, Request{Method: http.MethodGet, Path: "/user"})
}
