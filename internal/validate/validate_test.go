// ABOUTME: Tests for client-side form validation
// ABOUTME: Covers required, minimum length, email pattern and confirmation rules

package validate

import (
	"errors"
	"testing"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

func TestFieldRules(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"empty name", Name(""), "Name is required"},
		{"short name", Name("A"), "Name must be at least 2 characters"},
		{"valid name", Name("Jo"), ""},
		{"empty email", Email("  "), "Email is required"},
		{"bad email", Email("not-an-email"), "Invalid email"},
		{"valid email", Email("Jean.Dupont@Example.org"), ""},
		{"short password", Password("1234567"), "Password must be at least 8 characters"},
		{"valid password", Password("12345678"), ""},
		{"missing confirmation", Confirmation("secret123", ""), "Confirmation is required"},
		{"mismatched confirmation", Confirmation("secret123", "secret124"), "Passwords do not match"},
		{"empty comment", Comment("   "), "Comment is required"},
		{"short comment", Comment("ok"), "Comment must be at least 3 characters"},
		{"multibyte comment", Comment("été"), ""},
		{"valid slug", Slug("hello-world-2"), ""},
		{"traversal slug", Slug("../admin"), "Invalid slug"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, tc.got)
			}
		})
	}
}

func TestRegistration(t *testing.T) {
	err := Registration(models.Registration{Name: "A", Email: "a@b.com", Password: "short", PasswordConfirmation: "other"})
	if !errors.Is(err, client.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	for _, field := range []string{"name", "password", "password_confirmation"} {
		if len(apiErr.Fields[field]) != 1 {
			t.Errorf("expected error on %s, got %v", field, apiErr.Fields)
		}
	}
	if _, ok := apiErr.Fields["email"]; ok {
		t.Error("expected valid email to pass")
	}

	ok := models.Registration{Name: "Ada", Email: "a@b.com", Password: "secret123", PasswordConfirmation: "secret123"}
	if err := Registration(ok); err != nil {
		t.Errorf("expected valid registration, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	if err := Login(models.Credentials{Email: "a@b.com", Password: "x"}); err != nil {
		t.Errorf("expected short password to pass login validation, got %v", err)
	}
	err := Login(models.Credentials{Email: "a@b.com"})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Password is required" {
		t.Errorf("expected single-field message, got %v", err)
	}
}

func TestCommentInput(t *testing.T) {
	if err := CommentInput("Nice post"); err != nil {
		t.Errorf("expected valid comment, got %v", err)
	}
	if err := CommentInput(""); !errors.Is(err, client.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
