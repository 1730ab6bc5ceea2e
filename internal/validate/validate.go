// ABOUTME: Client-side form validation run before any network call
// ABOUTME: Returns validation-kind API errors with per-field messages

package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// Minimum lengths, in characters
const (
	MinNameLength     = 2
	MinPasswordLength = 8
	MinCommentLength  = 3
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// slugPattern matches lowercase hyphenated post slugs
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Errors collects field messages; the first message per field wins
type Errors map[string][]string

func (e Errors) add(field, msg string) {
	if len(e[field]) == 0 {
		e[field] = append(e[field], msg)
	}
}

// Err returns nil when no field failed
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	msg := "Please correct the highlighted fields"
	if len(e) == 1 {
		for _, msgs := range e {
			msg = msgs[0]
		}
	}
	return &client.APIError{Kind: client.ErrValidation, Message: msg, Fields: e}
}

func length(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// Name checks a display name
func Name(name string) string {
	switch {
	case length(name) == 0:
		return "Name is required"
	case length(name) < MinNameLength:
		return "Name must be at least 2 characters"
	}
	return ""
}

// Email checks an email address
func Email(email string) string {
	switch {
	case length(email) == 0:
		return "Email is required"
	case !emailPattern.MatchString(strings.TrimSpace(email)):
		return "Invalid email"
	}
	return ""
}

// Password checks a new password
func Password(password string) string {
	switch {
	case password == "":
		return "Password is required"
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return "Password must be at least 8 characters"
	}
	return ""
}

// Confirmation checks that confirmation repeats password
func Confirmation(password, confirmation string) string {
	switch {
	case confirmation == "":
		return "Confirmation is required"
	case confirmation != password:
		return "Passwords do not match"
	}
	return ""
}

// Comment checks comment content
func Comment(content string) string {
	switch {
	case length(content) == 0:
		return "Comment is required"
	case length(content) < MinCommentLength:
		return "Comment must be at least 3 characters"
	}
	return ""
}

// Slug checks a post slug before it is placed in a URL path
func Slug(slug string) string {
	if !slugPattern.MatchString(slug) {
		return "Invalid slug"
	}
	return ""
}

func collect(checks map[string]string) error {
	errs := Errors{}
	for field, msg := range checks {
		if msg != "" {
			errs.add(field, msg)
		}
	}
	return errs.Err()
}

// Login validates a login form. Login only requires a password, not its length.
func Login(creds models.Credentials) error {
	pw := ""
	if creds.Password == "" {
		pw = "Password is required"
	}
	return collect(map[string]string{
		"email":    Email(creds.Email),
		"password": pw,
	})
}

// Registration validates a registration form
func Registration(r models.Registration) error {
	return collect(map[string]string{
		"name":                  Name(r.Name),
		"email":                 Email(r.Email),
		"password":              Password(r.Password),
		"password_confirmation": Confirmation(r.Password, r.PasswordConfirmation),
	})
}

// CommentInput validates a comment form
func CommentInput(content string) error {
	return collect(map[string]string{"content": Comment(content)})
}
