// ABOUTME: Interactive huh forms for login, registration and comments
// ABOUTME: Field validators reuse the client-side validation rules

package forms

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/validate"
)

// check adapts a message-returning rule to a huh validator
func check(rule func(string) string) func(string) error {
	return func(s string) error {
		if msg := rule(s); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func passwordPresent(s string) string {
	if s == "" {
		return "Password is required"
	}
	return ""
}

// Login builds a form that fills creds
func Login(creds *models.Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&creds.Email).
				Validate(check(validate.Email)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(check(passwordPresent)),
		),
	).WithTheme(huh.ThemeBase())
}

// Register builds a form that fills r
func Register(r *models.Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Placeholder("Jane Doe").
				Value(&r.Name).
				Validate(check(validate.Name)),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&r.Email).
				Validate(check(validate.Email)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.Password).
				Validate(check(validate.Password)),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.PasswordConfirmation).
				Validate(check(func(s string) string {
					return validate.Confirmation(r.Password, s)
				})),
		),
	).WithTheme(huh.ThemeBase())
}

// Comment builds a form that fills content. title names what is being
// answered, e.g. the post title or "Reply to #12".
func Comment(title string, content *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Placeholder("Share your thoughts...").
				CharLimit(5000).
				Value(content).
				Validate(check(validate.Comment)),
		),
	).WithTheme(huh.ThemeBase())
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	return ok, err
}
