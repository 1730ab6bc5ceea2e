// ABOUTME: Tests for login, register, logout and whoami
// ABOUTME: Verifies session persistence, error messages and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
)

func TestRunLogin_PersistsSession(t *testing.T) {
	server, _ := newFakeBlog(t)
	dir := setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, models.Credentials{Email: "ada@example.com", Password: "secret123"})
	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as") || !strings.Contains(buf.String(), ada.Name) {
		t.Errorf("expected greeting for %s, got %q", ada.Name, buf.String())
	}

	rec, err := session.NewFileStore(dir).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Token != "writer-token" || !rec.Authenticated {
		t.Errorf("expected persisted writer session, got %+v", rec)
	}
}

func TestRunLogin_InvalidCredentials(t *testing.T) {
	server, _ := newFakeBlog(t)
	dir := setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, models.Credentials{Email: "ada@example.com", Password: "wrong-password"})
	if exitCode != exitRejected {
		t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
	}
	if !strings.Contains(buf.String(), "Invalid credentials") {
		t.Errorf("expected server message, got %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "auth-storage.json")); !os.IsNotExist(err) {
		t.Error("expected no session to be persisted")
	}
}

func TestRunLogin_ValidatesBeforeCallingAPI(t *testing.T) {
	server, _ := newFakeBlog(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, models.Credentials{Email: "not-an-email", Password: "x"})
	if exitCode != exitRejected {
		t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
	}
	if !strings.Contains(buf.String(), "email") {
		t.Errorf("expected email field error, got %q", buf.String())
	}
}

func TestRunRegister(t *testing.T) {
	server, _ := newFakeBlog(t)
	setupCLI(t, server.URL)

	input := models.Registration{Name: "Rae Reader", Email: "rae@example.com", Password: "password1", PasswordConfirmation: "password1"}

	var buf bytes.Buffer
	if exitCode := runRegister(context.Background(), &buf, input); exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Registered as") {
		t.Errorf("expected registration confirmation, got %q", buf.String())
	}
}

func TestRunRegister_ServerValidation(t *testing.T) {
	server, _ := newFakeBlog(t)
	setupCLI(t, server.URL)

	input := models.Registration{Name: "Taken", Email: "taken@example.com", Password: "password1", PasswordConfirmation: "password1"}

	var buf bytes.Buffer
	if exitCode := runRegister(context.Background(), &buf, input); exitCode != exitRejected {
		t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
	}
	if !strings.Contains(buf.String(), "already been taken") {
		t.Errorf("expected server message, got %q", buf.String())
	}
}

func TestRunRegister_ConfirmationMismatch(t *testing.T) {
	server, _ := newFakeBlog(t)
	setupCLI(t, server.URL)

	input := models.Registration{Name: "Rae", Email: "rae@example.com", Password: "password1", PasswordConfirmation: "password2"}

	var buf bytes.Buffer
	if exitCode := runRegister(context.Background(), &buf, input); exitCode != exitRejected {
		t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
	}
}

func TestRunLogout(t *testing.T) {
	server, fb := newFakeBlog(t)
	dir := setupCLI(t, server.URL)
	signIn(t, dir, "writer-token")

	var buf bytes.Buffer
	if exitCode := runLogout(context.Background(), &buf); exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Logged out") {
		t.Errorf("expected logout confirmation, got %q", buf.String())
	}
	if fb.logouts != 1 {
		t.Errorf("expected one remote logout, got %d", fb.logouts)
	}
	if _, err := os.Stat(filepath.Join(dir, "auth-storage.json")); !os.IsNotExist(err) {
		t.Error("expected persisted session to be removed")
	}
}

func TestRunLogout_Anonymous(t *testing.T) {
	server, fb := newFakeBlog(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	if exitCode := runLogout(context.Background(), &buf); exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if fb.logouts != 0 {
		t.Errorf("expected no remote logout, got %d", fb.logouts)
	}
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("expected not logged in message, got %q", buf.String())
	}
}

func TestRunWhoami(t *testing.T) {
	server, _ := newFakeBlog(t)

	t.Run("anonymous", func(t *testing.T) {
		setupCLI(t, server.URL)

		var buf bytes.Buffer
		if exitCode := runWhoami(context.Background(), &buf); exitCode != exitRejected {
			t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
		}
		if !strings.Contains(buf.String(), "Not logged in") {
			t.Errorf("expected not logged in, got %q", buf.String())
		}
	})

	t.Run("signed in", func(t *testing.T) {
		dir := setupCLI(t, server.URL)
		signIn(t, dir, "writer-token")
		whoamiRefresh = true
		defer func() { whoamiRefresh = false }()

		var buf bytes.Buffer
		if exitCode := runWhoami(context.Background(), &buf); exitCode != exitOK {
			t.Errorf("expected exit code 0, got %d", exitCode)
		}
		if !strings.Contains(buf.String(), ada.Email) || !strings.Contains(buf.String(), models.RoleWriter) {
			t.Errorf("expected user details, got %q", buf.String())
		}
	})

	t.Run("rejected token is cleared", func(t *testing.T) {
		dir := setupCLI(t, server.URL)
		store := session.NewFileStore(dir)
		store.Save(session.Record{User: &ada, Token: "revoked-token", Authenticated: true})

		var buf bytes.Buffer
		if exitCode := runWhoami(context.Background(), &buf); exitCode != exitRejected {
			t.Errorf("expected exit code %d, got %d", exitRejected, exitCode)
		}
		rec, _ := store.Load()
		if rec.Token != "" || rec.Authenticated {
			t.Errorf("expected persisted session to be cleared, got %+v", rec)
		}
	})

	t.Run("json never prints the token", func(t *testing.T) {
		dir := setupCLI(t, server.URL)
		signIn(t, dir, "writer-token")
		jsonOutput = true

		var buf bytes.Buffer
		runWhoami(context.Background(), &buf)

		var parsed map[string]any
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed["authenticated"] != true {
			t.Errorf("expected authenticated true, got %v", parsed["authenticated"])
		}
		if strings.Contains(buf.String(), "writer-token") {
			t.Error("expected token to be omitted from output")
		}
	})
}
