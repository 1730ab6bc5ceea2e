// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults, file, .env, environment and flag precedence

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// isolate points the config search and working directory at empty temp dirs
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())
	return filepath.Join(xdg, "blog")
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api/v1" {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.PerPage != 10 || cfg.PageWindow != 5 {
		t.Errorf("expected per_page 10 and page_window 5, got %d and %d", cfg.PerPage, cfg.PageWindow)
	}
	if cfg.NoticeDelay != 2*time.Second || cfg.Timeout != 30*time.Second {
		t.Errorf("expected 2s notice and 30s timeout, got %s and %s", cfg.NoticeDelay, cfg.Timeout)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("expected config dir %s, got %s", dir, cfg.ConfigDir)
	}
}

func TestLoad_FileThenEnvThenFlag(t *testing.T) {
	dir := isolate(t)
	base := &Config{
		APIURL:      "https://file.example.com/api/v1",
		PerPage:     20,
		PageWindow:  7,
		NoticeDelay: time.Second,
		CatalogTTL:  time.Minute,
		Timeout:     10 * time.Second,
		LogLevel:    "info",
		LogFormat:   "json",
	}
	if err := WriteFile(base, Path(dir)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != base.APIURL || cfg.PerPage != 20 || cfg.PageWindow != 7 || cfg.Timeout != 10*time.Second {
		t.Errorf("expected file values, got %+v", cfg)
	}

	t.Setenv("BLOG_PER_PAGE", "15")
	cfg, err = Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PerPage != 15 {
		t.Errorf("expected env to override file, got %d", cfg.PerPage)
	}

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("per-page", 0, "")
	cmd.Flags().String("api-url", "", "")
	cmd.Flags().Set("per-page", "30")

	cfg, err = Load(cmd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PerPage != 30 {
		t.Errorf("expected flag to override env, got %d", cfg.PerPage)
	}
	if cfg.APIURL != base.APIURL {
		t.Errorf("expected unset flag to keep file value, got %s", cfg.APIURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("BLOG_API_URL")
	t.Cleanup(func() { os.Unsetenv("BLOG_API_URL") })
	if err := os.WriteFile(".env", []byte("BLOG_API_URL=https://dotenv.example.com/api/v1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://dotenv.example.com/api/v1" {
		t.Errorf("expected .env value, got %s", cfg.APIURL)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{APIURL: "http://x", PerPage: 10, PageWindow: 5, Timeout: time.Second}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.APIURL = "ftp://x" }, "api_url"},
		{"zero per page", func(c *Config) { c.PerPage = 0 }, "per_page"},
		{"huge per page", func(c *Config) { c.PerPage = 500 }, "per_page"},
		{"zero window", func(c *Config) { c.PageWindow = 0 }, "page_window"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestStorageHost(t *testing.T) {
	c := Config{APIURL: "https://blog.example.com/api/v1/"}
	if got := c.StorageHost(); got != "https://blog.example.com" {
		t.Errorf("expected https://blog.example.com, got %s", got)
	}
}

func TestWriteFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.yaml")
	if err := WriteFile(&Config{APIURL: "http://x", AllProxy: "ssh+socks5://u@h:1?private-key=/k"}, path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %o", info.Mode().Perm())
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "all_proxy:") {
		t.Errorf("expected all_proxy in file, got %s", data)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != "/tmp/xdg/blog" {
		t.Errorf("expected /tmp/xdg/blog, got %s", got)
	}
}
