// ABOUTME: Config commands to write a starter blog.yaml and show effective settings
// ABOUTME: Settings resolve from defaults, file, .env, BLOG_* env vars and flags

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to blog.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runConfigInit(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runConfigShow(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigInit writes blog.yaml and returns exit code
func runConfigInit(w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		return fail(w, err)
	}

	path := configFile
	if path == "" {
		path = config.Path(cfg.ConfigDir)
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		fmt.Fprintf(w, "Config file %s already exists (use --force to overwrite)\n", path)
		return exitRejected
	}

	if err := config.WriteFile(cfg, path); err != nil {
		return fail(w, err)
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return exitOK
}

// runConfigShow prints the effective configuration and returns exit code
func runConfigShow(w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(configView(cfg)))
	} else {
		fmt.Fprintln(w, formatConfigHuman(cfg))
	}
	return exitOK
}

func configView(cfg *config.Config) map[string]any {
	return map[string]any{
		"api_url":      cfg.APIURL,
		"config_dir":   cfg.ConfigDir,
		"per_page":     cfg.PerPage,
		"page_window":  cfg.PageWindow,
		"notice_delay": cfg.NoticeDelay.String(),
		"catalog_ttl":  cfg.CatalogTTL.String(),
		"timeout":      cfg.Timeout.String(),
		"all_proxy":    cfg.AllProxy,
		"log_level":    cfg.LogLevel,
		"log_format":   cfg.LogFormat,
	}
}

// formatConfigHuman formats the configuration for human readability
func formatConfigHuman(cfg *config.Config) string {
	proxy := cfg.AllProxy
	if proxy == "" {
		proxy = "(none)"
	}
	return fmt.Sprintf(`API URL:       %s
Config dir:    %s
Per page:      %d
Page window:   %d
Notice delay:  %s
Catalog TTL:   %s
Timeout:       %s
Proxy:         %s
Log:           %s (%s)`,
		cfg.APIURL,
		cfg.ConfigDir,
		cfg.PerPage,
		cfg.PageWindow,
		cfg.NoticeDelay,
		cfg.CatalogTTL,
		cfg.Timeout,
		proxy,
		cfg.LogLevel, cfg.LogFormat)
}
