// ABOUTME: Catalog commands listing categories and tags
// ABOUTME: Both lists are plain arrays with no pagination

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/catalog"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List post categories",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCategories(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List post tags",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runTags(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd, tagsCmd)
}

// runCategories lists categories and returns exit code
func runCategories(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	cat := catalog.New(a.client, a.cfg.CatalogTTL)
	defer cat.Close()

	cats, err := cat.Categories(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(cats))
	} else {
		fmt.Fprintln(w, formatCategoriesHuman(cats))
	}
	return exitOK
}

// runTags lists tags and returns exit code
func runTags(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	cat := catalog.New(a.client, a.cfg.CatalogTTL)
	defer cat.Close()

	tags, err := cat.Tags(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(tags))
	} else {
		fmt.Fprintln(w, formatTagsHuman(tags))
	}
	return exitOK
}

// formatCategoriesHuman formats categories as a table
func formatCategoriesHuman(cats []models.Category) string {
	if len(cats) == 0 {
		return "No categories."
	}
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Slug, c.Name, count(c.PostsCount)})
	}
	return catalogTable(rows)
}

// formatTagsHuman formats tags as a table
func formatTagsHuman(tags []models.Tag) string {
	if len(tags) == 0 {
		return "No tags."
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Slug, t.Name, count(t.PostsCount)})
	}
	return catalogTable(rows)
}

func catalogTable(rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SLUG", "NAME", "POSTS").
		Rows(rows...).
		String()
}

func count(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
