// ABOUTME: Public post commands: list one page of posts and show a post with its comments
// ABOUTME: Category and tag filters accept a slug, name or id resolved through the catalog

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/catalog"
	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/comments"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/pagination"
	"github.com/GasyCoder/blog-web-nextjs/internal/render"
)

var (
	postsSearch   string
	postsCategory string
	postsTag      string
	postsPage     int
)

// contentWidth is the wrap width for post bodies
const contentWidth = 80

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse published posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of published posts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPostsList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a post with its comment thread",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPostsShow(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	postsListCmd.Flags().StringVar(&postsSearch, "search", "", "Full-text search")
	postsListCmd.Flags().StringVar(&postsCategory, "category", "", "Category slug, name or id")
	postsListCmd.Flags().StringVar(&postsTag, "tag", "", "Tag slug, name or id")
	postsListCmd.Flags().IntVar(&postsPage, "page", 1, "Page number")

	postsCmd.AddCommand(postsListCmd, postsShowCmd)
	rootCmd.AddCommand(postsCmd)
}

// runPostsList fetches one page of posts and returns exit code
func runPostsList(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	filters := pagination.Filters{"search": postsSearch}
	if postsCategory != "" || postsTag != "" {
		cat := catalog.New(a.client, a.cfg.CatalogTTL)
		defer cat.Close()

		if filters["category"], err = resolveRef(ctx, "category", postsCategory, cat.ResolveCategory); err != nil {
			return fail(w, err)
		}
		if filters["tag"], err = resolveRef(ctx, "tag", postsTag, cat.ResolveTag); err != nil {
			return fail(w, err)
		}
	}

	page, err := pagination.Posts(a.client).Fetch(ctx, filters, postsPage, a.cfg.PerPage)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatPageJSON(page))
	} else {
		fmt.Fprintln(w, formatPostsHuman(page, a.cfg.PageWindow, time.Now()))
	}
	return exitOK
}

// resolveRef maps a user supplied reference to a slug; empty stays empty
func resolveRef(ctx context.Context, kind, ref string,
	resolve func(context.Context, string) (string, bool, error)) (string, error) {
	if ref == "" {
		return "", nil
	}
	slug, ok, err := resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", client.NewError(client.ErrNotFound, fmt.Sprintf("unknown %s %q", kind, ref))
	}
	return slug, nil
}

// runPostsShow loads a post with its comment thread and returns exit code
func runPostsShow(ctx context.Context, w io.Writer, slug string) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	thread := comments.New(a.client, a.session)
	if _, err := thread.Load(ctx, slug); err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		post := thread.Post()
		post.Comments = thread.Comments()
		fmt.Fprintln(w, formatJSON(post))
	} else {
		fmt.Fprintln(w, formatPostHuman(thread.Post(), thread.Comments(), a.cfg.StorageHost(), time.Now()))
	}
	return exitOK
}

// formatPostsHuman formats a page of posts with its page links
func formatPostsHuman(page pagination.Page[models.Post], width int, now time.Time) string {
	if len(page.Items) == 0 {
		return "No posts found."
	}

	var b strings.Builder
	for i, p := range page.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(render.PostLine(p, now))
	}
	b.WriteString("\n\n")
	b.WriteString(pagination.Summary(page.Window))
	if links := render.PageLinks(page.Window, width); links != "" {
		b.WriteString("\n")
		b.WriteString(links)
	}
	return b.String()
}

// formatPostHuman formats a post followed by its comment thread
func formatPostHuman(post models.Post, thread []models.Comment, storageHost string, now time.Time) string {
	var b strings.Builder
	b.WriteString(render.PostDetail(post, storageHost, contentWidth))
	b.WriteString("\n\n")
	b.WriteString(render.Subtitle.Render(fmt.Sprintf("Comments (%d)", countComments(thread))))
	b.WriteString("\n")
	b.WriteString(render.CommentTree(thread, now))
	return b.String()
}

func countComments(thread []models.Comment) int {
	n := len(thread)
	for _, c := range thread {
		n += countComments(c.Replies)
	}
	return n
}

// pageView is the JSON shape of a page, matching the API's data/meta layout
type pageView[T any] struct {
	Data []T               `json:"data"`
	Meta models.PageWindow `json:"meta"`
}

// formatPageJSON formats a page as JSON
func formatPageJSON[T any](page pagination.Page[T]) string {
	return formatJSON(pageView[T]{Data: page.Items, Meta: page.Window})
}

// formatJSON formats any value as indented JSON
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
