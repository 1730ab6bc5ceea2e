// ABOUTME: Admin commands for comment moderation and post management
// ABOUTME: Require a writer or superadmin session; the API enforces the real check

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/catalog"
	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/comments"
	"github.com/GasyCoder/blog-web-nextjs/internal/forms"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/pagination"
	"github.com/GasyCoder/blog-web-nextjs/internal/render"
)

var (
	adminStatus string
	adminSearch string
	adminPage   int
	adminYes    bool

	postTitle       string
	postContent     string
	postExcerpt     string
	postCategory    string
	postTags        []string
	postStatus      string
	postPublishedAt string
	postImage       string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderate comments and manage posts",
}

var adminCommentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List comments across all posts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminComments(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminModerateCmd = &cobra.Command{
	Use:   "moderate <slug> <comment-id> <approve|reject>",
	Short: "Approve or reject a comment on a post",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminModerate(ctx, os.Stdout, args[0], args[1], args[2])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove <slug> <comment-id>",
	Short: "Delete a comment and its replies",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if !confirmed(fmt.Sprintf("Delete comment #%s and its replies?", args[1])) {
			return
		}
		exitCode := runAdminRemove(ctx, os.Stdout, args[0], args[1])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage posts, including drafts",
}

var adminPostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts of every status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminPostsList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminPostsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminPostsShow(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminPostsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminPostsSave(ctx, os.Stdout, 0)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminPostsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a post; only the given fields change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		id, err := parseID(args[0])
		if err != nil {
			os.Exit(fail(os.Stdout, err))
		}
		exitCode := runAdminPostsSave(ctx, os.Stdout, id)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminPostsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if !confirmed(fmt.Sprintf("Delete post %s?", args[0])) {
			return
		}
		exitCode := runAdminPostsDelete(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	adminCommentsCmd.Flags().StringVar(&adminStatus, "status", "", "Filter by status: pending, approved, rejected")
	adminCommentsCmd.Flags().IntVar(&adminPage, "page", 1, "Page number")

	adminRemoveCmd.Flags().BoolVarP(&adminYes, "yes", "y", false, "Skip the confirmation prompt")
	adminPostsDeleteCmd.Flags().BoolVarP(&adminYes, "yes", "y", false, "Skip the confirmation prompt")

	adminPostsListCmd.Flags().StringVar(&adminStatus, "status", "", "Filter by status: draft, published, archived")
	adminPostsListCmd.Flags().StringVar(&adminSearch, "search", "", "Full-text search")
	adminPostsListCmd.Flags().IntVar(&adminPage, "page", 1, "Page number")

	for _, c := range []*cobra.Command{adminPostsCreateCmd, adminPostsUpdateCmd} {
		c.Flags().StringVar(&postTitle, "title", "", "Post title")
		c.Flags().StringVar(&postContent, "content", "", "Post body (HTML)")
		c.Flags().StringVar(&postExcerpt, "excerpt", "", "Short summary")
		c.Flags().StringVar(&postCategory, "category", "", "Category slug, name or id")
		c.Flags().StringSliceVar(&postTags, "tag", nil, "Tag slug, name or id (repeatable)")
		c.Flags().StringVar(&postStatus, "status", "", "draft, published or archived")
		c.Flags().StringVar(&postPublishedAt, "published-at", "", "Publication time (RFC 3339)")
		c.Flags().StringVar(&postImage, "image", "", "Featured image file")
	}

	adminPostsCmd.AddCommand(adminPostsListCmd, adminPostsShowCmd, adminPostsCreateCmd, adminPostsUpdateCmd, adminPostsDeleteCmd)
	adminCmd.AddCommand(adminCommentsCmd, adminModerateCmd, adminRemoveCmd, adminPostsCmd)
	rootCmd.AddCommand(adminCmd)
}

// confirmed asks before destructive commands unless --yes was given
func confirmed(question string) bool {
	if adminYes {
		return true
	}
	ok, err := forms.Confirm(question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
	return ok
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, client.NewError(client.ErrValidation, fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// runAdminComments lists one page of comments and returns exit code
func runAdminComments(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	page, err := pagination.AdminComments(a.client).Fetch(ctx, pagination.Filters{"status": adminStatus}, adminPage, a.cfg.PerPage)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatPageJSON(page))
	} else {
		fmt.Fprintln(w, formatAdminCommentsHuman(page, a.cfg.PageWindow, time.Now()))
	}
	return exitOK
}

// loadThread loads the comment thread of slug for a moderation command
func loadThread(ctx context.Context, a *app, slug string) (*comments.Thread, error) {
	thread := comments.New(a.client, a.session)
	if _, err := thread.Load(ctx, slug); err != nil {
		return nil, err
	}
	return thread, nil
}

// runAdminModerate approves or rejects a comment and returns exit code
func runAdminModerate(ctx context.Context, w io.Writer, slug, rawID, rawDecision string) int {
	id, err := parseID(rawID)
	if err != nil {
		return fail(w, err)
	}
	decision := comments.Decision(strings.ToLower(rawDecision))
	if decision != comments.Approve && decision != comments.Reject {
		return fail(w, client.NewError(client.ErrValidation, fmt.Sprintf("decision must be approve or reject, got %q", rawDecision)))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	thread, err := loadThread(ctx, a, slug)
	if err != nil {
		return fail(w, err)
	}

	updated, err := thread.ApplyModeration(ctx, id, decision)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(updated))
	} else {
		fmt.Fprintf(w, "Comment #%d is now %s\n", updated.ID, updated.Status)
	}
	return exitOK
}

// runAdminRemove deletes a comment subtree and returns exit code
func runAdminRemove(ctx context.Context, w io.Writer, slug, rawID string) int {
	id, err := parseID(rawID)
	if err != nil {
		return fail(w, err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	thread, err := loadThread(ctx, a, slug)
	if err != nil {
		return fail(w, err)
	}

	before := thread.Len()
	if err := thread.Remove(ctx, id); err != nil {
		return fail(w, err)
	}

	removed := before - thread.Len()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{"id": id, "removed": removed}))
	} else {
		fmt.Fprintf(w, "Deleted comment #%d (%d removed with replies)\n", id, removed)
	}
	return exitOK
}

// runAdminPostsList lists one page of posts of any status and returns exit code
func runAdminPostsList(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	filters := pagination.Filters{"status": adminStatus, "search": adminSearch}
	page, err := pagination.AdminPosts(a.client).Fetch(ctx, filters, adminPage, a.cfg.PerPage)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatPageJSON(page))
	} else {
		fmt.Fprintln(w, formatAdminPostsHuman(page, a.cfg.PageWindow))
	}
	return exitOK
}

// runAdminPostsShow shows a post by id and returns exit code
func runAdminPostsShow(ctx context.Context, w io.Writer, rawID string) int {
	id, err := parseID(rawID)
	if err != nil {
		return fail(w, err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	post, err := a.client.AdminPost(ctx, id)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(post))
	} else {
		fmt.Fprintln(w, render.StatusBadge(post.Status))
		fmt.Fprintln(w, render.PostDetail(*post, a.cfg.StorageHost(), contentWidth))
	}
	return exitOK
}

// runAdminPostsSave creates a post when id is 0 and updates it otherwise
func runAdminPostsSave(ctx context.Context, w io.Writer, id int64) int {
	if id == 0 && (postTitle == "" || postContent == "" || postCategory == "") {
		return fail(w, client.NewError(client.ErrValidation, "--title, --content and --category are required"))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	input, closeImage, err := postInput(ctx, a)
	if err != nil {
		return fail(w, err)
	}
	defer closeImage()

	var post *models.Post
	if id == 0 {
		post, err = a.client.CreatePost(ctx, input)
	} else {
		post, err = a.client.UpdatePost(ctx, id, input)
	}
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(post))
	} else {
		verb := "Created"
		if id != 0 {
			verb = "Updated"
		}
		fmt.Fprintf(w, "%s post %d: %s (%s) %s\n", verb, post.ID, post.Title, post.Slug, render.StatusBadge(post.Status))
	}
	return exitOK
}

// postInput builds a PostInput from the post flags, resolving catalog
// references to ids and opening the featured image
func postInput(ctx context.Context, a *app) (client.PostInput, func(), error) {
	input := client.PostInput{
		Title:       postTitle,
		Content:     postContent,
		Excerpt:     postExcerpt,
		Status:      postStatus,
		PublishedAt: postPublishedAt,
	}
	noop := func() {}

	if postCategory != "" || len(postTags) > 0 {
		cat := catalog.New(a.client, a.cfg.CatalogTTL)
		defer cat.Close()

		if postCategory != "" {
			c, ok, err := cat.FindCategory(ctx, postCategory)
			if err != nil {
				return input, noop, err
			}
			if !ok {
				return input, noop, client.NewError(client.ErrNotFound, fmt.Sprintf("unknown category %q", postCategory))
			}
			input.CategoryID = c.ID
		}
		for _, ref := range postTags {
			t, ok, err := cat.FindTag(ctx, ref)
			if err != nil {
				return input, noop, err
			}
			if !ok {
				return input, noop, client.NewError(client.ErrNotFound, fmt.Sprintf("unknown tag %q", ref))
			}
			input.Tags = append(input.Tags, t.ID)
		}
	}

	if postImage == "" {
		return input, noop, nil
	}
	f, err := os.Open(postImage)
	if err != nil {
		return input, noop, fmt.Errorf("failed to open image: %w", err)
	}
	input.FeaturedImage = &client.FilePart{Filename: filepath.Base(postImage), Content: f}
	return input, func() { f.Close() }, nil
}

// runAdminPostsDelete deletes a post and returns exit code
func runAdminPostsDelete(ctx context.Context, w io.Writer, rawID string) int {
	id, err := parseID(rawID)
	if err != nil {
		return fail(w, err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	if err := a.client.DeletePost(ctx, id); err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{"id": id, "deleted": true}))
	} else {
		fmt.Fprintf(w, "Deleted post %d\n", id)
	}
	return exitOK
}

// formatAdminCommentsHuman formats a moderation queue page
func formatAdminCommentsHuman(page pagination.Page[models.Comment], width int, now time.Time) string {
	if len(page.Items) == 0 {
		return "No comments found."
	}

	var b strings.Builder
	for _, c := range page.Items {
		fmt.Fprintf(&b, "#%d %s %s %s\n  %s\n",
			c.ID,
			render.StatusBadge(c.Status),
			render.Author.Render(c.User.Name),
			render.Subtitle.Render(render.RelativeDate(c.CreatedAt, now)),
			render.Truncate(render.StripHTML(c.Content), render.ExcerptLength))
	}
	b.WriteString("\n")
	b.WriteString(pagination.Summary(page.Window))
	if links := render.PageLinks(page.Window, width); links != "" {
		b.WriteString("\n")
		b.WriteString(links)
	}
	return b.String()
}

// formatAdminPostsHuman formats a page of posts with their status
func formatAdminPostsHuman(page pagination.Page[models.Post], width int) string {
	if len(page.Items) == 0 {
		return "No posts found."
	}

	var b strings.Builder
	for _, p := range page.Items {
		fmt.Fprintf(&b, "%4d %s %s %s\n", p.ID, render.StatusBadge(p.Status), p.Title, render.Subtitle.Render("("+p.Slug+")"))
	}
	b.WriteString("\n")
	b.WriteString(pagination.Summary(page.Window))
	if links := render.PageLinks(page.Window, width); links != "" {
		b.WriteString("\n")
		b.WriteString(links)
	}
	return b.String()
}
