// ABOUTME: Renders posts, comment trees and page links for the terminal
// ABOUTME: Pure functions over models so the CLI and browser share layout

package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/pagination"
)

// ExcerptLength is the rune limit of list excerpts
const ExcerptLength = 120

// indent is the per-level reply indentation
const indent = "  "

// PostLine renders one post in a list
func PostLine(p models.Post, now time.Time) string {
	meta := []string{p.Category.Name, p.User.Name}
	if p.PublishedAt != nil {
		meta = append(meta, RelativeDate(*p.PublishedAt, now))
	}
	if p.ReadingTime > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", p.ReadingTime))
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Title))
	b.WriteString(" ")
	b.WriteString(Subtitle.Render("(" + p.Slug + ")"))
	b.WriteString("\n  ")
	b.WriteString(Subtitle.Render(strings.Join(nonEmpty(meta), " · ")))
	if p.Excerpt != nil && *p.Excerpt != "" {
		b.WriteString("\n  ")
		b.WriteString(Truncate(StripHTML(*p.Excerpt), ExcerptLength))
	}
	return b.String()
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostDetail renders a full post without its comments
func PostDetail(p models.Post, storageHost string, width int) string {
	var b strings.Builder
	b.WriteString(Title.Render(p.Title))
	b.WriteString("\n")

	meta := []string{p.User.Name, p.Category.Name}
	if p.PublishedAt != nil {
		meta = append(meta, FormatDate(*p.PublishedAt))
	}
	meta = append(meta, fmt.Sprintf("%d views", p.ViewsCount))
	b.WriteString(Subtitle.Render(strings.Join(nonEmpty(meta), " · ")))
	b.WriteString("\n")

	if len(p.Tags) > 0 {
		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, "#"+t.Name)
		}
		b.WriteString(KeyStyle.Render(strings.Join(tags, " ")))
		b.WriteString("\n")
	}
	if p.FeaturedImage != nil {
		b.WriteString(Subtitle.Render("Image: " + ImageURL(storageHost, p.FeaturedImage)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	body := lipgloss.NewStyle()
	if width > 0 {
		body = body.Width(width)
	}
	b.WriteString(body.Render(StripHTML(p.Content)))
	return b.String()
}

// CommentTree renders comments with replies indented under their parent
func CommentTree(comments []models.Comment, now time.Time) string {
	if len(comments) == 0 {
		return Subtitle.Render("No comments yet.")
	}
	var b strings.Builder
	writeComments(&b, comments, 0, now)
	return strings.TrimRight(b.String(), "\n")
}

func writeComments(b *strings.Builder, comments []models.Comment, depth int, now time.Time) {
	pad := strings.Repeat(indent, depth)
	for _, c := range comments {
		header := fmt.Sprintf("%s#%d %s %s", pad, c.ID, Author.Render(c.User.Name), Subtitle.Render(RelativeDate(c.CreatedAt, now)))
		if c.Status != "" && c.Status != models.StatusApproved {
			header += " " + StatusBadge(c.Status)
		}
		b.WriteString(header)
		b.WriteString("\n")
		for _, line := range strings.Split(StripHTML(c.Content), "\n") {
			b.WriteString(pad)
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteString("\n")
		}
		writeComments(b, c.Replies, depth+1, now)
	}
}

// PageLinks renders "‹ 3 4 [5] 6 7 ›"; empty when there is a single page
func PageLinks(w models.PageWindow, width int) string {
	if !pagination.ShowLinks(w.LastPage) {
		return ""
	}

	var parts []string
	if pagination.HasPrev(w) {
		parts = append(parts, KeyStyle.Render("‹"))
	}
	for _, n := range pagination.Numbers(w.CurrentPage, w.LastPage, width) {
		if n == w.CurrentPage {
			parts = append(parts, Selected.Render("["+strconv.Itoa(n)+"]"))
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if pagination.HasNext(w) {
		parts = append(parts, KeyStyle.Render("›"))
	}
	return strings.Join(parts, " ")
}

// UserLine renders a signed-in user
func UserLine(u *models.User) string {
	if u == nil {
		return Subtitle.Render("Not signed in")
	}
	return fmt.Sprintf("%s <%s> %s", Author.Render(u.Name), u.Email, RoleBadge(u.Role))
}
