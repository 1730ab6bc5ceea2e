// ABOUTME: Blog content models for posts, categories and tags
// ABOUTME: Field names follow the JSON emitted by the blog API

package models

// Post status values
const (
	PostDraft     = "draft"
	PostPublished = "published"
	PostArchived  = "archived"
)

// Category groups posts; listed by GET /categories
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	PostsCount  *int    `json:"posts_count,omitempty"`
}

// Tag labels posts; listed by GET /tags
type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PostsCount *int   `json:"posts_count,omitempty"`
}

// Post is an article. Comments are only populated by GET /posts/{slug}.
type Post struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Excerpt       *string        `json:"excerpt"`
	Content       string         `json:"content,omitempty"`
	FeaturedImage *string        `json:"featured_image"`
	Status        string         `json:"status"`
	PublishedAt   *string        `json:"published_at"`
	ReadingTime   int            `json:"reading_time"`
	ViewsCount    int            `json:"views_count"`
	Meta          map[string]any `json:"meta,omitempty"`
	User          User           `json:"user"`
	Category      Category       `json:"category"`
	Tags          []Tag          `json:"tags"`
	Comments      []Comment      `json:"comments,omitempty"`
	CommentsCount *int           `json:"comments_count,omitempty"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// Ref returns the article reference used to scope a comment thread
func (p *Post) Ref() ArticleRef {
	return ArticleRef{ID: p.ID, Slug: p.Slug}
}

// ArticleRef identifies the article a comment set belongs to
type ArticleRef struct {
	ID   int64
	Slug string
}
