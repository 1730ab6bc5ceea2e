// ABOUTME: Paginated collection fetcher bound to one resource kind
// ABOUTME: Forwards filters as query params and fences stale responses by generation

package pagination

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// Resource paths served by the fetcher
const (
	ResourcePosts         = "/posts"
	ResourceAdminPosts    = "/admin/posts"
	ResourceAdminComments = "/admin/comments"
)

// ErrStale is returned when a newer Fetch started before this one finished.
// The result is discarded and Current is left untouched.
var ErrStale = errors.New("stale page response")

// Filters are opaque query parameters such as search, category, tag or status
type Filters map[string]string

func (f Filters) query(page, perPage int) url.Values {
	q := url.Values{}
	for k, v := range f {
		if v != "" {
			q.Set(k, v)
		}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}

// Page is one page of a collection with its authoritative window
type Page[T any] struct {
	Items  []T
	Window models.PageWindow
	Links  models.PageLinks
}

// Fetcher retrieves pages of one collection
type Fetcher[T any] struct {
	client *client.Client
	path   string

	mu      sync.Mutex
	gen     uint64
	current *Page[T]
}

// NewFetcher creates a fetcher for the collection at path
func NewFetcher[T any](c *client.Client, path string) *Fetcher[T] {
	return &Fetcher[T]{client: c, path: path}
}

// Posts returns a fetcher for the public post list
func Posts(c *client.Client) *Fetcher[models.Post] {
	return NewFetcher[models.Post](c, ResourcePosts)
}

// AdminPosts returns a fetcher for the privileged post list
func AdminPosts(c *client.Client) *Fetcher[models.Post] {
	return NewFetcher[models.Post](c, ResourceAdminPosts)
}

// AdminComments returns a fetcher for the moderation queue
func AdminComments(c *client.Client) *Fetcher[models.Comment] {
	return NewFetcher[models.Comment](c, ResourceAdminComments)
}

// Fetch requests one page. Only the response of the newest call becomes
// Current; older responses return ErrStale.
func (f *Fetcher[T]) Fetch(ctx context.Context, filters Filters, page, perPage int) (Page[T], error) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	resp, err := client.List[T](ctx, f.client, f.path, filters.query(page, perPage))
	if err != nil {
		return Page[T]{}, err
	}

	result := Page[T]{
		Items:  resp.Data,
		Window: resp.Meta.Window(),
		Links:  resp.Links,
	}
	if result.Items == nil {
		result.Items = []T{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return result, ErrStale
	}
	f.current = &result
	return result, nil
}

// Current returns the newest page fetched, if any
func (f *Fetcher[T]) Current() (Page[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Page[T]{}, false
	}
	return *f.current, true
}
