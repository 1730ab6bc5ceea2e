// ABOUTME: Category and tag lookups backed by a TTL cache
// ABOUTME: Concurrent misses for the same list share one API request

package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GasyCoder/blog-web-nextjs/internal/cache"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// DefaultTTL is how long lists are reused before refetching
const DefaultTTL = 5 * time.Minute

const listKey = "all"

// API is the subset of the gateway the catalog needs
type API interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Tags(ctx context.Context) ([]models.Tag, error)
}

// Catalog caches the category and tag lists
type Catalog struct {
	api        API
	categories *cache.Cache[[]models.Category]
	tags       *cache.Cache[[]models.Tag]
	group      singleflight.Group
}

// New creates a catalog; ttl <= 0 uses DefaultTTL
func New(api API, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		api:        api,
		categories: cache.New[[]models.Category](ttl),
		tags:       cache.New[[]models.Tag](ttl),
	}
}

// Close stops the cache sweepers
func (c *Catalog) Close() {
	c.categories.Close()
	c.tags.Close()
}

// Invalidate forgets both lists
func (c *Catalog) Invalidate() {
	c.categories.Purge()
	c.tags.Purge()
}

// Categories returns the category list, from cache when fresh
func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, &c.group, "categories", c.categories, c.api.Categories)
}

// Tags returns the tag list, from cache when fresh
func (c *Catalog) Tags(ctx context.Context) ([]models.Tag, error) {
	return cached(ctx, &c.group, "tags", c.tags, c.api.Tags)
}

func cached[T any](ctx context.Context, group *singleflight.Group, name string, store *cache.Cache[[]T],
	fetch func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := store.Get(listKey); ok {
		return items, nil
	}
	v, err, _ := group.Do(name, func() (any, error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		store.Set(listKey, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// FindCategory looks up a category by slug, name or numeric id
func (c *Catalog) FindCategory(ctx context.Context, ref string) (models.Category, bool, error) {
	cats, err := c.Categories(ctx)
	if err != nil {
		return models.Category{}, false, err
	}
	for _, cat := range cats {
		if matches(ref, cat.ID, cat.Slug, cat.Name) {
			return cat, true, nil
		}
	}
	return models.Category{}, false, nil
}

// FindTag looks up a tag by slug, name or numeric id
func (c *Catalog) FindTag(ctx context.Context, ref string) (models.Tag, bool, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return models.Tag{}, false, err
	}
	for _, tag := range tags {
		if matches(ref, tag.ID, tag.Slug, tag.Name) {
			return tag, true, nil
		}
	}
	return models.Tag{}, false, nil
}

// ResolveCategory maps a slug, name or numeric id to a category slug.
// The API filters posts by category slug.
func (c *Catalog) ResolveCategory(ctx context.Context, ref string) (string, bool, error) {
	cat, ok, err := c.FindCategory(ctx, ref)
	return cat.Slug, ok, err
}

// ResolveTag maps a slug, name or numeric id to a tag slug
func (c *Catalog) ResolveTag(ctx context.Context, ref string) (string, bool, error) {
	tag, ok, err := c.FindTag(ctx, ref)
	return tag.Slug, ok, err
}

func matches(ref string, id int64, slug, name string) bool {
	ref = strings.TrimSpace(ref)
	return ref == strconv.FormatInt(id, 10) || strings.EqualFold(ref, slug) || strings.EqualFold(ref, name)
}
