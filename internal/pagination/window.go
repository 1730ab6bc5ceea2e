// ABOUTME: Display policy for navigable page links
// ABOUTME: Computes a fixed-width window of page numbers centered on the current page

package pagination

import (
	"fmt"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// DefaultWidth is the number of page links shown when none is configured
const DefaultWidth = 5

// Numbers returns min(width, last) consecutive page numbers containing
// current, centered on it where possible and shifted inward at the edges.
func Numbers(current, last, width int) []int {
	if last < 1 {
		return nil
	}
	if width <= 0 {
		width = DefaultWidth
	}
	current = max(1, min(current, last))
	n := min(width, last)

	start := max(1, current-n/2)
	end := start + n - 1
	if end > last {
		end = last
		start = end - n + 1
	}

	pages := make([]int, 0, n)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// ShowLinks reports whether page links are shown at all
func ShowLinks(last int) bool {
	return last > 1
}

// HasPrev reports whether a previous page exists
func HasPrev(w models.PageWindow) bool {
	return w.CurrentPage > 1
}

// HasNext reports whether a next page exists
func HasNext(w models.PageWindow) bool {
	return w.CurrentPage < w.LastPage
}

// Summary formats the "showing from-to of total" line
func Summary(w models.PageWindow) string {
	if w.TotalItems == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d to %d of %d results", w.FirstIndex, w.LastIndex, w.TotalItems)
}
