// ABOUTME: Text helpers for post and comment content
// ABOUTME: HTML stripping, truncation, date formatting and image URL resolution

package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy    = bluemonday.StrictPolicy()
	sanitizePolicy = bluemonday.UGCPolicy()
)

// StripHTML removes all markup from s and collapses whitespace
func StripHTML(s string) string {
	plain := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.Join(strings.Fields(plain), " ")
}

// Sanitize keeps user-generated markup that is safe to display
func Sanitize(s string) string {
	return sanitizePolicy.Sanitize(s)
}

// Truncate shortens s to n runes, appending "..." when cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// parseTime accepts the timestamp layouts the API emits
func parseTime(ts string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders ts as "02 January 2006", or ts unchanged if unparseable
func FormatDate(ts string) string {
	t, ok := parseTime(ts)
	if !ok {
		return ts
	}
	return t.Format("02 January 2006")
}

// RelativeDate renders ts relative to now, e.g. "3 hours ago"
func RelativeDate(ts string, now time.Time) string {
	t, ok := parseTime(ts)
	if !ok {
		return ts
	}

	d := now.Sub(t)
	suffix := "ago"
	if d < 0 {
		d = -d
		suffix = "from now"
	}

	unit := func(n int, name string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s %s", name, suffix)
		}
		return fmt.Sprintf("%d %ss %s", n, name, suffix)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return unit(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return unit(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return unit(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return unit(int(d.Hours()/(24*30)), "month")
	default:
		return unit(int(d.Hours()/(24*365)), "year")
	}
}

// PlaceholderImage is returned for posts without a featured image
const PlaceholderImage = "/placeholder.jpg"

// ImageURL resolves a stored image path against the API host
func ImageURL(host string, path *string) string {
	if path == nil || *path == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(*path, "http") {
		return *path
	}
	return strings.TrimRight(host, "/") + "/storage/" + strings.TrimLeft(*path, "/")
}
