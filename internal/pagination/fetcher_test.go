// ABOUTME: Tests for the paginated collection fetcher
// ABOUTME: Uses httptest to check query forwarding, window decoding and stale fencing

package pagination

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

const postsPage = `{"success":true,"data":[{"id":1,"title":"First","slug":"first"},{"id":2,"title":"Second","slug":"second"}],
"meta":{"current_page":2,"last_page":4,"per_page":2,"total":8,"from":3,"to":4},
"links":{"first":"/posts?page=1","last":"/posts?page=4","prev":"/posts?page=1","next":"/posts?page=3"}}`

func TestFetch_ForwardsFiltersAndDecodesWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "golang" {
			t.Errorf("expected search=golang, got %q", q.Get("search"))
		}
		if _, ok := q["category"]; ok {
			t.Error("expected empty category filter to be omitted")
		}
		if q.Get("page") != "2" || q.Get("per_page") != "2" {
			t.Errorf("expected page=2 per_page=2, got %s", r.URL.RawQuery)
		}
		io.WriteString(w, postsPage)
	}))
	defer server.Close()

	f := Posts(client.New(server.URL))
	page, err := f.Fetch(context.Background(), Filters{"search": "golang", "category": ""}, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 || page.Items[1].Slug != "second" {
		t.Errorf("expected two posts, got %+v", page.Items)
	}
	want := models.PageWindow{CurrentPage: 2, LastPage: 4, PerPage: 2, TotalItems: 8, FirstIndex: 3, LastIndex: 4}
	if page.Window != want {
		t.Errorf("expected window %+v, got %+v", want, page.Window)
	}
	if page.Links.Next == nil || *page.Links.Next != "/posts?page=3" {
		t.Errorf("expected next link, got %v", page.Links.Next)
	}

	current, ok := f.Current()
	if !ok || current.Window.CurrentPage != 2 {
		t.Errorf("expected current page 2, got %+v", current.Window)
	}
}

func TestFetch_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":[],"meta":{"current_page":1,"last_page":1,"per_page":10,"total":0,"from":null,"to":null},"links":{}}`)
	}))
	defer server.Close()

	page, err := AdminComments(client.New(server.URL)).Fetch(context.Background(), Filters{"status": "pending"}, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", page.Items)
	}
	if page.Window.FirstIndex != 0 || page.Window.LastIndex != 0 {
		t.Errorf("expected zero indexes, got %+v", page.Window)
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"message":"boom"}`)
	}))
	defer server.Close()

	f := AdminPosts(client.New(server.URL))
	_, err := f.Fetch(context.Background(), nil, 1, 10)
	if !errors.Is(err, client.ErrServer) {
		t.Errorf("expected server error, got %v", err)
	}
	if _, ok := f.Current(); ok {
		t.Error("expected no current page after failure")
	}
}

func TestFetch_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			<-release
			io.WriteString(w, `{"success":true,"data":[{"id":1}],"meta":{"current_page":1,"last_page":2,"per_page":1,"total":2,"from":1,"to":1},"links":{}}`)
			return
		}
		io.WriteString(w, `{"success":true,"data":[{"id":2}],"meta":{"current_page":2,"last_page":2,"per_page":1,"total":2,"from":2,"to":2},"links":{}}`)
	}))
	defer server.Close()

	f := Posts(client.New(server.URL))

	slow := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), nil, 1, 1)
		slow <- err
	}()

	// Wait until the slow request has taken its generation.
	for {
		f.mu.Lock()
		started := f.gen == 1
		f.mu.Unlock()
		if started {
			break
		}
	}

	if _, err := f.Fetch(context.Background(), nil, 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	if err := <-slow; !errors.Is(err, ErrStale) {
		t.Errorf("expected stale error for the older fetch, got %v", err)
	}
	current, _ := f.Current()
	if current.Window.CurrentPage != 2 {
		t.Errorf("expected newest page 2 to remain current, got %d", current.Window.CurrentPage)
	}
}
