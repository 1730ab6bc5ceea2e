// ABOUTME: Tests for the comment thread model
// ABOUTME: Covers loading, reply insertion, stale parents, notices and moderation

package comments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
)

type fakeViewer struct {
	sess session.Session
}

func (f fakeViewer) Current() session.Session { return f.sess }

func signedIn(role string) fakeViewer {
	return fakeViewer{sess: session.Session{
		User:          &models.User{ID: 9, Name: "Ada", Role: role},
		Token:         "abc",
		Authenticated: true,
	}}
}

type fakeAPI struct {
	mu      sync.Mutex
	post    *models.Post
	postErr error
	nextID  int64
	created []models.CommentInput
	deleted []int64
	modErr  error
}

func (f *fakeAPI) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	p := *f.post
	return &p, nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, postID int64, input models.CommentInput) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, input)
	f.nextID++
	return &models.Comment{ID: f.nextID, Content: input.Content, Status: models.StatusPending}, nil
}

func (f *fakeAPI) ApproveComment(ctx context.Context, id int64) (*models.Comment, error) {
	if f.modErr != nil {
		return nil, f.modErr
	}
	return &models.Comment{ID: id, Status: models.StatusApproved}, nil
}

func (f *fakeAPI) RejectComment(ctx context.Context, id int64) (*models.Comment, error) {
	if f.modErr != nil {
		return nil, f.modErr
	}
	return &models.Comment{ID: id, Status: models.StatusRejected}, nil
}

func (f *fakeAPI) DeleteComment(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// samplePost has comments 1 (reply 2 (reply 3)) and 4
func samplePost() *models.Post {
	return &models.Post{
		ID:   7,
		Slug: "hello-world",
		Comments: []models.Comment{
			{ID: 1, Content: "first", Status: models.StatusApproved, Replies: []models.Comment{
				{ID: 2, Content: "reply", Status: models.StatusApproved, Replies: []models.Comment{
					{ID: 3, Content: "nested", Status: models.StatusApproved},
				}},
			}},
			{ID: 4, Content: "second", Status: models.StatusApproved},
		},
	}
}

func loaded(t *testing.T, viewer Viewer, opts ...Option) (*Thread, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{post: samplePost(), nextID: 100}
	th := New(api, viewer, opts...)
	if _, err := th.Load(context.Background(), "hello-world"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return th, api
}

func ids(comments []models.Comment) []int64 {
	var out []int64
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}

func TestLoad_BuildsIndexedTree(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleUser))

	if th.Len() != 4 {
		t.Errorf("expected 4 indexed comments, got %d", th.Len())
	}
	ref, ok := th.Article()
	if !ok || ref.ID != 7 || ref.Slug != "hello-world" {
		t.Errorf("unexpected article ref %+v", ref)
	}
	c, ok := th.Find(3)
	if !ok || c.Content != "nested" {
		t.Errorf("expected nested comment 3, got %+v", c)
	}
	if th.Post().Comments != nil {
		t.Error("expected Post() to omit comments")
	}
}

func TestLoad_NotFound(t *testing.T) {
	api := &fakeAPI{postErr: &client.APIError{Kind: client.ErrNotFound, Status: 404, Message: "Post not found"}}
	th := New(api, signedIn(models.RoleUser))

	_, err := th.Load(context.Background(), "missing")
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, ok := th.Article(); ok {
		t.Error("expected no article after failed load")
	}
}

func TestSubmit_TopLevel(t *testing.T) {
	th, api := loaded(t, signedIn(models.RoleUser))

	c, err := th.Submit(context.Background(), "Great article", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != models.StatusPending {
		t.Errorf("expected pending comment, got %s", c.Status)
	}
	if got := ids(th.Comments()); !reflect.DeepEqual(got, []int64{1, 4, 101}) {
		t.Errorf("expected new comment at top level, got %v", got)
	}
	if api.created[0].ParentID != nil {
		t.Error("expected no parent_id for top-level comment")
	}
}

func TestSubmit_EmptyServerResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/posts/hello-world":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 7, "slug": "hello-world"}})
		case "/posts/7/comments":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": nil})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	th := New(client.New(server.URL), signedIn(models.RoleUser))
	if _, err := th.Load(context.Background(), "hello-world"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err := th.Submit(context.Background(), "Great article", nil)
	if !errors.Is(err, client.ErrServer) {
		t.Errorf("expected server error, got %v", err)
	}
	if th.Len() != 0 {
		t.Errorf("expected empty tree, got %d comments", th.Len())
	}
	if notice := th.Notice(); notice != "" {
		t.Errorf("expected no notice, got %q", notice)
	}
}

func TestSubmit_ReplyInsertedUnderParent(t *testing.T) {
	th, api := loaded(t, signedIn(models.RoleUser))

	parent := int64(2)
	if _, err := th.Submit(context.Background(), "I agree", &parent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ := th.Find(2)
	if got := ids(c.Replies); !reflect.DeepEqual(got, []int64{3, 101}) {
		t.Errorf("expected reply appended under 2, got %v", got)
	}
	if got := ids(th.Comments()); !reflect.DeepEqual(got, []int64{1, 4}) {
		t.Errorf("expected top level unchanged, got %v", got)
	}
	if th.Len() != 5 {
		t.Errorf("expected reply to appear exactly once, got %d comments", th.Len())
	}
	if *api.created[0].ParentID != 2 {
		t.Errorf("expected parent_id 2, got %d", *api.created[0].ParentID)
	}
}

func TestSubmit_MissingParent(t *testing.T) {
	th, api := loaded(t, signedIn(models.RoleUser))
	before := th.Comments()

	parent := int64(42)
	_, err := th.Submit(context.Background(), "Hello there", &parent)
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !reflect.DeepEqual(th.Comments(), before) {
		t.Error("expected tree to be unchanged")
	}
	if len(api.created) != 0 {
		t.Error("expected no request for a missing parent")
	}
}

func TestSubmit_Preconditions(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		th, api := loaded(t, fakeViewer{})
		_, err := th.Submit(context.Background(), "Hello there", nil)
		if !errors.Is(err, client.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
		if len(api.created) != 0 {
			t.Error("expected no request when anonymous")
		}
	})

	t.Run("too short", func(t *testing.T) {
		th, _ := loaded(t, signedIn(models.RoleUser))
		_, err := th.Submit(context.Background(), "hi", nil)
		if !errors.Is(err, client.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("nothing loaded", func(t *testing.T) {
		th := New(&fakeAPI{}, signedIn(models.RoleUser))
		_, err := th.Submit(context.Background(), "Hello there", nil)
		if !errors.Is(err, client.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestSubmit_NoticeClearsAndCallsBack(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleUser), WithNoticeDelay(20*time.Millisecond))

	done := make(chan struct{})
	if _, err := th.Submit(context.Background(), "Great article", nil, OnComplete(func() { close(done) })); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Notice() != SubmittedNotice {
		t.Errorf("expected notice, got %q", th.Notice())
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected completion callback")
	}
	if th.Notice() != "" {
		t.Errorf("expected notice cleared, got %q", th.Notice())
	}
}

func TestDismissNotice(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleUser), WithNoticeDelay(time.Hour))

	calls := 0
	th.Submit(context.Background(), "Great article", nil, OnComplete(func() { calls++ }))
	th.DismissNotice()
	th.DismissNotice()

	if th.Notice() != "" {
		t.Errorf("expected notice cleared, got %q", th.Notice())
	}
	if calls != 1 {
		t.Errorf("expected callback once, got %d", calls)
	}
}

func TestApplyModeration(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleWriter))

	c, err := th.ApplyModeration(context.Background(), 3, Reject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != models.StatusRejected {
		t.Errorf("expected rejected, got %s", c.Status)
	}
	if found, _ := th.Find(3); found.Status != models.StatusRejected {
		t.Errorf("expected nested node updated in place, got %s", found.Status)
	}

	if _, err := th.ApplyModeration(context.Background(), 99, Approve); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := th.ApplyModeration(context.Background(), 3, Decision("maybe")); !errors.Is(err, client.ErrValidation) {
		t.Errorf("expected validation error for unknown decision, got %v", err)
	}
}

func TestApplyModeration_RequiresPrivilege(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleUser))

	_, err := th.ApplyModeration(context.Background(), 1, Approve)
	if !errors.Is(err, client.ErrAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}
	if c, _ := th.Find(1); c.Status != models.StatusApproved {
		t.Errorf("expected status unchanged, got %s", c.Status)
	}
}

func TestApplyModeration_ServerFailure(t *testing.T) {
	th, api := loaded(t, signedIn(models.RoleSuperAdmin))
	api.modErr = &client.APIError{Kind: client.ErrServer, Status: 500}

	if _, err := th.ApplyModeration(context.Background(), 4, Reject); !errors.Is(err, client.ErrServer) {
		t.Errorf("expected server error, got %v", err)
	}
	if c, _ := th.Find(4); c.Status != models.StatusApproved {
		t.Errorf("expected status unchanged on failure, got %s", c.Status)
	}
}

func TestRemove_DropsSubtree(t *testing.T) {
	th, api := loaded(t, signedIn(models.RoleSuperAdmin))

	if err := th.Remove(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := th.Find(3); ok {
		t.Error("expected nested reply removed with its parent")
	}
	c, _ := th.Find(1)
	if len(c.Replies) != 0 {
		t.Errorf("expected no replies under 1, got %v", ids(c.Replies))
	}
	if th.Len() != 2 {
		t.Errorf("expected 2 comments left, got %d", th.Len())
	}
	if !reflect.DeepEqual(api.deleted, []int64{2}) {
		t.Errorf("expected delete of 2, got %v", api.deleted)
	}

	if err := th.Remove(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(th.Comments()); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("expected top-level 4 removed, got %v", got)
	}
	if err := th.Remove(context.Background(), 4); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected not found on second remove, got %v", err)
	}
}

func TestLoad_RebuildsAfterSubmit(t *testing.T) {
	th, _ := loaded(t, signedIn(models.RoleUser))
	th.Submit(context.Background(), "Great article", nil)

	if _, err := th.Load(context.Background(), "hello-world"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Len() != 4 {
		t.Errorf("expected tree rebuilt from server data, got %d", th.Len())
	}
}
