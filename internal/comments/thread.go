// ABOUTME: Comment thread model for one article
// ABOUTME: Indexed tree supporting reply insertion, moderation and removal

package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
	"github.com/GasyCoder/blog-web-nextjs/internal/validate"
)

// DefaultNoticeDelay is how long the submission notice stays visible
const DefaultNoticeDelay = 2 * time.Second

// SubmittedNotice is shown after a comment is accepted for moderation
const SubmittedNotice = "Comment submitted! It will be visible after moderation."

// ErrStale is returned when the thread was reloaded while a call was in flight
var ErrStale = errors.New("thread reloaded during request")

// Decision is a moderation transition
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// API is the subset of the gateway the thread needs
type API interface {
	PostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreateComment(ctx context.Context, postID int64, input models.CommentInput) (*models.Comment, error)
	ApproveComment(ctx context.Context, id int64) (*models.Comment, error)
	RejectComment(ctx context.Context, id int64) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Viewer exposes the session the thread checks preconditions against
type Viewer interface {
	Current() session.Session
}

type node struct {
	comment models.Comment
	parent  *node
	replies []*node
}

// Thread holds the comment tree of the most recently loaded article
type Thread struct {
	api    API
	viewer Viewer
	delay  time.Duration

	mu      sync.Mutex
	gen     uint64
	loaded  bool
	article models.ArticleRef
	post    models.Post
	roots   []*node
	index   map[int64]*node

	notice      string
	noticeSeq   uint64
	noticeTimer *time.Timer
	onComplete  func()
}

// Option configures a Thread
type Option func(*Thread)

// WithNoticeDelay overrides how long the submission notice is shown
func WithNoticeDelay(d time.Duration) Option {
	return func(t *Thread) {
		if d > 0 {
			t.delay = d
		}
	}
}

// New creates an empty thread
func New(api API, viewer Viewer, opts ...Option) *Thread {
	t := &Thread{
		api:    api,
		viewer: viewer,
		delay:  DefaultNoticeDelay,
		index:  make(map[int64]*node),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load fetches the article by slug and rebuilds the tree from its comments
func (t *Thread) Load(ctx context.Context, slug string) (models.Post, error) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	post, err := t.api.PostBySlug(ctx, slug)
	if err == nil && post == nil {
		err = client.NewError(client.ErrNotFound, fmt.Sprintf("article %q not found", slug))
	}
	if err != nil {
		return models.Post{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return *post, ErrStale
	}

	t.roots = nil
	t.index = make(map[int64]*node)
	for _, c := range post.Comments {
		t.roots = append(t.roots, t.build(c, nil))
	}
	t.article = post.Ref()
	t.post = *post
	t.post.Comments = nil
	t.loaded = true
	slog.Debug("Loaded comment thread", "slug", slug, "comments", len(t.index))
	return *post, nil
}

func (t *Thread) build(c models.Comment, parent *node) *node {
	n := &node{comment: c, parent: parent}
	n.comment.Replies = nil
	t.index[c.ID] = n
	for _, r := range c.Replies {
		n.replies = append(n.replies, t.build(r, n))
	}
	return n
}

// Article returns the reference of the loaded article
func (t *Thread) Article() (models.ArticleRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.article, t.loaded
}

// Post returns the loaded article without its comments
func (t *Thread) Post() models.Post {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.post
}

// Comments returns a copy of the tree in delivery order
func (t *Thread) Comments() []models.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshot(t.roots)
}

func snapshot(nodes []*node) []models.Comment {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]models.Comment, 0, len(nodes))
	for _, n := range nodes {
		c := n.comment
		c.Replies = snapshot(n.replies)
		out = append(out, c)
	}
	return out
}

// Find returns the comment with id and its subtree
func (t *Thread) Find(id int64) (models.Comment, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.index[id]
	if !ok {
		return models.Comment{}, false
	}
	c := n.comment
	c.Replies = snapshot(n.replies)
	return c, true
}

// Len returns the number of comments in the tree
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.index)
}

// SubmitOption configures a single Submit call
type SubmitOption func(*submitConfig)

type submitConfig struct {
	onComplete func()
}

// OnComplete runs fn once the submission notice is cleared
func OnComplete(fn func()) SubmitOption {
	return func(c *submitConfig) {
		c.onComplete = fn
	}
}

// Submit posts a comment to the loaded article and inserts it into the tree,
// under parentID when given or at the top level otherwise.
func (t *Thread) Submit(ctx context.Context, content string, parentID *int64, opts ...SubmitOption) (models.Comment, error) {
	var cfg submitConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !t.viewer.Current().Authenticated {
		return models.Comment{}, client.NewError(client.ErrAuthorization, "You must be signed in to comment")
	}
	if err := validate.CommentInput(content); err != nil {
		return models.Comment{}, err
	}

	t.mu.Lock()
	if !t.loaded {
		t.mu.Unlock()
		return models.Comment{}, client.NewError(client.ErrNotFound, "no article loaded")
	}
	if parentID != nil {
		if _, ok := t.index[*parentID]; !ok {
			t.mu.Unlock()
			return models.Comment{}, client.NewError(client.ErrNotFound, fmt.Sprintf("comment %d not found", *parentID))
		}
	}
	article, gen := t.article, t.gen
	t.mu.Unlock()

	created, err := t.api.CreateComment(ctx, article.ID, models.CommentInput{Content: content, ParentID: parentID})
	if err != nil {
		return models.Comment{}, err
	}
	if created == nil {
		return models.Comment{}, client.NewError(client.ErrServer, "empty comment response")
	}
	c := *created
	c.Replies = nil

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return c, ErrStale
	}
	var parent *node
	if parentID != nil {
		parent = t.index[*parentID]
		if parent == nil {
			t.mu.Unlock()
			return c, client.NewError(client.ErrNotFound, fmt.Sprintf("comment %d was removed, reload the thread", *parentID))
		}
	}
	if _, exists := t.index[c.ID]; !exists {
		n := &node{comment: c, parent: parent}
		if parent != nil {
			parent.replies = append(parent.replies, n)
		} else {
			t.roots = append(t.roots, n)
		}
		t.index[c.ID] = n
	}
	t.setNoticeLocked(SubmittedNotice, cfg.onComplete)
	t.mu.Unlock()

	return c, nil
}

// Notice returns the current transient notice, or ""
func (t *Thread) Notice() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notice
}

func (t *Thread) setNoticeLocked(msg string, onComplete func()) {
	pending := t.stopNoticeLocked()

	t.noticeSeq++
	seq := t.noticeSeq
	t.notice = msg
	t.onComplete = onComplete
	t.noticeTimer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		if t.noticeSeq != seq {
			t.mu.Unlock()
			return
		}
		done := t.onComplete
		t.notice = ""
		t.onComplete = nil
		t.noticeTimer = nil
		t.mu.Unlock()
		if done != nil {
			done()
		}
	})

	if pending != nil {
		go pending()
	}
}

// stopNoticeLocked cancels a pending notice timer and returns its callback
func (t *Thread) stopNoticeLocked() func() {
	var pending func()
	if t.noticeTimer != nil && t.noticeTimer.Stop() {
		pending = t.onComplete
	}
	t.noticeSeq++
	t.notice = ""
	t.onComplete = nil
	t.noticeTimer = nil
	return pending
}

// DismissNotice clears the notice early and runs its completion callback
func (t *Thread) DismissNotice() {
	t.mu.Lock()
	pending := t.stopNoticeLocked()
	t.mu.Unlock()
	if pending != nil {
		pending()
	}
}

func (t *Thread) requirePrivileged() error {
	sess := t.viewer.Current()
	if !sess.Authenticated || !sess.User.IsPrivileged() {
		return client.NewError(client.ErrAuthorization, "moderation requires a writer or superadmin account")
	}
	return nil
}

func (t *Thread) lookup(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.index[id]; !ok {
		return client.NewError(client.ErrNotFound, fmt.Sprintf("comment %d not found", id))
	}
	return nil
}

// ApplyModeration approves or rejects a comment and updates its status in place
func (t *Thread) ApplyModeration(ctx context.Context, id int64, decision Decision) (models.Comment, error) {
	if err := t.requirePrivileged(); err != nil {
		return models.Comment{}, err
	}
	if err := t.lookup(id); err != nil {
		return models.Comment{}, err
	}

	var (
		updated *models.Comment
		err     error
		status  string
	)
	switch decision {
	case Approve:
		updated, err = t.api.ApproveComment(ctx, id)
		status = models.StatusApproved
	case Reject:
		updated, err = t.api.RejectComment(ctx, id)
		status = models.StatusRejected
	default:
		return models.Comment{}, client.NewError(client.ErrValidation, fmt.Sprintf("unknown moderation decision %q", decision))
	}
	if err != nil {
		return models.Comment{}, err
	}
	if updated != nil && updated.Status != "" {
		status = updated.Status
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.index[id]
	if !ok {
		if updated == nil {
			return models.Comment{ID: id, Status: status}, nil
		}
		return *updated, nil
	}
	n.comment.Status = status
	c := n.comment
	c.Replies = snapshot(n.replies)
	return c, nil
}

// Remove deletes a comment and drops it with its subtree from the tree
func (t *Thread) Remove(ctx context.Context, id int64) error {
	if err := t.requirePrivileged(); err != nil {
		return err
	}
	if err := t.lookup(id); err != nil {
		return err
	}
	if err := t.api.DeleteComment(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.index[id]
	if !ok {
		return nil
	}
	if n.parent != nil {
		n.parent.replies = without(n.parent.replies, n)
	} else {
		t.roots = without(t.roots, n)
	}
	t.unindex(n)
	return nil
}

func without(nodes []*node, target *node) []*node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

func (t *Thread) unindex(n *node) {
	delete(t.index, n.comment.ID)
	for _, r := range n.replies {
		t.unindex(r)
	}
}
