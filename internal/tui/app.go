// ABOUTME: Root bubbletea model for the blog browser
// ABOUTME: Lists posts page by page and shows a post with its comment thread

package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GasyCoder/blog-web-nextjs/internal/client"
	"github.com/GasyCoder/blog-web-nextjs/internal/comments"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/pagination"
	"github.com/GasyCoder/blog-web-nextjs/internal/render"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
)

// Screen represents the current browser screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenPost
)

// Layout constants
const (
	headerHeight = 3
	footerHeight = 3
)

// Options configures the browser
type Options struct {
	PerPage     int
	PageWindow  int
	StorageHost string
	NoticeDelay time.Duration
}

// Viewer exposes the session to the browser
type Viewer interface {
	Current() session.Session
}

// SessionEvictedMsg tells the browser the API rejected the session token
type SessionEvictedMsg struct{}

type pageLoadedMsg struct {
	page pagination.Page[models.Post]
	err  error
}

type postLoadedMsg struct {
	post models.Post
	err  error
}

type commentSubmittedMsg struct {
	comment models.Comment
	err     error
}

type noticeTickMsg struct{}

// App is the root model for the browser
type App struct {
	posts  *pagination.Fetcher[models.Post]
	thread *comments.Thread
	viewer Viewer
	opts   Options

	screen   Screen
	width    int
	height   int
	loading  bool
	err      error
	evicted  bool
	page     pagination.Page[models.Post]
	pageNum  int
	query    string
	selected int

	search    textinput.Model
	composer  textinput.Model
	composing bool
	viewport  viewport.Model
	spinner   spinner.Model
}

// New creates a browser over the given fetcher and thread
func New(posts *pagination.Fetcher[models.Post], thread *comments.Thread, viewer Viewer, opts Options) *App {
	if opts.PerPage <= 0 {
		opts.PerPage = 10
	}
	if opts.PageWindow <= 0 {
		opts.PageWindow = pagination.DefaultWidth
	}
	if opts.NoticeDelay <= 0 {
		opts.NoticeDelay = comments.DefaultNoticeDelay
	}

	search := textinput.New()
	search.Placeholder = "Search posts"
	search.Prompt = "/ "

	composer := textinput.New()
	composer.Placeholder = "Write a comment (start with #id to reply)"
	composer.Prompt = "> "
	composer.CharLimit = 5000

	return &App{
		posts:    posts,
		thread:   thread,
		viewer:   viewer,
		opts:     opts,
		screen:   ScreenList,
		pageNum:  1,
		search:   search,
		composer: composer,
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Evicted reports whether the browser quit because the session was evicted
func (a *App) Evicted() bool {
	return a.evicted
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.loading = true
	return tea.Batch(a.loadPage(1), a.spinner.Tick)
}

func (a *App) loadPage(n int) tea.Cmd {
	filters := pagination.Filters{"search": a.query}
	perPage := a.opts.PerPage
	return func() tea.Msg {
		page, err := a.posts.Fetch(context.Background(), filters, n, perPage)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (a *App) loadPost(slug string) tea.Cmd {
	return func() tea.Msg {
		post, err := a.thread.Load(context.Background(), slug)
		return postLoadedMsg{post: post, err: err}
	}
}

func (a *App) submitComment(content string, parentID *int64) tea.Cmd {
	return func() tea.Msg {
		c, err := a.thread.Submit(context.Background(), content, parentID)
		return commentSubmittedMsg{comment: c, err: err}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		a.refreshPost()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case ScreenList:
			return a.updateList(msg)
		case ScreenPost:
			return a.updatePost(msg)
		}

	case SessionEvictedMsg:
		a.evicted = true
		return a, tea.Quit

	case pageLoadedMsg:
		if errors.Is(msg.err, pagination.ErrStale) {
			return a, nil
		}
		a.loading = false
		a.err = msg.err
		if msg.err == nil {
			a.page = msg.page
			a.pageNum = msg.page.Window.CurrentPage
			a.selected = 0
		}
		return a, nil

	case postLoadedMsg:
		if errors.Is(msg.err, comments.ErrStale) {
			return a, nil
		}
		a.loading = false
		a.err = msg.err
		if msg.err == nil {
			a.screen = ScreenPost
			a.refreshPost()
			a.viewport.GotoTop()
		}
		return a, nil

	case commentSubmittedMsg:
		a.loading = false
		a.err = msg.err
		a.refreshPost()
		if msg.err == nil {
			a.viewport.GotoBottom()
			return a, tea.Tick(a.opts.NoticeDelay+100*time.Millisecond, func(time.Time) tea.Msg { return noticeTickMsg{} })
		}
		return a, nil

	case noticeTickMsg:
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.search.Focused() {
		switch msg.String() {
		case "enter":
			a.search.Blur()
			a.query = strings.TrimSpace(a.search.Value())
			a.loading = true
			return a, a.loadPage(1)
		case "esc":
			a.search.Blur()
			a.search.SetValue(a.query)
			return a, nil
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	w := a.page.Window
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "/":
		return a, a.search.Focus()
	case "esc":
		if a.query != "" {
			a.query = ""
			a.search.SetValue("")
			a.loading = true
			return a, a.loadPage(1)
		}
	case "up", "k":
		if a.selected > 0 {
			a.selected--
		}
	case "down", "j":
		if a.selected < len(a.page.Items)-1 {
			a.selected++
		}
	case "right", "n":
		if pagination.HasNext(w) {
			a.loading = true
			return a, a.loadPage(w.CurrentPage + 1)
		}
	case "left", "p":
		if pagination.HasPrev(w) {
			a.loading = true
			return a, a.loadPage(w.CurrentPage - 1)
		}
	case "r":
		a.loading = true
		return a, a.loadPage(a.pageNum)
	case "enter":
		if a.selected < len(a.page.Items) {
			a.loading = true
			return a, a.loadPost(a.page.Items[a.selected].Slug)
		}
	}
	return a, nil
}

func (a *App) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.composing {
		switch msg.String() {
		case "esc":
			a.composing = false
			a.composer.Blur()
			return a, nil
		case "enter":
			content, parentID, err := parseComposer(a.composer.Value())
			if err != nil {
				a.err = err
				return a, nil
			}
			a.composing = false
			a.composer.Blur()
			a.composer.SetValue("")
			a.loading = true
			return a, a.submitComment(content, parentID)
		}
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "b", "esc":
		a.screen = ScreenList
		a.err = nil
		a.thread.DismissNotice()
		return a, nil
	case "r":
		if ref, ok := a.thread.Article(); ok {
			a.loading = true
			return a, a.loadPost(ref.Slug)
		}
	case "c":
		if !a.viewer.Current().Authenticated {
			a.err = client.NewError(client.ErrAuthorization, "Sign in with `blog login` to comment")
			return a, nil
		}
		a.err = nil
		a.composing = true
		return a, a.composer.Focus()
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// parseComposer splits an optional leading "#<id>" reply target from the text
func parseComposer(input string) (string, *int64, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "#") {
		return input, nil, nil
	}
	target, rest, _ := strings.Cut(input[1:], " ")
	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid reply target %q", "#"+target)
	}
	return strings.TrimSpace(rest), &id, nil
}

func (a *App) refreshPost() {
	if a.screen != ScreenPost {
		return
	}
	post := a.thread.Post()
	thread := a.thread.Comments()
	content := render.PostDetail(post, a.opts.StorageHost, a.viewport.Width) +
		"\n\n" + render.Title.Render(fmt.Sprintf("Comments (%d)", a.thread.Len())) + "\n" +
		render.CommentTree(thread, time.Now())
	a.viewport.SetContent(content)
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenPost:
		content = a.viewPost()
	default:
		content = a.viewList()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.viewHeader(), content, a.viewFooter())
}

func (a *App) viewHeader() string {
	user := a.viewer.Current().User
	left := render.Title.UnsetMarginBottom().Render("Blog")
	right := render.UserLine(user)
	if a.loading {
		right = a.spinner.View() + " " + right
	}
	return left + "  " + right
}

func (a *App) viewList() string {
	var b strings.Builder
	if a.search.Focused() || a.query != "" {
		b.WriteString(a.search.View())
		b.WriteString("\n\n")
	}
	if a.err != nil {
		b.WriteString(render.ErrorText.Render("Error: " + a.err.Error()))
		b.WriteString("\n\n")
	}
	if len(a.page.Items) == 0 && !a.loading {
		b.WriteString(render.Subtitle.Render("No posts found."))
		b.WriteString("\n")
	}
	now := time.Now()
	for i, p := range a.page.Items {
		line := render.PostLine(p, now)
		if i == a.selected {
			line = render.ActivePanel.Render(line)
		} else {
			line = render.Panel.BorderForeground(lipgloss.Color("#374151")).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(render.PageLinks(a.page.Window, a.opts.PageWindow))
	b.WriteString("\n")
	b.WriteString(render.Subtitle.Render(pagination.Summary(a.page.Window)))
	return b.String()
}

func (a *App) viewPost() string {
	var b strings.Builder
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	if notice := a.thread.Notice(); notice != "" {
		b.WriteString(render.NoticeText.Render(notice))
		b.WriteString("\n")
	}
	if a.err != nil {
		b.WriteString(render.ErrorText.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	}
	if a.composing {
		b.WriteString(a.composer.View())
	}
	return b.String()
}

func (a *App) viewFooter() string {
	var keys [][2]string
	switch {
	case a.screen == ScreenList && a.search.Focused():
		keys = [][2]string{{"enter", "search"}, {"esc", "cancel"}}
	case a.screen == ScreenList:
		keys = [][2]string{{"↑/↓", "select"}, {"enter", "open"}, {"←/→", "page"}, {"/", "search"}, {"q", "quit"}}
	case a.composing:
		keys = [][2]string{{"enter", "send"}, {"esc", "cancel"}}
	default:
		keys = [][2]string{{"↑/↓", "scroll"}, {"c", "comment"}, {"r", "reload"}, {"b", "back"}, {"q", "quit"}}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, render.KeyStyle.Render(k[0])+" "+k[1])
	}
	return render.Help.Render(strings.Join(parts, "  "))
}
