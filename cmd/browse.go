// ABOUTME: Browse command launching the interactive terminal browser
// ABOUTME: Routes back to the login form when the API evicts the session

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/comments"
	"github.com/GasyCoder/blog-web-nextjs/internal/forms"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/pagination"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
	"github.com/GasyCoder/blog-web-nextjs/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse posts and comments interactively",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runBrowse(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// runBrowse runs the browser until the user quits and returns exit code.
// After an eviction it asks for credentials and reopens the browser.
func runBrowse(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	for {
		evicted, err := browse(ctx, a)
		if err != nil {
			return fail(w, err)
		}
		if !evicted {
			return exitOK
		}

		fmt.Fprintln(w, "Your session has expired. Please log in again.")
		var creds models.Credentials
		if err := forms.Login(&creds).Run(); err != nil {
			return fail(w, err)
		}
		if _, err := a.session.Login(ctx, creds); err != nil {
			fmt.Fprintf(w, "Error: %s\n", a.session.LastError())
			return exitCodeFor(err)
		}
	}
}

// browse runs one browser session and reports whether it ended by eviction
func browse(ctx context.Context, a *app) (bool, error) {
	thread := comments.New(a.client, a.session, comments.WithNoticeDelay(a.cfg.NoticeDelay))
	model := tui.New(pagination.Posts(a.client), thread, a.session, tui.Options{
		PerPage:     a.cfg.PerPage,
		PageWindow:  a.cfg.PageWindow,
		StorageHost: a.cfg.StorageHost(),
		NoticeDelay: a.cfg.NoticeDelay,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := a.session.Subscribe(forwardEviction(p))
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return false, err
	}
	return model.Evicted(), nil
}

// forwardEviction relays session evictions into the running program
func forwardEviction(p interface{ Send(tea.Msg) }) func(session.Event) {
	return func(ev session.Event) {
		if ev.Kind == session.EventEvicted {
			p.Send(tui.SessionEvictedMsg{})
		}
	}
}
