// ABOUTME: Comment command: posts a comment or reply on an article
// ABOUTME: Opens an editor form when no message is passed as a flag

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/comments"
	"github.com/GasyCoder/blog-web-nextjs/internal/forms"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

var (
	commentMessage string
	commentParent  int64
)

var commentCmd = &cobra.Command{
	Use:   "comment <slug>",
	Short: "Comment on a post, or reply with --parent",
	Long: `Submit a comment on the post identified by slug. Use --parent to reply to an
existing comment. New comments are pending until a moderator approves them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		content := commentMessage
		if content == "" {
			title := "Comment on " + args[0]
			if commentParent > 0 {
				title = fmt.Sprintf("Reply to #%d", commentParent)
			}
			if err := forms.Comment(title, &content).Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}

		exitCode := runComment(ctx, os.Stdout, args[0], content, parentRef(commentParent))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	commentCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "Comment text")
	commentCmd.Flags().Int64Var(&commentParent, "parent", 0, "Id of the comment to reply to")
	rootCmd.AddCommand(commentCmd)
}

// parentRef turns the --parent flag into an optional id
func parentRef(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// runComment loads the thread, submits the comment and returns exit code
func runComment(ctx context.Context, w io.Writer, slug, content string, parentID *int64) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	thread := comments.New(a.client, a.session, comments.WithNoticeDelay(a.cfg.NoticeDelay))
	if _, err := thread.Load(ctx, slug); err != nil {
		return fail(w, err)
	}

	created, err := thread.Submit(ctx, content, parentID)
	if err != nil {
		return fail(w, err)
	}
	notice := thread.Notice()
	thread.DismissNotice()

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(created))
	} else {
		fmt.Fprintln(w, formatCommentHuman(created, notice))
	}
	return exitOK
}

// formatCommentHuman formats a submitted comment with the submission notice
func formatCommentHuman(c models.Comment, notice string) string {
	out := fmt.Sprintf("Comment #%d [%s]", c.ID, c.Status)
	if notice != "" {
		out += "\n" + notice
	}
	return out
}
