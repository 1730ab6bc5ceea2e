// ABOUTME: Authentication commands: login, register, logout and whoami
// ABOUTME: Prompts with huh forms when credentials are not given as flags

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GasyCoder/blog-web-nextjs/internal/forms"
	"github.com/GasyCoder/blog-web-nextjs/internal/models"
	"github.com/GasyCoder/blog-web-nextjs/internal/render"
	"github.com/GasyCoder/blog-web-nextjs/internal/session"
	"github.com/GasyCoder/blog-web-nextjs/internal/validate"
)

var (
	loginEmail    string
	loginPassword string

	registerName         string
	registerEmail        string
	registerPassword     string
	registerConfirmation string

	whoamiRefresh bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		creds := models.Credentials{Email: loginEmail, Password: loginPassword}
		if creds.Email == "" || creds.Password == "" {
			if err := forms.Login(&creds).Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}

		exitCode := runLogin(ctx, os.Stdout, creds)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		input := models.Registration{
			Name:                 registerName,
			Email:                registerEmail,
			Password:             registerPassword,
			PasswordConfirmation: registerConfirmation,
		}
		if input.Name == "" || input.Email == "" || input.Password == "" || input.PasswordConfirmation == "" {
			if err := forms.Register(&input).Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}

		exitCode := runRegister(ctx, os.Stdout, input)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long:  `Show the user of the stored session. Exits 1 when nobody is signed in.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password")
	registerCmd.Flags().StringVar(&registerConfirmation, "password-confirmation", "", "Password again")

	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Re-fetch the user from the API")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, creds models.Credentials) int {
	if err := validate.Login(creds); err != nil {
		return fail(w, err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	sess, err := a.session.Login(ctx, creds)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", a.session.LastError())
		return exitCodeFor(err)
	}
	printSession(w, sess, "Logged in as")
	return exitOK
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, w io.Writer, input models.Registration) int {
	if err := validate.Registration(input); err != nil {
		return fail(w, err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	sess, err := a.session.Register(ctx, input)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", a.session.LastError())
		return exitCodeFor(err)
	}
	printSession(w, sess, "Registered as")
	return exitOK
}

// runLogout signs out and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	wasSignedIn := a.session.Current().Authenticated
	a.session.Logout(ctx)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(a.session.Current()))
	} else if wasSignedIn {
		fmt.Fprintln(w, "Logged out.")
	} else {
		fmt.Fprintln(w, "Not logged in.")
	}
	return exitOK
}

// runWhoami shows the current session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}

	sess := a.session.Current()
	if whoamiRefresh && sess.Authenticated {
		if sess, err = a.session.Refresh(ctx); err != nil {
			return fail(w, err)
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(sess))
	} else {
		fmt.Fprintln(w, formatSessionHuman(sess))
	}
	if !sess.Authenticated {
		return exitRejected
	}
	return exitOK
}

func printSession(w io.Writer, sess session.Session, verb string) {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(sess))
		return
	}
	fmt.Fprintf(w, "%s %s\n", verb, render.UserLine(sess.User))
}

// formatSessionHuman formats a session for human readability
func formatSessionHuman(sess session.Session) string {
	if !sess.Authenticated || sess.User == nil {
		return "Not logged in."
	}
	u := sess.User
	return fmt.Sprintf(`Name:   %s
Email:  %s
Role:   %s
ID:     %d`, u.Name, u.Email, u.Role, u.ID)
}

// sessionView is the JSON shape of a session; the token is never printed
type sessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user"`
}

// formatSessionJSON formats a session as JSON
func formatSessionJSON(sess session.Session) string {
	data, _ := json.MarshalIndent(sessionView{Authenticated: sess.Authenticated, User: sess.User}, "", "  ")
	return string(data)
}
