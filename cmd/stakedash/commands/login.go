package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chukwumela909/project-bolt/internal/client"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/session"
)

// EnvPassword supplies the login password non-interactively.
const EnvPassword = "STAKEDASH_PASSWORD"

var (
	loginEmail         string
	loginPasswordStdin bool
)

func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the staking backend",
		Long: `Sign in with your account email and password.

The session token is stored in the platform keyring (macOS Keychain,
Secret Service on Linux) when available, otherwise in the kernel keyring
or ~/.stakedash/session. The password itself is never stored.

For scripted use pass --email and either --password-stdin or the
STAKEDASH_PASSWORD environment variable.`,
		RunE: runLogin,
	}

	cmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	cmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	email, password, err := loginCredentials(os.Stdin)
	if err != nil {
		return err
	}

	var res *client.LoginResult
	err = WithSpinner("Signing in", func() error {
		var lerr error
		res, lerr = app.Client.Login(ctx, email, password)
		return lerr
	})
	if err != nil {
		logging.Audit(logging.AuditEvent{Operation: "login", Actor: email, Result: "failure", Details: client.Message(err)})
		if msg := client.Message(err); msg != "" {
			return fmt.Errorf("login failed: %s", msg)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := app.Session.Login(res.Token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	logging.Audit(logging.AuditEvent{Operation: "login", Actor: email, Target: res.UserID, Result: "success"})

	name := res.Name
	if name == "" {
		name = res.Email
	}
	if name == "" {
		name = email
	}
	Success("Logged in as " + name)
	fmt.Println(Hint("Session stored in " + app.Session.Source()))
	return nil
}

// loginCredentials resolves email and password from flags, environment,
// stdin or an interactive form, in that order.
func loginCredentials(stdin io.Reader) (string, string, error) {
	email := strings.TrimSpace(loginEmail)
	password := os.Getenv(EnvPassword)

	if loginPasswordStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if email != "" && password != "" {
		return email, password, validateEmail(email)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", errors.New("email and password required: use --email with --password-stdin or " + EnvPassword)
	}

	if email != "" {
		fmt.Print("Password: ")
		pw, err := readPasswordNoEcho()
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return email, pw, validateEmail(email)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

// readPasswordNoEcho reads a line from stdin with echo disabled.
func readPasswordNoEcho() (string, error) {
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmdContext(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			source := app.Session.Source()
			if err := app.Session.Logout(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			logging.Audit(logging.AuditEvent{Operation: "logout", Result: "success"})

			Success("Logged out")
			if os.Getenv(session.EnvToken) != "" {
				Warning(session.EnvToken + " is still set in the environment")
			} else {
				fmt.Println(Hint("Removed session from " + source))
			}
			return nil
		},
	}
}

// cmdContext returns the command's context, or Background when the
// command was run without Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
