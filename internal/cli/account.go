package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/session"
)

// Pinger probes the service health endpoint
type Pinger interface {
	Ping(ctx context.Context) (string, error)
	BaseURL() string
}

// Ping checks that the service is reachable and prints its banner
func Ping(ctx context.Context, env Env, p Pinger) error {
	env = env.withDefaults()

	start := time.Now()
	banner, err := p.Ping(ctx)
	if err != nil {
		env.Logger.Error("health check failed", "url", p.BaseURL(), "err", err)
		fmt.Fprintln(env.Stderr, paint(errorStyle, "Error: "+executor.MessageFrom(err), env.Color))
		fmt.Fprintf(env.Stderr, "  %s (%s)\n", executor.Describe(err), p.BaseURL())
		return ErrReported
	}

	fmt.Fprintf(env.Stdout, "%s\n", paint(successStyle, banner, env.Color))
	fmt.Fprintf(env.Stdout, "%s in %s\n", p.BaseURL(), executor.FormatDuration(time.Since(start)))
	return nil
}

// CredentialPrompt asks for the credentials that were not given as flags
type CredentialPrompt func(username string) (string, string, error)

// LoginOptions contains options for the login command
type LoginOptions struct {
	Username string
	Password string
	Prompt   CredentialPrompt // nil reads username and password lines from stdin
}

// Login stores the demo session
func Login(env Env, mgr *session.Manager, opts LoginOptions) error {
	env = env.withDefaults()

	username, password := opts.Username, opts.Password
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		var err error
		if opts.Prompt != nil {
			username, password, err = opts.Prompt(username)
		} else {
			username, password, err = readCredentials(env, username, password)
		}
		if err != nil {
			return err
		}
	}

	s, err := mgr.Login(username, password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			return fmt.Errorf("failed to log in: %w", err)
		}
		return err
	}

	env.Logger.Info("logged in", "user", s.Username)
	fmt.Fprintf(env.Stdout, "Logged in as %s\n", s.Username)
	return nil
}

// readCredentials reads the missing username and password lines from stdin
func readCredentials(env Env, username, password string) (string, string, error) {
	reader := bufio.NewReader(env.Stdin)

	readLine := func(label string) (string, error) {
		fmt.Fprintf(env.Stderr, "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = readLine("Username"); err != nil {
			return "", "", err
		}
	}
	if strings.TrimSpace(password) == "" {
		if password, err = readLine("Password"); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

// Logout removes the demo session
func Logout(env Env, mgr *session.Manager) error {
	env = env.withDefaults()

	current, currentErr := mgr.Current()
	if err := mgr.Logout(); err != nil {
		return err
	}
	if currentErr != nil {
		fmt.Fprintln(env.Stdout, "Not logged in")
		return nil
	}

	env.Logger.Info("logged out", "user", current.Username)
	fmt.Fprintf(env.Stdout, "Logged out %s\n", current.Username)
	return nil
}

// Whoami prints the stored user
func Whoami(env Env, mgr *session.Manager) error {
	env = env.withDefaults()

	current, err := mgr.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%s (since %s)\n", current.Username, current.LoggedInAt.Local().Format(time.DateTime))
	return nil
}
