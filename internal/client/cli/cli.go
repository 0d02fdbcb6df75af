// Package cli implements the vidtube command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/vidtube/internal/client/auth"
	"github.com/iudanet/vidtube/internal/client/iocli"
	"github.com/iudanet/vidtube/internal/models"
)

// PasswordEnv is the environment variable with the account password.
const PasswordEnv = "VIDTUBE_PASSWORD"

// Passwords описывает неинтерактивные источники пароля
type Passwords struct {
	FromFile string
	FromArgs string
}

// ChannelAPI is the part of the API client used by the channel commands.
type ChannelAPI interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.PublicUser, error)
	ChannelProfile(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error)
	Subscribe(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error)
	Unsubscribe(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, accessToken string) ([]*models.WatchedVideo, error)
}

type Cli struct {
	io        iocli.IO
	auth      *auth.Service
	api       ChannelAPI
	passwords Passwords
	serverURL string
}

func New(io iocli.IO, authService *auth.Service, apiClient ChannelAPI, passwords Passwords, serverURL string) *Cli {
	return &Cli{
		io:        io,
		auth:      authService,
		api:       apiClient,
		passwords: passwords,
		serverURL: serverURL,
	}
}

// ErrUnknownCommand is returned by Run for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Run выполняет команду args[0] с аргументами args[1:]
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.PrintUsage()
		return ErrUnknownCommand
	}

	command, rest := args[0], args[1:]
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx, rest)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "whoami":
		return c.runWhoami(ctx)
	case "change-password":
		return c.runChangePassword(ctx)
	case "channel":
		return c.runChannel(ctx, rest)
	case "subscribe":
		return c.runSubscribe(ctx, rest, true)
	case "unsubscribe":
		return c.runSubscribe(ctx, rest, false)
	case "history":
		return c.runHistory(ctx)
	case "help":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// password returns the account password with priority:
// 1. VIDTUBE_PASSWORD environment variable
// 2. --password-file
// 3. --password
// 4. Interactive prompt
//
// prompted is true when the password was typed interactively.
func (c *Cli) password(prompt string) (password string, prompted bool, err error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, false, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", false, errors.New("password file is empty")
		}
		return password, false, nil
	}

	if c.passwords.FromArgs != "" {
		return c.passwords.FromArgs, false, nil
	}

	password, err = c.io.ReadPassword(prompt)
	if err != nil {
		return "", true, fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", true, errors.New("password cannot be empty")
	}
	return password, true, nil
}

func (c *Cli) PrintUsage() {
	c.io.Println("VidTube Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  vidtube [OPTIONS] COMMAND [ARGS]")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  --version              Show version information")
	c.io.Printf("  --server URL           Server URL (default: %s)\n", DefaultServerURL)
	c.io.Println("  --db PATH              Path to local session database (default: vidtube-client.db)")
	c.io.Println("  --password PASSWORD    Account password (not recommended, use env var or file)")
	c.io.Println("  --password-file PATH   Path to file containing the account password")
	c.io.Println()
	c.io.Println("Password priority (highest to lowest):")
	c.io.Printf("  1. %s environment variable\n", PasswordEnv)
	c.io.Println("  2. --password-file")
	c.io.Println("  3. --password")
	c.io.Println("  4. Interactive prompt")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  register                 Create a new account")
	c.io.Println("  login [username|email]   Login and save the session")
	c.io.Println("  logout                   Logout and delete the local session")
	c.io.Println("  status                   Show session status")
	c.io.Println("  whoami                   Show the current account")
	c.io.Println("  change-password          Change password (logs out everywhere)")
	c.io.Println("  channel <username>       Show a channel profile")
	c.io.Println("  subscribe <username>     Subscribe to a channel")
	c.io.Println("  unsubscribe <username>   Unsubscribe from a channel")
	c.io.Println("  history                  Show your watch history")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  vidtube register")
	c.io.Println("  vidtube login alice")
	c.io.Println("  vidtube channel bob")
	c.io.Println("  vidtube --server https://example.com login alice@example.com")
}

// DefaultServerURL is used when --server is not set.
const DefaultServerURL = "http://localhost:8080"
