package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/vidtube/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	fullName, err := c.io.ReadInput("Full name: ")
	if err != nil {
		return fmt.Errorf("failed to read full name: %w", err)
	}
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, prompted, err := c.password("Password (min 8 chars): ")
	if err != nil {
		return err
	}
	if prompted {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}
	}

	c.io.Println()
	c.io.Println("Registering user...")

	user, err := c.auth.Register(ctx, auth.RegisterInput{
		FullName: fullName,
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", user.ID)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Println()
	c.io.Println("Please run 'vidtube login' to start using the service.")

	return nil
}

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	} else {
		var err error
		identifier, err = c.io.ReadInput("Username or email: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, _, err := c.password("Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	session, err := c.auth.Login(ctx, identifier, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", session.Username)
	c.io.Printf("Session valid until: %s\n", time.Unix(session.RefreshExpiresAt, 0).Format(time.RFC3339))

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()
	c.io.Printf("Server: %s\n", c.serverURL)

	session, err := c.auth.Session(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'vidtube login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	now := time.Now()
	accessExpires := time.Unix(session.AccessExpiresAt, 0)
	refreshExpires := time.Unix(session.RefreshExpiresAt, 0)

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", session.Username)
	c.io.Printf("Session expires: %s (in %s)\n", refreshExpires.Format(time.RFC3339), refreshExpires.Sub(now).Round(time.Second))
	if session.AccessExpired(now) {
		c.io.Println("Access token expired, it will be refreshed on the next request.")
	} else {
		c.io.Printf("Access token expires: %s\n", accessExpires.Format(time.RFC3339))
	}

	return nil
}

func (c *Cli) runWhoami(ctx context.Context) error {
	return c.auth.WithSession(ctx, func(ctx context.Context, accessToken string) error {
		user, err := c.api.CurrentUser(ctx, accessToken)
		if err != nil {
			return err
		}

		c.io.Printf("ID:        %s\n", user.ID)
		c.io.Printf("Username:  %s\n", user.Username)
		c.io.Printf("Full name: %s\n", user.FullName)
		c.io.Printf("Email:     %s\n", user.Email)
		c.io.Printf("Avatar:    %s\n", orDash(user.Avatar))
		c.io.Printf("Cover:     %s\n", orDash(user.CoverImage))
		c.io.Printf("Joined:    %s\n", user.CreatedAt.Format(time.RFC3339))
		return nil
	})
}

func (c *Cli) runChangePassword(ctx context.Context) error {
	c.io.Println("=== Change Password ===")

	oldPassword, err := c.io.ReadPassword("Current password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	newPassword, err := c.io.ReadPassword("New password (min 8 chars): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := c.io.ReadPassword("Confirm new password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if newPassword != confirm {
		return errors.New("passwords do not match")
	}

	if err := c.auth.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}

	c.io.Println("✓ Password changed.")
	c.io.Println("All sessions were revoked, please run 'vidtube login' again.")
	return nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
