package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iudanet/vidtube/internal/models"
)

var errUsernameRequired = errors.New("channel username is required")

func channelArg(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errUsernameRequired
	}
	return strings.TrimSpace(args[0]), nil
}

func (c *Cli) runChannel(ctx context.Context, args []string) error {
	username, err := channelArg(args)
	if err != nil {
		return err
	}

	return c.auth.WithSession(ctx, func(ctx context.Context, accessToken string) error {
		profile, err := c.api.ChannelProfile(ctx, accessToken, username)
		if err != nil {
			return err
		}
		c.printProfile(profile)
		return nil
	})
}

func (c *Cli) runSubscribe(ctx context.Context, args []string, subscribe bool) error {
	username, err := channelArg(args)
	if err != nil {
		return err
	}

	return c.auth.WithSession(ctx, func(ctx context.Context, accessToken string) error {
		var (
			profile *models.ChannelProfile
			err     error
		)
		if subscribe {
			profile, err = c.api.Subscribe(ctx, accessToken, username)
		} else {
			profile, err = c.api.Unsubscribe(ctx, accessToken, username)
		}
		if err != nil {
			return err
		}

		if subscribe {
			c.io.Printf("✓ Subscribed to %s\n", profile.Username)
		} else {
			c.io.Printf("✓ Unsubscribed from %s\n", profile.Username)
		}
		c.io.Printf("Subscribers: %d\n", profile.SubscribersCount)
		return nil
	})
}

func (c *Cli) runHistory(ctx context.Context) error {
	return c.auth.WithSession(ctx, func(ctx context.Context, accessToken string) error {
		history, err := c.api.WatchHistory(ctx, accessToken)
		if err != nil {
			return err
		}

		if len(history) == 0 {
			c.io.Println("Watch history is empty.")
			return nil
		}

		w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "TITLE\tCHANNEL\tDURATION\tVIEWS")
		for _, v := range history {
			owner := "-"
			if v.Owner != nil {
				owner = v.Owner.Username
			}
			duration := (time.Duration(v.DurationSeconds) * time.Second).String()
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", v.Title, owner, duration, v.Views)
		}
		return w.Flush()
	})
}

func (c *Cli) printProfile(p *models.ChannelProfile) {
	c.io.Printf("Channel:        %s\n", p.Username)
	c.io.Printf("Full name:      %s\n", p.FullName)
	c.io.Printf("Avatar:         %s\n", orDash(p.Avatar))
	c.io.Printf("Cover:          %s\n", orDash(p.CoverImage))
	c.io.Printf("Subscribers:    %d\n", p.SubscribersCount)
	c.io.Printf("Subscribed to:  %d\n", p.ChannelsSubscribedToCount)
	if p.IsSubscribed {
		c.io.Println("You are subscribed to this channel.")
	}
}
