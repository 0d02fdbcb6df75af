package storage

import (
	"context"

	"github.com/iudanet/vidtube/internal/models"
)

// SubscriptionStorage defines interface for subscriber -> channel edges
type SubscriptionStorage interface {
	// Subscribe creates the edge subscriberID -> channelID.
	// Creating an existing edge is a no-op
	Subscribe(ctx context.Context, subscriberID, channelID string) error

	// Unsubscribe removes the edge. Removing a missing edge is a no-op
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error

	// GetChannelStats returns subscriber and subscription counts of channelID
	// and whether viewerID is subscribed to it, in one query.
	// An empty viewerID is never subscribed.
	GetChannelStats(ctx context.Context, channelID, viewerID string) (*models.ChannelStats, error)
}
