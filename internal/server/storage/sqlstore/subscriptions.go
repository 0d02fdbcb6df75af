package sqlstore

import (
	"context"
	"fmt"

	"github.com/iudanet/vidtube/internal/models"
)

// Subscribe creates subscriber -> channel edge, existing edge is kept as is
func (s *Storage) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	query := s.rebind(`
		INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`)

	if _, err := s.db.ExecContext(ctx, query, subscriberID, channelID, s.now()); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes subscriber -> channel edge
func (s *Storage) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	query := s.rebind(`DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`)

	if _, err := s.db.ExecContext(ctx, query, subscriberID, channelID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// GetChannelStats считает подписчиков и подписки канала одним запросом
func (s *Storage) GetChannelStats(ctx context.Context, channelID, viewerID string) (*models.ChannelStats, error) {
	query := s.rebind(`
		SELECT
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = ?),
			(SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ?),
			EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = ? AND subscriber_id = ?)
	`)

	stats := &models.ChannelStats{}
	err := s.db.QueryRowContext(ctx, query, channelID, channelID, channelID, viewerID).Scan(
		&stats.SubscribersCount,
		&stats.ChannelsSubscribedToCount,
		&stats.IsSubscribed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel stats: %w", err)
	}

	return stats, nil
}
