// Package graph answers relationship queries: channel profiles with
// subscription counts and watch history joined with video owners.
package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/storage"
	"github.com/iudanet/vidtube/internal/validation"
)

// Store is the subset of storage.Storage used by Service.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	storage.SubscriptionStorage
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	GetWatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error)
}

// Service агрегирует граф подписок и историю просмотров
type Service struct {
	logger *slog.Logger
	store  Store
}

// NewService создает новый сервис графа
func NewService(logger *slog.Logger, store Store) *Service {
	return &Service{logger: logger, store: store}
}

// ChannelProfile returns the public profile of the channel identified by handle
// as seen by viewerID. An empty viewerID is treated as anonymous.
func (s *Service) ChannelProfile(ctx context.Context, handle, viewerID string) (*models.ChannelProfile, error) {
	channel, err := s.channel(ctx, handle)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetChannelStats(ctx, channel.ID, viewerID)
	if err != nil {
		return nil, apperr.Internal("failed to load channel stats", err)
	}

	return &models.ChannelProfile{
		FullName:                  channel.FullName,
		Username:                  channel.Username,
		Email:                     channel.Email,
		Avatar:                    channel.Avatar,
		CoverImage:                channel.CoverImage,
		SubscribersCount:          stats.SubscribersCount,
		ChannelsSubscribedToCount: stats.ChannelsSubscribedToCount,
		IsSubscribed:              stats.IsSubscribed,
	}, nil
}

// WatchHistory возвращает историю просмотров в сохраненном порядке
func (s *Service) WatchHistory(ctx context.Context, viewerID string) ([]*models.WatchedVideo, error) {
	history, err := s.store.GetWatchHistory(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal("failed to load watch history", err)
	}
	return history, nil
}

// Subscribe creates the edge subscriberID -> channel. Repeating it is a no-op.
func (s *Service) Subscribe(ctx context.Context, subscriberID, handle string) error {
	channel, err := s.channel(ctx, handle)
	if err != nil {
		return err
	}
	if channel.ID == subscriberID {
		return apperr.BadRequest("cannot subscribe to own channel")
	}

	if err := s.store.Subscribe(ctx, subscriberID, channel.ID); err != nil {
		return apperr.Internal("failed to subscribe", err)
	}

	s.logger.InfoContext(ctx, "subscribed to channel",
		slog.String("user_id", subscriberID),
		slog.String("channel_id", channel.ID))
	return nil
}

// Unsubscribe removes the edge subscriberID -> channel. Repeating it is a no-op.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, handle string) error {
	channel, err := s.channel(ctx, handle)
	if err != nil {
		return err
	}

	if err := s.store.Unsubscribe(ctx, subscriberID, channel.ID); err != nil {
		return apperr.Internal("failed to unsubscribe", err)
	}

	s.logger.InfoContext(ctx, "unsubscribed from channel",
		slog.String("user_id", subscriberID),
		slog.String("channel_id", channel.ID))
	return nil
}

// RecordView добавляет видео в конец истории просмотров
func (s *Service) RecordView(ctx context.Context, userID, videoID string) error {
	if videoID == "" {
		return apperr.BadRequest("video id is required")
	}

	if err := s.store.AppendWatchHistory(ctx, userID, videoID); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return apperr.NotFound("video does not exist")
		}
		return apperr.Internal("failed to record view", err)
	}
	return nil
}

func (s *Service) channel(ctx context.Context, handle string) (*models.User, error) {
	username := validation.NormalizeHandle(handle)
	if username == "" {
		return nil, apperr.BadRequest("username is missing")
	}

	channel, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("failed to load channel", err)
	}
	return channel, nil
}
