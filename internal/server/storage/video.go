package storage

import (
	"context"

	"github.com/iudanet/vidtube/internal/models"
)

// VideoStorage defines interface for videos and watch history
type VideoStorage interface {
	// CreateVideo stores a video record
	CreateVideo(ctx context.Context, video *models.Video) error

	// GetVideo retrieves video by ID
	// Returns ErrVideoNotFound if video doesn't exist
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)

	// AppendWatchHistory moves videoID to the end of the user's watch history
	// Returns ErrVideoNotFound if video doesn't exist
	AppendWatchHistory(ctx context.Context, userID, videoID string) error

	// GetWatchHistory returns the user's watched videos in stored order,
	// each joined with its owner. Entries whose video no longer exists are
	// skipped; Owner is nil when the owner no longer exists.
	GetWatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error)
}
