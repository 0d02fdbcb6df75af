package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/storage"
)

const videoColumns = `id, owner_id, title, description, thumbnail, video_file, duration_seconds, views, is_published, created_at`

// CreateVideo stores a video record
func (s *Storage) CreateVideo(ctx context.Context, video *models.Video) error {
	query := s.rebind(`
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.Thumbnail,
		video.VideoFile,
		video.DurationSeconds,
		video.Views,
		video.IsPublished,
		video.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

// GetVideo retrieves video by ID
func (s *Storage) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	query := s.rebind(`SELECT ` + videoColumns + ` FROM videos WHERE id = ?`)

	video := &models.Video{}
	err := s.db.QueryRowContext(ctx, query, videoID).Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.Thumbnail,
		&video.VideoFile,
		&video.DurationSeconds,
		&video.Views,
		&video.IsPublished,
		&video.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

// AppendWatchHistory переносит видео в конец истории просмотров пользователя
func (s *Storage) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	return s.withTx(ctx, func(ctx context.Context, tx dbtx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			s.rebind(`SELECT EXISTS (SELECT 1 FROM videos WHERE id = ?)`), videoID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check video: %w", err)
		}
		if !exists {
			return storage.ErrVideoNotFound
		}

		if _, err := tx.ExecContext(ctx,
			s.rebind(`DELETE FROM watch_history WHERE user_id = ? AND video_id = ?`), userID, videoID,
		); err != nil {
			return fmt.Errorf("failed to delete history entry: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO watch_history (user_id, video_id, position)
			SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM watch_history WHERE user_id = ?
		`), userID, videoID, userID)
		if err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}
		return nil
	})
}

// GetWatchHistory returns watched videos with their owners in stored order
func (s *Storage) GetWatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	query := s.rebind(`
		SELECT v.id, v.owner_id, v.title, v.description, v.thumbnail, v.video_file,
		       v.duration_seconds, v.views, v.is_published, v.created_at,
		       u.full_name, u.username, u.avatar
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		LEFT JOIN users u ON u.id = v.owner_id
		WHERE h.user_id = ?
		ORDER BY h.position
	`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	history := make([]*models.WatchedVideo, 0)
	for rows.Next() {
		item := &models.WatchedVideo{}
		var ownerFullName, ownerUsername, ownerAvatar sql.NullString

		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.Thumbnail,
			&item.VideoFile,
			&item.DurationSeconds,
			&item.Views,
			&item.IsPublished,
			&item.CreatedAt,
			&ownerFullName,
			&ownerUsername,
			&ownerAvatar,
		); err != nil {
			return nil, fmt.Errorf("failed to scan watch history: %w", err)
		}

		// Владелец мог быть удален, тогда owner остается nil
		if ownerUsername.Valid {
			item.Owner = &models.VideoOwner{
				FullName: ownerFullName.String,
				Username: ownerUsername.String,
				Avatar:   nullStringPtr(ownerAvatar),
			}
		}

		history = append(history, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch history: %w", err)
	}

	return history, nil
}
