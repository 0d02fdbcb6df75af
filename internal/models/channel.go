package models

import "time"

// ChannelStats holds the subscription counters of one channel as seen by a viewer.
type ChannelStats struct {
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}

// ChannelProfile представляет публичный профиль канала
type ChannelProfile struct {
	Avatar                    *string `json:"avatar"`
	CoverImage                *string `json:"cover_image"`
	FullName                  string  `json:"full_name"`
	Username                  string  `json:"username"`
	Email                     string  `json:"email"`
	SubscribersCount          int64   `json:"subscribers_count"`
	ChannelsSubscribedToCount int64   `json:"channels_subscribed_to_count"`
	IsSubscribed              bool    `json:"is_subscribed"`
}

// Video представляет видео, принадлежащее каналу.
// Видео создаются внешним сервисом загрузки, здесь они только читаются.
type Video struct {
	CreatedAt       time.Time `json:"created_at"`
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Thumbnail       string    `json:"thumbnail"`
	VideoFile       string    `json:"video_file"`
	DurationSeconds int64     `json:"duration_seconds"`
	Views           int64     `json:"views"`
	IsPublished     bool      `json:"is_published"`
}

// VideoOwner is the owner identity joined into a watch history item.
type VideoOwner struct {
	Avatar   *string `json:"avatar"`
	FullName string  `json:"full_name"`
	Username string  `json:"username"`
}

// WatchedVideo is one watch history entry: the video with exactly one owner object.
// Owner is nil only when the owner identity no longer exists.
type WatchedVideo struct {
	Owner *VideoOwner `json:"owner"`
	Video
}
