package api

import (
	"net/http"
	"time"
)

// UpdateAccountRequest представляет запрос на изменение данных аккаунта
type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UploadURLRequest requests a presigned upload for "avatar" or "cover_image".
type UploadURLRequest struct {
	Kind string `json:"kind"`
}

// UploadURLResponse описывает presigned запрос на загрузку файла
type UploadURLResponse struct {
	ExpiresAt time.Time   `json:"expires_at"`
	Headers   http.Header `json:"headers,omitempty"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Key       string      `json:"key"`
}

// UpdateMediaRequest points the avatar or cover image at an uploaded object.
type UpdateMediaRequest struct {
	Key string `json:"key"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
