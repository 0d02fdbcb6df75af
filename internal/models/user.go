package models

import "time"

// User представляет пользователя (identity) в системе.
// PasswordHash и RefreshToken никогда не покидают сервер: наружу отдается только PublicUser.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Avatar       *string   `json:"avatar,omitempty"`      // URL аватара в object store
	CoverImage   *string   `json:"cover_image,omitempty"` // URL обложки канала
	RefreshToken *string   `json:"-"`                     // единственный действующий refresh token
	ID           string    `json:"id"`                    // UUID пользователя
	Username     string    `json:"username"`              // уникальный handle в нижнем регистре
	Email        string    `json:"email"`                 // уникальный email в нижнем регистре
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // bcrypt хеш пароля
}

// PublicUser is the outward projection of User.
type PublicUser struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Avatar     *string   `json:"avatar"`
	CoverImage *string   `json:"cover_image"`
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
}

// Public returns the projection of u that is safe to send to clients.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// MediaKind определяет, какое изображение пользователя обновляется
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatar"
	MediaCoverImage MediaKind = "cover_image"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaAvatar || k == MediaCoverImage
}
