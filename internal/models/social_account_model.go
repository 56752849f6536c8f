package models

import (
	"database/sql"
	"time"
)

type SocialAccount struct {
	ID             int64        `db:"id" json:"id"`
	UserID         int64        `db:"user_id" json:"user_id"`
	Platform       string       `db:"platform" json:"platform"` // facebook, instagram
	PlatformUserID string       `db:"platform_user_id" json:"platform_user_id"`
	DisplayName    string       `db:"display_name" json:"display_name"`
	ProfilePicture string       `db:"profile_picture_url" json:"profile_picture"`
	AccessToken    string       `db:"access_token" json:"-"`
	TokenExpiresAt sql.NullTime `db:"token_expires_at" json:"token_expires_at"`
	IsConnected    bool         `db:"is_connected" json:"is_connected"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)
