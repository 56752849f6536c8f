package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type SchedulePostRequest struct {
	SocialAccountID int64    `json:"social_account_id"`
	Prompt          string   `json:"prompt"`
	PostType        string   `json:"post_type"`
	Frequency       string   `json:"frequency"`
	ImageURL        string   `json:"image_url"`
	MediaURLs       []string `json:"media_urls"`
	VideoURL        string   `json:"video_url"`
	ScheduledTime   string   `json:"scheduled_time"` // RFC 3339
}

type BulkComposerRow struct {
	Caption       string `json:"caption"`
	MediaURL      string `json:"media_url"`
	DriveFileID   string `json:"drive_file_id"`
	ScheduledTime string `json:"scheduled_time"` // RFC 3339
}

type BulkComposerImportRequest struct {
	SocialAccountID int64             `json:"social_account_id"`
	Rows            []BulkComposerRow `json:"rows"`
}

type AutoReplyToggleRequest struct {
	SocialAccountID         int64    `json:"social_account_id"`
	Enabled                 bool     `json:"enabled"`
	ResponseTemplate        string   `json:"response_template"`
	SelectedPostIDs         []string `json:"selected_post_ids"`
	SelectedPlatformPostIDs []string `json:"selected_platform_post_ids"`
}
