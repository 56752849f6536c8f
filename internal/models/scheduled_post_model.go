package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ScheduledPost struct {
	ID                int64          `db:"id" json:"id"`
	UserID            int64          `db:"user_id" json:"user_id"`
	SocialAccountID   int64          `db:"social_account_id" json:"social_account_id"`
	Prompt            string         `db:"prompt" json:"prompt"`
	PostType          string         `db:"post_type" json:"post_type"` // photo, carousel, reel, text
	Frequency         string         `db:"frequency" json:"frequency"` // once, daily, weekly, monthly
	ImageURL          string         `db:"image_url" json:"image_url"`
	MediaURLs         pq.StringArray `db:"media_urls" json:"media_urls"`
	VideoURL          string         `db:"video_url" json:"video_url"`
	ScheduledDatetime time.Time      `db:"scheduled_datetime" json:"scheduled_datetime"`
	Status            string         `db:"status" json:"status"` // scheduled, ready, posted, failed
	IsActive          bool           `db:"is_active" json:"is_active"`
	LastExecuted      sql.NullTime   `db:"last_executed" json:"last_executed"`
	PlatformPostID    string         `db:"platform_post_id" json:"platform_post_id"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	ScheduledPostStatusScheduled = "scheduled"
	ScheduledPostStatusReady     = "ready"
	ScheduledPostStatusPosted    = "posted"
	ScheduledPostStatusFailed    = "failed"
)

const (
	PostTypePhoto    = "photo"
	PostTypeCarousel = "carousel"
	PostTypeReel     = "reel"
	PostTypeText     = "text"
)

const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)
