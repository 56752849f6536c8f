package models

import (
	"database/sql"
	"time"
)

type BulkComposerContent struct {
	ID                 int64        `db:"id" json:"id"`
	UserID             int64        `db:"user_id" json:"user_id"`
	SocialAccountID    int64        `db:"social_account_id" json:"social_account_id"`
	Caption            string       `db:"caption" json:"caption"`
	MediaURL           string       `db:"media_url" json:"media_url"`
	ScheduleBatchID    string       `db:"schedule_batch_id" json:"schedule_batch_id"`
	ScheduledDatetime  time.Time    `db:"scheduled_datetime" json:"scheduled_datetime"`
	Status             string       `db:"status" json:"status"` // scheduled, published, failed
	PublishAttempts    int          `db:"publish_attempts" json:"publish_attempts"`
	LastPublishAttempt sql.NullTime `db:"last_publish_attempt" json:"last_publish_attempt"`
	PlatformPostID     string       `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage       string       `db:"error_message" json:"error_message"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	BulkComposerStatusScheduled = "scheduled"
	BulkComposerStatusPublished = "published"
	BulkComposerStatusFailed    = "failed"
)

// MaxPublishAttempts is the retry ceiling for bulk composer rows. Once a row
// fails with this many attempts it is excluded from the operator retry pass.
const MaxPublishAttempts = 3
