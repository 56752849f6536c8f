package models

import (
	"database/sql"
	"time"
)

// AutomationRule holds per-account automation configuration. Actions is the
// raw JSON payload (see transfer.RuleActions); the engine is the only writer
// of the execution bookkeeping fields.
type AutomationRule struct {
	ID               int64        `db:"id" json:"id"`
	UserID           int64        `db:"user_id" json:"user_id"`
	SocialAccountID  int64        `db:"social_account_id" json:"social_account_id"`
	RuleType         string       `db:"rule_type" json:"rule_type"`
	TriggerType      string       `db:"trigger_type" json:"trigger_type"`
	IsActive         bool         `db:"is_active" json:"is_active"`
	Actions          []byte       `db:"actions" json:"actions"`
	LastExecutionAt  sql.NullTime `db:"last_execution_at" json:"last_execution_at"`
	SuccessCount     int          `db:"success_count" json:"success_count"`
	ErrorCount       int          `db:"error_count" json:"error_count"`
	LastSuccessAt    sql.NullTime `db:"last_success_at" json:"last_success_at"`
	LastErrorAt      sql.NullTime `db:"last_error_at" json:"last_error_at"`
	LastErrorMessage string       `db:"last_error_message" json:"last_error_message"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	RuleTypeAutoReply = "auto_reply"

	TriggerTypeNewComment = "new_comment"
)
