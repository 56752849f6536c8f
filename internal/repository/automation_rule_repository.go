package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
)

type AutomationRuleRepository interface {
	Upsert(ctx context.Context, rule *models.AutomationRule) (int64, error)
	GetByAccount(ctx context.Context, userID, socialAccountID int64, ruleType string) (*models.AutomationRule, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.AutomationRule, error)
	ListActiveByType(ctx context.Context, ruleType string) ([]*models.AutomationRule, error)
	SetLastExecution(ctx context.Context, id int64, at time.Time) error
	RecordSuccess(ctx context.Context, id int64, at time.Time) error
	RecordError(ctx context.Context, id int64, at time.Time, message string) error
}

type automationRuleRepository struct {
	db *sql.DB
}

func NewAutomationRuleRepository(db *sql.DB) AutomationRuleRepository {
	return &automationRuleRepository{db: db}
}

const automationRuleColumns = `id, user_id, social_account_id, rule_type, trigger_type, is_active,
	actions, last_execution_at, success_count, error_count,
	last_success_at, last_error_at, last_error_message, created_at, updated_at`

func (r *automationRuleRepository) scanRule(row interface{ Scan(...any) error }) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	err := row.Scan(&rule.ID, &rule.UserID, &rule.SocialAccountID, &rule.RuleType, &rule.TriggerType,
		&rule.IsActive, &rule.Actions, &rule.LastExecutionAt, &rule.SuccessCount, &rule.ErrorCount,
		&rule.LastSuccessAt, &rule.LastErrorAt, &rule.LastErrorMessage, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Upsert creates or replaces the rule for its (user, account, type) key.
// automation_rules carries a unique constraint on that composite key, so
// there is never more than one auto-reply rule per connected account.
func (r *automationRuleRepository) Upsert(ctx context.Context, rule *models.AutomationRule) (int64, error) {
	query := `
		INSERT INTO automation_rules (user_id, social_account_id, rule_type, trigger_type, is_active, actions)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, social_account_id, rule_type)
		DO UPDATE SET
			trigger_type = EXCLUDED.trigger_type,
			is_active = EXCLUDED.is_active,
			actions = EXCLUDED.actions,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, rule.UserID, rule.SocialAccountID, rule.RuleType,
		rule.TriggerType, rule.IsActive, rule.Actions).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *automationRuleRepository) GetByAccount(ctx context.Context, userID, socialAccountID int64, ruleType string) (*models.AutomationRule, error) {
	query := `SELECT ` + automationRuleColumns + `
		FROM automation_rules
		WHERE user_id = $1 AND social_account_id = $2 AND rule_type = $3`

	rule, err := r.scanRule(r.db.QueryRowContext(ctx, query, userID, socialAccountID, ruleType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return rule, nil
}

func (r *automationRuleRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.AutomationRule, error) {
	query := `SELECT ` + automationRuleColumns + ` FROM automation_rules WHERE user_id = $1`
	return r.list(ctx, query, userID)
}

func (r *automationRuleRepository) ListActiveByType(ctx context.Context, ruleType string) ([]*models.AutomationRule, error) {
	query := `SELECT ` + automationRuleColumns + `
		FROM automation_rules
		WHERE rule_type = $1 AND is_active = TRUE`
	return r.list(ctx, query, ruleType)
}

func (r *automationRuleRepository) list(ctx context.Context, query string, args ...any) ([]*models.AutomationRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var rules []*models.AutomationRule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *automationRuleRepository) SetLastExecution(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE automation_rules
		SET last_execution_at = $1, updated_at = $1
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *automationRuleRepository) RecordSuccess(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE automation_rules
		SET success_count = success_count + 1,
			last_success_at = $1,
			updated_at = $1
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *automationRuleRepository) RecordError(ctx context.Context, id int64, at time.Time, message string) error {
	query := `
		UPDATE automation_rules
		SET error_count = error_count + 1,
			last_error_at = $1,
			last_error_message = $2,
			updated_at = $1
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, at.UTC(), message, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
