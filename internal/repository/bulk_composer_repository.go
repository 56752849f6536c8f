package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
)

type BulkComposerRepository interface {
	Create(ctx context.Context, tx *sql.Tx, content *models.BulkComposerContent) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.BulkComposerContent, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.BulkComposerContent, error)
	ListRetryable(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error)
	MarkAttempt(ctx context.Context, id int64, at time.Time) error
	MarkPublished(ctx context.Context, id int64, platformPostID string) error
	MarkFailed(ctx context.Context, id int64, message string) error
	ResetToScheduled(ctx context.Context, id int64) error
}

type bulkComposerRepository struct {
	db *sql.DB
}

func NewBulkComposerRepository(db *sql.DB) BulkComposerRepository {
	return &bulkComposerRepository{db: db}
}

const bulkComposerColumns = `id, user_id, social_account_id, caption, media_url, schedule_batch_id,
	scheduled_datetime, status, publish_attempts, last_publish_attempt,
	platform_post_id, error_message, created_at, updated_at`

func (r *bulkComposerRepository) scanContent(row interface{ Scan(...any) error }) (*models.BulkComposerContent, error) {
	var c models.BulkComposerContent
	err := row.Scan(&c.ID, &c.UserID, &c.SocialAccountID, &c.Caption, &c.MediaURL, &c.ScheduleBatchID,
		&c.ScheduledDatetime, &c.Status, &c.PublishAttempts, &c.LastPublishAttempt,
		&c.PlatformPostID, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *bulkComposerRepository) Create(ctx context.Context, tx *sql.Tx, content *models.BulkComposerContent) (int64, error) {
	query := `
		INSERT INTO bulk_composer_content (user_id, social_account_id, caption, media_url,
			schedule_batch_id, scheduled_datetime, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	args := []any{content.UserID, content.SocialAccountID, content.Caption, content.MediaURL,
		content.ScheduleBatchID, content.ScheduledDatetime, content.Status}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *bulkComposerRepository) GetByID(ctx context.Context, id int64) (*models.BulkComposerContent, error) {
	query := `SELECT ` + bulkComposerColumns + ` FROM bulk_composer_content WHERE id = $1`

	content, err := r.scanContent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return content, nil
}

func (r *bulkComposerRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error) {
	query := `SELECT ` + bulkComposerColumns + ` FROM bulk_composer_content WHERE user_id = $1 ORDER BY scheduled_datetime`
	return r.list(ctx, query, userID)
}

func (r *bulkComposerRepository) ListDue(ctx context.Context, now time.Time) ([]*models.BulkComposerContent, error) {
	query := `SELECT ` + bulkComposerColumns + `
		FROM bulk_composer_content
		WHERE status = $1 AND scheduled_datetime <= $2`
	return r.list(ctx, query, models.BulkComposerStatusScheduled, now.UTC())
}

// ListRetryable returns failed rows still under the attempt ceiling.
func (r *bulkComposerRepository) ListRetryable(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error) {
	query := `SELECT ` + bulkComposerColumns + `
		FROM bulk_composer_content
		WHERE user_id = $1 AND status = $2 AND publish_attempts < $3`
	return r.list(ctx, query, userID, models.BulkComposerStatusFailed, models.MaxPublishAttempts)
}

func (r *bulkComposerRepository) list(ctx context.Context, query string, args ...any) ([]*models.BulkComposerContent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.BulkComposerContent
	for rows.Next() {
		content, err := r.scanContent(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

func (r *bulkComposerRepository) MarkAttempt(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE bulk_composer_content
		SET publish_attempts = publish_attempts + 1,
			last_publish_attempt = $1,
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

func (r *bulkComposerRepository) MarkPublished(ctx context.Context, id int64, platformPostID string) error {
	query := `
		UPDATE bulk_composer_content
		SET status = $1,
			platform_post_id = $2,
			error_message = '',
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.BulkComposerStatusPublished, platformPostID, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *bulkComposerRepository) MarkFailed(ctx context.Context, id int64, message string) error {
	query := `
		UPDATE bulk_composer_content
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.BulkComposerStatusFailed, message, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *bulkComposerRepository) ResetToScheduled(ctx context.Context, id int64) error {
	query := `
		UPDATE bulk_composer_content
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.BulkComposerStatusScheduled, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
