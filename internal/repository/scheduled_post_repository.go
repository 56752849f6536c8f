package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	UpdateMedia(ctx context.Context, post *models.ScheduledPost) error
	Finalize(ctx context.Context, id int64, status, platformPostID string, executedAt time.Time) error
	DeactivateActive(ctx context.Context, tx *sql.Tx, userID, socialAccountID int64) error
	Deactivate(ctx context.Context, id, userID int64) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, user_id, social_account_id, prompt, post_type, frequency,
	image_url, media_urls, video_url, scheduled_datetime, status, is_active,
	last_executed, platform_post_id, created_at, updated_at`

func (r *scheduledPostRepository) scanPost(row interface{ Scan(...any) error }) (*models.ScheduledPost, error) {
	var p models.ScheduledPost
	err := row.Scan(&p.ID, &p.UserID, &p.SocialAccountID, &p.Prompt, &p.PostType, &p.Frequency,
		&p.ImageURL, &p.MediaURLs, &p.VideoURL, &p.ScheduledDatetime, &p.Status, &p.IsActive,
		&p.LastExecuted, &p.PlatformPostID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *scheduledPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (user_id, social_account_id, prompt, post_type, frequency,
			image_url, media_urls, video_url, scheduled_datetime, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	var err error

	args := []any{post.UserID, post.SocialAccountID, post.Prompt, post.PostType, post.Frequency,
		post.ImageURL, pq.StringArray(post.MediaURLs), post.VideoURL, post.ScheduledDatetime,
		post.Status, post.IsActive}

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

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`

	post, err := r.scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_datetime`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListDue returns active rows whose scheduled time has passed. Due-ness is
// re-evaluated from the store every tick rather than claimed up front.
func (r *scheduledPostRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE is_active = TRUE
		  AND status IN ($1, $2)
		  AND scheduled_datetime <= $3`

	rows, err := r.db.QueryContext(ctx, query,
		models.ScheduledPostStatusScheduled, models.ScheduledPostStatusReady, now.UTC())
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateMedia persists media references the scheduler resolved (uploaded or
// generated) so a later failure does not regenerate them.
func (r *scheduledPostRepository) UpdateMedia(ctx context.Context, post *models.ScheduledPost) error {
	query := `
		UPDATE scheduled_posts
		SET image_url = $1,
			media_urls = $2,
			video_url = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, post.ImageURL, pq.StringArray(post.MediaURLs),
		post.VideoURL, time.Now().UTC(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Finalize moves a row to a terminal status. Terminal rows are always
// deactivated in the same statement so they can never be picked up again.
func (r *scheduledPostRepository) Finalize(ctx context.Context, id int64, status, platformPostID string, executedAt time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			platform_post_id = $2,
			is_active = FALSE,
			last_executed = $3,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, platformPostID, executedAt.UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// DeactivateActive retires any still-active schedule for the account so a new
// one can be inserted. Keeps at most one active schedule per account.
func (r *scheduledPostRepository) DeactivateActive(ctx context.Context, tx *sql.Tx, userID, socialAccountID int64) error {
	query := `
		UPDATE scheduled_posts
		SET is_active = FALSE, updated_at = $1
		WHERE user_id = $2 AND social_account_id = $3
		  AND is_active = TRUE AND status IN ($4, $5)
	`
	var err error
	args := []any{time.Now().UTC(), userID, socialAccountID,
		models.ScheduledPostStatusScheduled, models.ScheduledPostStatusReady}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) Deactivate(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE scheduled_posts
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2 AND user_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
