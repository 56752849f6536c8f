package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/pkg/utils"
)

const (
	bulkComposerTickInterval = 5 * time.Minute
	bulkComposerStartupGrace = 10 * time.Second
)

// BulkComposerJob publishes due bulk-composer rows. It wakes less often than
// the due-post loop since batch rows are spaced minutes apart.
type BulkComposerJob struct {
	cfg   config.Config
	bc    repository.BulkComposerRepository
	sa    repository.SocialAccountRepository
	ig    service.InstagramService
	fb    service.FacebookService
	log   *slog.Logger
	tick  time.Duration
	grace time.Duration
}

func NewBulkComposerJob(
	cfg config.Config,
	bc repository.BulkComposerRepository,
	sa repository.SocialAccountRepository,
	ig service.InstagramService,
	fb service.FacebookService,
	log *slog.Logger) *BulkComposerJob {
	return &BulkComposerJob{
		cfg:   cfg,
		bc:    bc,
		sa:    sa,
		ig:    ig,
		fb:    fb,
		log:   log,
		tick:  bulkComposerTickInterval,
		grace: bulkComposerStartupGrace,
	}
}

// SetTickInterval overrides the loop cadence and startup grace, for tests.
func (j *BulkComposerJob) SetTickInterval(tick, grace time.Duration) {
	j.tick = tick
	j.grace = grace
}

// Run blocks until ctx is canceled. The initial grace period lets the rest of
// the process finish starting before the first database sweep.
func (j *BulkComposerJob) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(j.grace):
	}

	j.log.Info("bulk composer scheduler started", "interval", j.tick.String())

	ticker := time.NewTicker(j.tick)
	defer ticker.Stop()

	for {
		j.runTick(ctx)
		select {
		case <-ctx.Done():
			j.log.Info("bulk composer scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (j *BulkComposerJob) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.log.Error("bulk composer tick panicked", "panic", r)
		}
	}()
	j.ProcessDuePosts(ctx)
}

// ProcessDuePosts publishes every due scheduled row. Failures are isolated
// per row.
func (j *BulkComposerJob) ProcessDuePosts(ctx context.Context) {
	due, err := j.bc.ListDue(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error("list due bulk content", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	j.log.Info("publishing due bulk content", "count", len(due))

	for _, content := range due {
		if ctx.Err() != nil {
			return
		}
		j.publish(ctx, content)
	}
}

func (j *BulkComposerJob) publish(ctx context.Context, content *models.BulkComposerContent) {
	// The attempt is recorded before any work so a crash mid-publish still
	// counts against the retry ceiling.
	if err := j.bc.MarkAttempt(ctx, content.ID, time.Now().UTC()); err != nil {
		j.log.Error("mark publish attempt", "content_id", content.ID, "error", err)
		return
	}

	account, err := j.sa.GetByID(ctx, content.SocialAccountID)
	if err != nil {
		j.log.Error("load account for bulk content", "content_id", content.ID, "error", err)
		return
	}
	if account == nil || !account.IsConnected {
		j.markFailed(ctx, content.ID, "Social account not connected")
		return
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(j.cfg.SecretKey))
	if err != nil || accessToken == "" {
		j.markFailed(ctx, content.ID, "No usable access token")
		return
	}

	result, err := j.submit(ctx, content, account, accessToken)
	if err != nil {
		j.markFailed(ctx, content.ID, err.Error())
		return
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "publish rejected by platform"
		}
		j.markFailed(ctx, content.ID, message)
		return
	}

	if err := j.bc.MarkPublished(ctx, content.ID, result.PostID); err != nil {
		j.log.Error("mark content published", "content_id", content.ID, "error", err)
		return
	}
	j.log.Info("bulk content published", "content_id", content.ID, "platform_post_id", result.PostID)
}

func (j *BulkComposerJob) submit(ctx context.Context, content *models.BulkComposerContent, account *models.SocialAccount, accessToken string) (*transfer.PostResult, error) {
	switch account.Platform {
	case models.PlatformInstagram:
		if content.MediaURL == "" {
			return nil, fmt.Errorf("instagram publish requires media")
		}
		return j.ig.CreatePost(ctx, account.PlatformUserID, accessToken, content.Caption, content.MediaURL)
	case models.PlatformFacebook:
		if content.MediaURL != "" {
			return j.fb.PostPhoto(ctx, account.PlatformUserID, accessToken, content.Caption, content.MediaURL)
		}
		return j.fb.PostText(ctx, account.PlatformUserID, accessToken, content.Caption)
	default:
		return nil, fmt.Errorf("unsupported platform %s", account.Platform)
	}
}

func (j *BulkComposerJob) markFailed(ctx context.Context, id int64, message string) {
	j.log.Error("bulk content failed", "content_id", id, "reason", message)
	if err := j.bc.MarkFailed(ctx, id, message); err != nil {
		j.log.Error("mark content failed", "content_id", id, "error", err)
	}
}

// RetryFailed puts a user's retryable failed rows back on the schedule. Rows
// at the attempt ceiling stay failed.
func (j *BulkComposerJob) RetryFailed(ctx context.Context, userID int64) (int, error) {
	retryable, err := j.bc.ListRetryable(ctx, userID)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, content := range retryable {
		if err := j.bc.ResetToScheduled(ctx, content.ID); err != nil {
			j.log.Error("reset content to scheduled", "content_id", content.ID, "error", err)
			continue
		}
		reset++
	}
	if reset > 0 {
		j.log.Info("failed bulk content rescheduled", "user_id", userID, "count", reset)
	}
	return reset, nil
}
