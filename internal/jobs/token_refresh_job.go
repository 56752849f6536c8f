package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/pkg/utils"
)

// TokenRefreshJob exchanges page tokens that are about to expire for fresh
// long-lived ones. It is driven by cron, not by its own loop.
type TokenRefreshJob struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
	ig  service.InstagramService
	log *slog.Logger
}

func NewTokenRefreshJob(
	cfg config.Config,
	sa repository.SocialAccountRepository,
	ig service.InstagramService,
	log *slog.Logger) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg: cfg,
		sa:  sa,
		ig:  ig,
		log: log,
	}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now().UTC()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := j.sa.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		j.log.Error("list expiring accounts", "error", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refreshAccount(ctx, acc); err != nil {
				j.log.Error("refresh account token", "account_id", acc.ID, "platform", acc.Platform, "error", err)
				// A failed refresh of an already-expired token means the
				// account cannot post anymore.
				if acc.TokenExpiresAt.Valid && acc.TokenExpiresAt.Time.Before(time.Now().UTC()) {
					if err := j.sa.SetConnected(ctx, acc.ID, false); err != nil {
						j.log.Error("mark account disconnected", "account_id", acc.ID, "error", err)
					}
				}
			}
		}(acc)
	}

	wg.Wait()
}

func (j *TokenRefreshJob) refreshAccount(ctx context.Context, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	// Facebook page tokens and Instagram tokens refresh through the same
	// fb_exchange_token grant.
	newToken, expiresAt, err := j.ig.RefreshToken(ctx, accessToken)
	if err != nil {
		return err
	}

	encrypted, err := utils.Encrypt(newToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}
	return j.sa.SetToken(ctx, acc.ID, encrypted, expiresAt)
}
