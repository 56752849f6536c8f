package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/pkg/utils"
)

const (
	minCarouselImages = 3
	maxCarouselImages = 5

	// Instagram's caption ceiling.
	maxCaptionLength = 2200
)

// ScheduledPostJob is the due-post loop. Every tick it queries active rows
// whose time has passed, resolves missing media through the generators, and
// makes exactly one delivery attempt per row: whatever happens, the row ends
// up terminal (posted or failed) unless its account is disconnected, in which
// case it is left untouched for the next tick.
type ScheduledPostJob struct {
	cfg       config.Config
	sp        repository.ScheduledPostRepository
	sa        repository.SocialAccountRepository
	ig        service.InstagramService
	fb        service.FacebookService
	groq      service.GroqService
	stability service.StabilityService
	r2        service.R2Service
	autoReply *AutoReplyJob
	log       *slog.Logger
	tick      time.Duration
}

func NewScheduledPostJob(
	cfg config.Config,
	sp repository.ScheduledPostRepository,
	sa repository.SocialAccountRepository,
	ig service.InstagramService,
	fb service.FacebookService,
	groq service.GroqService,
	stability service.StabilityService,
	r2 service.R2Service,
	autoReply *AutoReplyJob,
	log *slog.Logger) *ScheduledPostJob {
	return &ScheduledPostJob{
		cfg:       cfg,
		sp:        sp,
		sa:        sa,
		ig:        ig,
		fb:        fb,
		groq:      groq,
		stability: stability,
		r2:        r2,
		autoReply: autoReply,
		log:       log,
		tick:      60 * time.Second,
	}
}

// SetTickInterval overrides the default 60-second poll interval.
func (j *ScheduledPostJob) SetTickInterval(d time.Duration) {
	j.tick = d
}

// Run blocks until ctx is cancelled. The auto-reply engine shares this
// loop's cadence: it runs once after every due-post pass.
func (j *ScheduledPostJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runTick(ctx)
		}
	}
}

func (j *ScheduledPostJob) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.log.Error("scheduler tick panicked", "panic", r)
		}
	}()

	j.ProcessDuePosts(ctx)
	if j.autoReply != nil {
		j.autoReply.ProcessAll(ctx)
	}
}

// ProcessDuePosts runs a single due-post pass.
func (j *ScheduledPostJob) ProcessDuePosts(ctx context.Context) {
	now := time.Now().UTC()

	duePosts, err := j.sp.ListDue(ctx, now)
	if err != nil {
		j.log.Error("list due posts", "error", err)
		return
	}
	if len(duePosts) == 0 {
		return
	}
	j.log.Info("found scheduled posts due for execution", "count", len(duePosts))

	for _, post := range duePosts {
		if ctx.Err() != nil {
			return
		}
		if err := j.executePost(ctx, post); err != nil {
			j.log.Error("execute scheduled post", "post_id", post.ID, "error", err)
		}
	}
}

func (j *ScheduledPostJob) executePost(ctx context.Context, post *models.ScheduledPost) error {
	if post.Prompt == "" {
		j.log.Error("scheduled post missing caption", "post_id", post.ID)
		return j.fail(ctx, post)
	}

	if err := j.resolveMedia(ctx, post); err != nil {
		j.log.Error("media resolution failed", "post_id", post.ID, "post_type", post.PostType, "error", err)
		return j.fail(ctx, post)
	}

	account, err := j.sa.GetByID(ctx, post.SocialAccountID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsConnected {
		// Not terminal: the account may reconnect before the next tick.
		j.log.Warn("social account missing or not connected, skipping", "post_id", post.ID, "account_id", post.SocialAccountID)
		return nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(j.cfg.SecretKey))
	if err != nil || accessToken == "" {
		j.log.Error("missing access token for account", "account_id", account.ID)
		return j.fail(ctx, post)
	}

	caption := j.resolveCaption(ctx, post.Prompt)

	result, err := j.submitPost(ctx, post, account, accessToken, caption)
	if err != nil || result == nil || !result.Success {
		if err != nil {
			j.log.Error("platform posting error", "post_id", post.ID, "error", err)
		}
		return j.fail(ctx, post)
	}

	j.log.Info("scheduled post published", "post_id", post.ID, "platform_post_id", result.PostID)
	return j.sp.Finalize(ctx, post.ID, models.ScheduledPostStatusPosted, result.PostID, time.Now().UTC())
}

func (j *ScheduledPostJob) fail(ctx context.Context, post *models.ScheduledPost) error {
	return j.sp.Finalize(ctx, post.ID, models.ScheduledPostStatusFailed, "", time.Now().UTC())
}

// resolveMedia makes sure the post carries the media its type requires,
// generating and uploading what is missing. Resolved references are persisted
// immediately so a later submit failure does not regenerate them.
func (j *ScheduledPostJob) resolveMedia(ctx context.Context, post *models.ScheduledPost) error {
	switch post.PostType {
	case models.PostTypePhoto:
		if isBase64Image(post.ImageURL) {
			data, err := base64.StdEncoding.DecodeString(extractBase64(post.ImageURL))
			if err != nil {
				return fmt.Errorf("decoding embedded image: %w", err)
			}
			uploadedURL, err := j.r2.UploadImage(ctx, data, "instagram")
			if err != nil {
				return fmt.Errorf("uploading embedded image: %w", err)
			}
			post.ImageURL = uploadedURL
			if err := j.sp.UpdateMedia(ctx, post); err != nil {
				return err
			}
		}
		if post.ImageURL == "" {
			uploadedURL, err := j.generateAndUploadImage(ctx, post.Prompt)
			if err != nil {
				return err
			}
			post.ImageURL = uploadedURL
			if err := j.sp.UpdateMedia(ctx, post); err != nil {
				return err
			}
		}

	case models.PostTypeCarousel:
		if len(post.MediaURLs) == 0 {
			urls := j.generateCarouselImages(ctx, post.Prompt)
			if len(urls) < minCarouselImages {
				return fmt.Errorf("generated %d of %d required carousel images", len(urls), minCarouselImages)
			}
			post.MediaURLs = urls
			if err := j.sp.UpdateMedia(ctx, post); err != nil {
				return err
			}
		}

	case models.PostTypeReel:
		// Video generation is not implemented; a reel without a video
		// reference cannot be recovered.
		if post.VideoURL == "" {
			return fmt.Errorf("reel post has no video URL and video generation is not implemented")
		}

	case models.PostTypeText:
		// Nothing to resolve.

	default:
		return fmt.Errorf("unknown post type: %s", post.PostType)
	}

	return nil
}

func (j *ScheduledPostJob) generateAndUploadImage(ctx context.Context, prompt string) (string, error) {
	image := j.stability.GenerateImage(ctx, prompt, "feed")
	if !image.Success {
		return "", fmt.Errorf("image generation failed: %s", image.Error)
	}

	data, err := base64.StdEncoding.DecodeString(image.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("decoding generated image: %w", err)
	}

	uploadedURL, err := j.r2.UploadImage(ctx, data, "instagram")
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	return uploadedURL, nil
}

// generateCarouselImages produces 3-5 images, scaled to prompt length, using
// prompt variation suffixes for diversity. Individual failures are tolerated
// as long as at least three images come out.
func (j *ScheduledPostJob) generateCarouselImages(ctx context.Context, prompt string) []string {
	numImages := len(prompt)/100 + minCarouselImages
	if numImages > maxCarouselImages {
		numImages = maxCarouselImages
	}

	var urls []string
	for i := 0; i < numImages; i++ {
		variationPrompt := fmt.Sprintf("%s - variation %d", prompt, i+1)
		uploadedURL, err := j.generateAndUploadImage(ctx, variationPrompt)
		if err != nil {
			j.log.Error("carousel image generation failed", "variation", i+1, "error", err)
			continue
		}
		urls = append(urls, uploadedURL)
	}
	return urls
}

// resolveCaption turns the stored prompt into the caption that is published.
// Generation failures degrade to the prompt itself, never block the post.
func (j *ScheduledPostJob) resolveCaption(ctx context.Context, prompt string) string {
	result := j.groq.GenerateCaption(ctx, prompt, maxCaptionLength)
	if !result.Success || result.Content == "" {
		j.log.Warn("caption generation failed, posting the prompt as-is", "error", result.Error)
		return prompt
	}
	return result.Content
}

func (j *ScheduledPostJob) submitPost(ctx context.Context, post *models.ScheduledPost, account *models.SocialAccount, accessToken, caption string) (*transfer.PostResult, error) {
	switch post.PostType {
	case models.PostTypePhoto:
		if account.Platform == models.PlatformFacebook {
			return j.fb.PostPhoto(ctx, account.PlatformUserID, accessToken, caption, post.ImageURL)
		}
		return j.ig.CreatePost(ctx, account.PlatformUserID, accessToken, caption, post.ImageURL)
	case models.PostTypeCarousel:
		return j.ig.CreateCarouselPost(ctx, account.PlatformUserID, accessToken, caption, post.MediaURLs)
	case models.PostTypeReel:
		return j.ig.CreateReelPost(ctx, account.PlatformUserID, accessToken, caption, post.VideoURL)
	case models.PostTypeText:
		if account.Platform != models.PlatformFacebook {
			return nil, fmt.Errorf("text posts are only supported on Facebook pages")
		}
		return j.fb.PostText(ctx, account.PlatformUserID, accessToken, caption)
	default:
		return nil, fmt.Errorf("unknown post type: %s", post.PostType)
	}
}

func isBase64Image(data string) bool {
	return strings.HasPrefix(data, "data:image/")
}

func extractBase64(data string) string {
	if idx := strings.Index(data, ","); idx >= 0 {
		return data[idx+1:]
	}
	return data
}
