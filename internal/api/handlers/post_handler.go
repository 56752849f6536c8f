package handlers

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/jobs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

type PostHandler struct {
	db *sql.DB
	sp repository.ScheduledPostRepository
	sa repository.SocialAccountRepository
}

func NewPostHandler(db *sql.DB, sp repository.ScheduledPostRepository, sa repository.SocialAccountRepository) *PostHandler {
	return &PostHandler{db: db, sp: sp, sa: sa}
}

// SchedulePost registers a prompt-driven post. Only one active schedule per
// account is allowed, so any previous active one is deactivated in the same
// transaction.
func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.SchedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prompt is required",
		})
	}

	switch req.PostType {
	case models.PostTypePhoto, models.PostTypeCarousel, models.PostTypeReel, models.PostTypeText:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown post type",
		})
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = models.FrequencyOnce
	}

	requested, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "scheduled_time must be RFC 3339",
		})
	}

	account, err := h.sa.GetByID(c.Context(), req.SocialAccountID)
	if err != nil || account == nil || account.UserID != userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Social account not found",
		})
	}

	scheduledAt := jobs.NextOccurrence(requested.UTC(), frequency, time.Now().UTC())

	tx, err := h.db.BeginTx(c.Context(), nil)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}
	defer tx.Rollback()

	if err := h.sp.DeactivateActive(c.Context(), tx, userID, req.SocialAccountID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}

	postID, err := h.sp.Create(c.Context(), tx, &models.ScheduledPost{
		UserID:            userID,
		SocialAccountID:   req.SocialAccountID,
		Prompt:            req.Prompt,
		PostType:          req.PostType,
		Frequency:         frequency,
		ImageURL:          req.ImageURL,
		MediaURLs:         pq.StringArray(req.MediaURLs),
		VideoURL:          req.VideoURL,
		ScheduledDatetime: scheduledAt,
		Status:            models.ScheduledPostStatusScheduled,
		IsActive:          true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}

	if err := tx.Commit(); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Post scheduled successfully",
		"post_id":      postID,
		"scheduled_at": scheduledAt,
	})
}

func (h *PostHandler) ListScheduledPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.sp.GetByID(c.Context(), int64(postID))
		if err != nil || post == nil || post.UserID != userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to find scheduled post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.sp.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list scheduled posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) CancelScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing post id",
		})
	}

	if err := h.sp.Deactivate(c.Context(), int64(postID), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to cancel scheduled post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
