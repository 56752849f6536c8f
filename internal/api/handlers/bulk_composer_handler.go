package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/jobs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

type BulkComposerHandler struct {
	db    *sql.DB
	bc    repository.BulkComposerRepository
	sa    repository.SocialAccountRepository
	drive service.DriveService
	r2    service.R2Service
	job   *jobs.BulkComposerJob
}

func NewBulkComposerHandler(
	db *sql.DB,
	bc repository.BulkComposerRepository,
	sa repository.SocialAccountRepository,
	drive service.DriveService,
	r2 service.R2Service,
	job *jobs.BulkComposerJob) *BulkComposerHandler {
	return &BulkComposerHandler{db: db, bc: bc, sa: sa, drive: drive, r2: r2, job: job}
}

// Import creates one batch of scheduled rows. Rows referencing a Drive file
// get their media copied to R2 first so the platform can fetch it later.
func (h *BulkComposerHandler) Import(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.BulkComposerImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if len(req.Rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No rows to import",
		})
	}

	account, err := h.sa.GetByID(c.Context(), req.SocialAccountID)
	if err != nil || account == nil || account.UserID != userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Social account not found",
		})
	}

	batchID, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create batch",
		})
	}

	rows := make([]*models.BulkComposerContent, 0, len(req.Rows))
	for i, row := range req.Rows {
		scheduledAt, err := time.Parse(time.RFC3339, row.ScheduledTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("row %d: scheduled_time must be RFC 3339", i),
			})
		}

		mediaURL := row.MediaURL
		if mediaURL == "" && row.DriveFileID != "" {
			data, _, err := h.drive.Download(c.Context(), row.DriveFileID)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("row %d: unable to download drive file", i),
				})
			}
			mediaURL, err = h.r2.UploadImage(c.Context(), data, "bulk")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fmt.Sprintf("row %d: unable to store media", i),
				})
			}
		}

		rows = append(rows, &models.BulkComposerContent{
			UserID:            userID,
			SocialAccountID:   req.SocialAccountID,
			Caption:           row.Caption,
			MediaURL:          mediaURL,
			ScheduleBatchID:   batchID,
			ScheduledDatetime: scheduledAt.UTC(),
			Status:            models.BulkComposerStatusScheduled,
		})
	}

	tx, err := h.db.BeginTx(c.Context(), nil)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to import batch",
		})
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := h.bc.Create(c.Context(), tx, row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to import batch",
			})
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to import batch",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "Batch imported successfully",
		"batch_id": batchID,
		"count":    len(rows),
	})
}

func (h *BulkComposerHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if contentID != 0 {
		content, err := h.bc.GetByID(c.Context(), int64(contentID))
		if err != nil || content == nil || content.UserID != userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to find bulk content",
			})
		}
		return c.Status(fiber.StatusOK).JSON(content)
	}

	contents, err := h.bc.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list bulk content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(contents)
}

// ListDriveFiles exposes the Drive media available for import.
func (h *BulkComposerHandler) ListDriveFiles(c *fiber.Ctx) error {
	folderID := c.Query("folder_id")

	files, err := h.drive.ListMediaFiles(c.Context(), folderID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to list drive files",
		})
	}

	return c.Status(fiber.StatusOK).JSON(files)
}

// Retry puts the caller's retryable failed rows back on the schedule.
func (h *BulkComposerHandler) Retry(c *fiber.Ctx) error {
	userID := GetUserID(c)

	count, err := h.job.RetryFailed(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to retry failed content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Retry scheduled",
		"count":   count,
	})
}
