package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

type AutomationHandler struct {
	rules repository.AutomationRuleRepository
	sa    repository.SocialAccountRepository
}

func NewAutomationHandler(rules repository.AutomationRuleRepository, sa repository.SocialAccountRepository) *AutomationHandler {
	return &AutomationHandler{rules: rules, sa: sa}
}

// ToggleAutoReply creates or updates the account's auto-reply rule and flips
// it on or off.
func (h *AutomationHandler) ToggleAutoReply(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.AutoReplyToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	account, err := h.sa.GetByID(c.Context(), req.SocialAccountID)
	if err != nil || account == nil || account.UserID != userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Social account not found",
		})
	}

	if req.Enabled && len(req.SelectedPostIDs) == 0 && len(req.SelectedPlatformPostIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Select at least one post to monitor",
		})
	}

	actions, err := json.Marshal(transfer.RuleActions{
		AutoReplyEnabled:        req.Enabled,
		ResponseTemplate:        req.ResponseTemplate,
		SelectedPostIDs:         req.SelectedPostIDs,
		SelectedPlatformPostIDs: req.SelectedPlatformPostIDs,
	})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to save rule",
		})
	}

	ruleID, err := h.rules.Upsert(c.Context(), &models.AutomationRule{
		UserID:          userID,
		SocialAccountID: req.SocialAccountID,
		RuleType:        models.RuleTypeAutoReply,
		TriggerType:     models.TriggerTypeNewComment,
		IsActive:        req.Enabled,
		Actions:         actions,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to save rule",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Auto-reply rule saved",
		"rule_id": ruleID,
		"enabled": req.Enabled,
	})
}

// GetAutoReply returns the auto-reply rule for one account, if any.
func (h *AutomationHandler) GetAutoReply(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("social_account_id", 0)

	if accountID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing social_account_id",
		})
	}

	rule, err := h.rules.GetByAccount(c.Context(), userID, int64(accountID), models.RuleTypeAutoReply)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load rule",
		})
	}
	if rule == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"enabled": false})
	}

	return c.Status(fiber.StatusOK).JSON(rule)
}

func (h *AutomationHandler) ListRules(c *fiber.Ctx) error {
	userID := GetUserID(c)

	rules, err := h.rules.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list automation rules",
		})
	}

	return c.Status(fiber.StatusOK).JSON(rules)
}
