package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// IdempotencyKeyHeader carries the client key that makes fund additions retry safe.
const IdempotencyKeyHeader = "Idempotency-Key"

// CampaignServiceInterface defines the interface for campaign business logic.
type CampaignServiceInterface interface {
	ValidateDrop(draft *model.DropDraft) (*model.Drop, error)
	Create(ctx context.Context, draft *model.CampaignDraft) (*model.Campaign, error)
	Get(ctx context.Context, id string) (*model.CampaignSummary, error)
	RequiredBudget(ctx context.Context, id string) (*model.BudgetEstimate, error)
	AddFunds(ctx context.Context, id string, funds amount.Money, idempotencyKey string) (*model.FundingResult, error)
	RecordSpend(ctx context.Context, id string, spend amount.Money) (*model.Campaign, error)
	Publish(ctx context.Context, id string) (*model.Campaign, error)
	TransitionCampaign(ctx context.Context, id string, to model.CampaignStatus) (*model.Campaign, error)
}

// CampaignHandler handles HTTP requests for campaigns and drop validation.
type CampaignHandler struct {
	service   CampaignServiceInterface
	validator *validator.Validate
}

// NewCampaignHandler creates a new CampaignHandler with the given service and validator.
func NewCampaignHandler(svc CampaignServiceInterface, v *validator.Validate) *CampaignHandler {
	return &CampaignHandler{service: svc, validator: v}
}

// ValidateDrop handles POST /api/drops/validate.
func (h *CampaignHandler) ValidateDrop(c *fiber.Ctx) error {
	var draft model.DropDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	drop, err := h.service.ValidateDrop(&draft)
	if err != nil {
		return respondError(c, err, "failed to validate drop")
	}
	return c.JSON(drop)
}

// CreateCampaign handles POST /api/campaigns.
func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var draft model.CampaignDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	campaign, err := h.service.Create(c.Context(), &draft)
	if err != nil {
		return respondError(c, err, "failed to create campaign")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("campaign_id", campaign.ID).
		Msg("campaign created via api")
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// GetCampaign handles GET /api/campaigns/:id.
func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	summary, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get campaign")
	}
	return c.JSON(summary)
}

// RequiredBudget handles GET /api/campaigns/:id/required-budget.
func (h *CampaignHandler) RequiredBudget(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	est, err := h.service.RequiredBudget(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to compute required budget")
	}
	return c.JSON(est)
}

// AddFunds handles POST /api/campaigns/:id/funds. The Idempotency-Key header
// is required; a replayed key answers with the stored result.
func (h *CampaignHandler) AddFunds(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	key := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: Idempotency-Key header is required"})
	}
	if len(key) > 128 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: Idempotency-Key exceeds maximum length of 128"})
	}

	var req model.MoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	funds, msg := parseMoney(h.validator, &req)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	result, err := h.service.AddFunds(c.Context(), id, funds, key)
	if err != nil {
		return respondError(c, err, "failed to add funds")
	}
	if result.Replayed {
		c.Set("Idempotent-Replayed", "true")
	}
	return c.JSON(result)
}

// RecordSpend handles POST /api/campaigns/:id/spend.
func (h *CampaignHandler) RecordSpend(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	var req model.MoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	spend, msg := parseMoney(h.validator, &req)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	campaign, err := h.service.RecordSpend(c.Context(), id, spend)
	if err != nil {
		return respondError(c, err, "failed to record spend")
	}
	return c.JSON(campaign)
}

// Publish handles POST /api/campaigns/:id/publish.
func (h *CampaignHandler) Publish(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	campaign, err := h.service.Publish(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to publish campaign")
	}
	return c.JSON(campaign)
}

// Transition handles POST /api/campaigns/:id/transition.
func (h *CampaignHandler) Transition(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	var req model.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}
	to := model.CampaignStatus(strings.TrimSpace(req.Status))
	if !to.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown campaign status " + req.Status})
	}

	campaign, err := h.service.TransitionCampaign(c.Context(), id, to)
	if err != nil {
		return respondError(c, err, "failed to transition campaign")
	}
	return c.JSON(campaign)
}
