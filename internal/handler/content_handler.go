package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// ContentServiceInterface defines the interface for content item business logic.
type ContentServiceInterface interface {
	Transition(ctx context.Context, id string, to model.ContentStatus) (*model.ContentItem, error)
	RecordSpend(ctx context.Context, id string, spend amount.Money) (*model.ContentItem, error)
}

// ContentHandler handles HTTP requests for content review and spend.
type ContentHandler struct {
	service   ContentServiceInterface
	validator *validator.Validate
}

// NewContentHandler creates a new ContentHandler with the given service and validator.
func NewContentHandler(svc ContentServiceInterface, v *validator.Validate) *ContentHandler {
	return &ContentHandler{service: svc, validator: v}
}

// Transition handles POST /api/content/:id/transition.
func (h *ContentHandler) Transition(c *fiber.Ctx) error {
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
	to := model.ContentStatus(strings.TrimSpace(req.Status))
	if !to.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown content status " + req.Status})
	}

	item, err := h.service.Transition(c.Context(), id, to)
	if err != nil {
		return respondError(c, err, "failed to transition content item")
	}
	return c.JSON(item)
}

// RecordSpend handles POST /api/content/:id/spend.
func (h *ContentHandler) RecordSpend(c *fiber.Ctx) error {
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

	item, err := h.service.RecordSpend(c.Context(), id, spend)
	if err != nil {
		return respondError(c, err, "failed to record content spend")
	}
	return c.JSON(item)
}
