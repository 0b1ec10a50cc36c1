package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// DropServiceInterface defines the interface for drop business logic.
type DropServiceInterface interface {
	AcceptParticipant(ctx context.Context, dropID string) (*model.Drop, error)
	TransitionDrop(ctx context.Context, id string, to model.DropStatus) (*model.Drop, error)
}

// DropHandler handles HTTP requests for drop participation and status.
type DropHandler struct {
	service   DropServiceInterface
	validator *validator.Validate
}

// NewDropHandler creates a new DropHandler with the given service and validator.
func NewDropHandler(svc DropServiceInterface, v *validator.Validate) *DropHandler {
	return &DropHandler{service: svc, validator: v}
}

// AcceptParticipant handles POST /api/drops/:id/participants.
func (h *DropHandler) AcceptParticipant(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	drop, err := h.service.AcceptParticipant(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to accept participant")
	}
	return c.JSON(drop)
}

// Transition handles POST /api/drops/:id/transition.
func (h *DropHandler) Transition(c *fiber.Ctx) error {
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
	to := model.DropStatus(strings.TrimSpace(req.Status))
	if !to.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown drop status " + req.Status})
	}

	drop, err := h.service.TransitionDrop(c.Context(), id, to)
	if err != nil {
		return respondError(c, err, "failed to transition drop")
	}
	return c.JSON(drop)
}
