package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/lifecycle"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/service"
)

// notFound maps each lookup sentinel to its response message.
var notFound = []error{
	service.ErrCampaignNotFound,
	service.ErrDropNotFound,
	service.ErrCouponNotFound,
	service.ErrContentNotFound,
}

// conflicts are state errors: the request was well formed but the entity
// is in the wrong state for it.
var conflicts = []error{
	economics.ErrCampaignClosed,
	service.ErrCampaignNotActive,
	service.ErrDropNotActive,
	service.ErrDropManagedByCampaign,
	service.ErrContentNotLive,
	service.ErrIdempotencyConflict,
}

var badRequests = []error{
	service.ErrInvalidRequest,
	amount.ErrInvalidAmount,
	amount.ErrCurrencyMismatch,
}

// respondError writes the HTTP response for a service error. Unknown errors
// are logged with the request context and returned as 500.
func respondError(c *fiber.Ctx, err error, msg string) error {
	var vs economics.Violations
	if errors.As(err, &vs) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":      "validation failed",
			"violations": vs,
		})
	}

	var illegal *lifecycle.IllegalTransitionError
	if errors.As(err, &illegal) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  illegal.Error(),
			"entity": illegal.Entity,
			"from":   illegal.From,
			"to":     illegal.To,
		})
	}

	var inv *economics.InvariantError
	if errors.As(err, &inv) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     inv.Err.Error(),
			"attempted": inv.Attempted,
			"available": inv.Available,
		})
	}

	if target := firstMatch(err, notFound); target != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": target.Error()})
	}
	if firstMatch(err, conflicts) != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if firstMatch(err, badRequests) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func firstMatch(err error, targets []error) error {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t
		}
	}
	return nil
}

// formatValidationError converts validator errors to client messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "max":
				return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
			case "currency":
				return "invalid request: " + field + " must be a three-letter upper-case code"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// pathID reads a UUID path parameter.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a UUID"})
}

// parseMoney validates a MoneyRequest and converts it. Currency defaults to USD.
func parseMoney(v *validator.Validate, req *model.MoneyRequest) (amount.Money, string) {
	if err := v.Struct(req); err != nil {
		return amount.Money{}, formatValidationError(err)
	}
	currency := amount.CurrencyUSD
	if req.Currency != "" {
		currency = amount.Currency(req.Currency)
	}
	m, err := amount.ParseMoney(strings.TrimSpace(req.Amount), currency)
	if err != nil {
		return amount.Money{}, "invalid request: amount must be a non-negative number with at most two decimals"
	}
	return m, ""
}
