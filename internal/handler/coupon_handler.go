package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Claim(ctx context.Context, couponID string) (*model.Coupon, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service CouponServiceInterface
}

// NewCouponHandler creates a new CouponHandler with the given service.
func NewCouponHandler(svc CouponServiceInterface) *CouponHandler {
	return &CouponHandler{service: svc}
}

// Claim handles POST /api/coupons/:id/claim requests to take one coupon.
func (h *CouponHandler) Claim(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	coupon, err := h.service.Claim(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to claim coupon")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("coupon_id", id).
		Int("remaining", coupon.Remaining()).
		Msg("coupon claimed successfully")
	return c.JSON(coupon)
}
