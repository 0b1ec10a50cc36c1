package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Campaigns *CampaignHandler
	Drops     *DropHandler
	Coupons   *CouponHandler
	Content   *ContentHandler
}

// RegisterRoutes mounts the API routes on app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	api.Post("/drops/validate", h.Campaigns.ValidateDrop)
	api.Post("/drops/:id/participants", h.Drops.AcceptParticipant)
	api.Post("/drops/:id/transition", h.Drops.Transition)

	api.Post("/campaigns", h.Campaigns.CreateCampaign)
	api.Get("/campaigns/:id", h.Campaigns.GetCampaign)
	api.Get("/campaigns/:id/required-budget", h.Campaigns.RequiredBudget)
	api.Post("/campaigns/:id/funds", h.Campaigns.AddFunds)
	api.Post("/campaigns/:id/spend", h.Campaigns.RecordSpend)
	api.Post("/campaigns/:id/publish", h.Campaigns.Publish)
	api.Post("/campaigns/:id/transition", h.Campaigns.Transition)

	api.Post("/coupons/:id/claim", h.Coupons.Claim)

	api.Post("/content/:id/transition", h.Content.Transition)
	api.Post("/content/:id/spend", h.Content.RecordSpend)
}
