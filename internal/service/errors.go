package service

import "errors"

var (
	// ErrCampaignNotFound is returned when a campaign cannot be found
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrDropNotFound is returned when a drop cannot be found
	ErrDropNotFound = errors.New("drop not found")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrContentNotFound is returned when a content item cannot be found
	ErrContentNotFound = errors.New("content item not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateFunding is returned by the funding store when an idempotency key is already used
	ErrDuplicateFunding = errors.New("funding idempotency key already used")

	// ErrIdempotencyConflict is returned when an idempotency key is replayed with a different request
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

	// ErrCampaignNotActive is returned when an operation needs a running campaign
	ErrCampaignNotActive = errors.New("campaign is not active")

	// ErrDropNotActive is returned when a participant is offered to a drop that is not accepting entries
	ErrDropNotActive = errors.New("drop is not accepting participants")

	// ErrDropManagedByCampaign is returned when a status change is reserved for campaign publish or participant flow
	ErrDropManagedByCampaign = errors.New("drop status is managed by its campaign")

	// ErrContentNotLive is returned when spend is recorded against content that is not live
	ErrContentNotLive = errors.New("content item is not live")
)
