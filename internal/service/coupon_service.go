package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/metrics"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// CouponService provides business logic for coupon claims.
type CouponService struct {
	pool      TxBeginner
	coupons   CouponRepositoryInterface
	campaigns CampaignRepositoryInterface
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, coupons CouponRepositoryInterface, campaigns CampaignRepositoryInterface) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, coupons, campaigns)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, coupons CouponRepositoryInterface, campaigns CampaignRepositoryInterface) *CouponService {
	return &CouponService{
		pool:      pool,
		coupons:   coupons,
		campaigns: campaigns,
	}
}

// Claim atomically takes one coupon from an active campaign's stock.
// Uses SELECT FOR UPDATE to lock the coupon row during the transaction.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCampaignNotActive if the campaign is not active
//   - *economics.InvariantError wrapping economics.ErrQuantityExceeded if none remain
func (s *CouponService) Claim(ctx context.Context, couponID string) (*model.Coupon, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	coupon, err := s.coupons.GetForUpdate(ctx, tx, couponID)
	if err != nil {
		metrics.CouponClaims.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, lockError(err, ErrCouponNotFound, "get coupon for update")
	}

	// 2. Only running campaigns hand out coupons; the shared lock holds off a pause until commit
	c, err := s.campaigns.GetForShare(ctx, tx, coupon.CampaignID)
	if err != nil {
		metrics.CouponClaims.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for share")
	}
	if c.Status != model.CampaignStatusActive {
		metrics.CouponClaims.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, fmt.Errorf("%w: status is %s", ErrCampaignNotActive, c.Status)
	}

	// 3. Check and take stock
	claimed, err := economics.ClaimCoupon(*coupon)
	if err != nil {
		metrics.CouponClaims.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, err
	}
	if err := s.coupons.UpdateClaimed(ctx, tx, &claimed); err != nil {
		metrics.CouponClaims.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, fmt.Errorf("update claimed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		metrics.CouponClaims.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.CouponClaims.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info().
		Str("coupon_id", couponID).
		Int("remaining", claimed.Remaining()).
		Msg("coupon claimed")
	return &claimed, nil
}
