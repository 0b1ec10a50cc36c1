package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/service"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

const couponColumns = `id, campaign_id, title, discount_type, discount_value, quantity_total, quantity_claimed`

// CouponRepository provides data access for campaign coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert inserts a coupon within a transaction.
func (r *CouponRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	query := `INSERT INTO coupons (id, campaign_id, title, discount_type, discount_value, quantity_total, quantity_claimed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.CampaignID, c.Title, string(c.DiscountType), c.DiscountValue.String(), c.QuantityTotal, c.QuantityClaimed)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// ListByCampaign returns the campaign's coupons.
// On success, returns an empty slice (not nil) when there are none.
func (r *CouponRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE campaign_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list coupons for campaign %s: %w", campaignID, err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// GetForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`

	c, err := scanCoupon(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", id, err)
	}
	return &c, nil
}

// UpdateClaimed writes the coupon's claimed quantity.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) UpdateClaimed(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	query := `UPDATE coupons SET quantity_claimed = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, c.ID, c.QuantityClaimed)
	if err != nil {
		return fmt.Errorf("update claimed for coupon %s: %w", c.ID, err)
	}
	return nil
}

func scanCoupon(row rowScanner) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.CampaignID,
		&c.Title,
		&c.DiscountType,
		&c.DiscountValue,
		&c.QuantityTotal,
		&c.QuantityClaimed,
	)
	return c, err
}
