package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CampaignRepositoryInterface defines the interface for campaign data access.
type CampaignRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error)
	GetForShare(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error)
	UpdateLedger(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	UpdateStatus(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	ListDueForCompletion(ctx context.Context, now time.Time) ([]string, error)
}

// DropRepositoryInterface defines the interface for drop data access.
type DropRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, d *model.Drop) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.Drop, error)
	ListByCampaignForUpdate(ctx context.Context, tx database.TxQuerier, campaignID string) ([]model.Drop, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Drop, error)
	Update(ctx context.Context, tx database.TxQuerier, d *model.Drop) error
	ListExpired(ctx context.Context, now time.Time) ([]string, error)
}

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.Coupon, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error)
	UpdateClaimed(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error
}

// ContentRepositoryInterface defines the interface for content item data access.
type ContentRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.ContentItem, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.ContentItem, error)
	Update(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error
}

// FundingRepositoryInterface defines the interface for fund addition records.
type FundingRepositoryInterface interface {
	GetByKey(ctx context.Context, tx database.TxQuerier, key string) (*model.Funding, error)
	Insert(ctx context.Context, tx database.TxQuerier, f *model.Funding) error
}

// Repositories bundles the data access the campaign aggregate spans.
type Repositories struct {
	Campaigns CampaignRepositoryInterface
	Drops     DropRepositoryInterface
	Coupons   CouponRepositoryInterface
	Content   ContentRepositoryInterface
	Fundings  FundingRepositoryInterface
}
