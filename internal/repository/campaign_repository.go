package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/service"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

const campaignColumns = `id, name, status, currency, total_budget_cents, budget_spent_cents,
	reserved_gems_tenths, promoshare_gems_tenths, start_date, end_date, created_at, updated_at`

// CampaignRepository provides data access for campaign rows using pgx.
// Drops, coupons and content items are stored by their own repositories.
type CampaignRepository struct {
	pool PoolInterface
}

// NewCampaignRepository creates a new CampaignRepository with the given pool.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// NewCampaignRepositoryWithPool creates a new CampaignRepository with a custom pool interface.
// This is primarily used for testing.
func NewCampaignRepositoryWithPool(pool PoolInterface) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Insert inserts the campaign row within a transaction and fills in its timestamps.
func (r *CampaignRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	query := `INSERT INTO campaigns (id, name, status, currency, total_budget_cents, budget_spent_cents,
		reserved_gems_tenths, promoshare_gems_tenths, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, query,
		c.ID,
		c.Name,
		string(c.Status),
		string(c.TotalBudget.Currency()),
		c.TotalBudget.Cents(),
		c.BudgetSpent.Cents(),
		c.ReservedGems.Tenths(),
		c.PromoshareContribution.Tenths(),
		c.StartDate,
		c.EndDate,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign row by id.
// Returns nil, nil if the campaign is not found (service layer handles this).
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return c, nil
}

// GetForUpdate retrieves a campaign with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCampaignNotFound if the campaign doesn't exist.
func (r *CampaignRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR UPDATE`

	c, err := scanCampaign(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign for update %s: %w", id, err)
	}
	return c, nil
}

// GetForShare retrieves a campaign with a shared row lock (SELECT FOR SHARE).
// Readers holding it run concurrently; status changes wait until they commit.
// Returns service.ErrCampaignNotFound if the campaign doesn't exist.
func (r *CampaignRepository) GetForShare(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR SHARE`

	c, err := scanCampaign(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign for share %s: %w", id, err)
	}
	return c, nil
}

// UpdateLedger writes the campaign's total budget and spend.
// Must be called within a transaction after locking the row.
func (r *CampaignRepository) UpdateLedger(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	query := `UPDATE campaigns SET total_budget_cents = $2, budget_spent_cents = $3, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, c.ID, c.TotalBudget.Cents(), c.BudgetSpent.Cents())
	if err != nil {
		return fmt.Errorf("update ledger for campaign %s: %w", c.ID, err)
	}
	return nil
}

// UpdateStatus writes the campaign's status and reserved gems.
// Must be called within a transaction after locking the row.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	query := `UPDATE campaigns SET status = $2, reserved_gems_tenths = $3, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, c.ID, string(c.Status), c.ReservedGems.Tenths())
	if err != nil {
		return fmt.Errorf("update status for campaign %s: %w", c.ID, err)
	}
	return nil
}

// ListDueForCompletion returns ids of running campaigns whose end date is before now.
func (r *CampaignRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]string, error) {
	query := `SELECT id FROM campaigns
		WHERE status IN ('active', 'paused') AND end_date IS NOT NULL AND end_date < $1
		ORDER BY end_date LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, batchLimit)
	if err != nil {
		return nil, fmt.Errorf("list campaigns due for completion: %w", err)
	}
	return collectIDs(rows, "campaign")
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var (
		c                                  model.Campaign
		currency                           string
		total, spent, reserved, promoshare int64
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Status,
		&currency,
		&total,
		&spent,
		&reserved,
		&promoshare,
		&c.StartDate,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.TotalBudget, err = moneyFromRow(total, currency); err != nil {
		return nil, err
	}
	if c.BudgetSpent, err = moneyFromRow(spent, currency); err != nil {
		return nil, err
	}
	if c.ReservedGems, err = gemsFromRow(reserved); err != nil {
		return nil, err
	}
	if c.PromoshareContribution, err = gemsFromRow(promoshare); err != nil {
		return nil, err
	}
	return &c, nil
}
