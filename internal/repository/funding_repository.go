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

// FundingRepository records applied fund additions keyed by idempotency key.
type FundingRepository struct {
	pool PoolInterface
}

// NewFundingRepository creates a new FundingRepository with the given pool.
func NewFundingRepository(pool *pgxpool.Pool) *FundingRepository {
	return &FundingRepository{pool: pool}
}

// NewFundingRepositoryWithPool creates a new FundingRepository with a custom pool interface.
// This is primarily used for testing.
func NewFundingRepositoryWithPool(pool PoolInterface) *FundingRepository {
	return &FundingRepository{pool: pool}
}

// GetByKey looks up a funding by idempotency key within a transaction.
// Returns nil, nil if the key has not been used.
func (r *FundingRepository) GetByKey(ctx context.Context, tx database.TxQuerier, key string) (*model.Funding, error) {
	query := `SELECT idempotency_key, campaign_id, currency, amount_cents, created_at
		FROM campaign_fundings WHERE idempotency_key = $1`

	var (
		f        model.Funding
		currency string
		cents    int64
	)
	err := tx.QueryRow(ctx, query, key).Scan(&f.IdempotencyKey, &f.CampaignID, &currency, &cents, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get funding %s: %w", key, err)
	}
	if f.Amount, err = moneyFromRow(cents, currency); err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert records a funding within a transaction.
// Returns service.ErrDuplicateFunding if the idempotency key is already used.
func (r *FundingRepository) Insert(ctx context.Context, tx database.TxQuerier, f *model.Funding) error {
	query := `INSERT INTO campaign_fundings (idempotency_key, campaign_id, currency, amount_cents)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, f.IdempotencyKey, f.CampaignID, string(f.Amount.Currency()), f.Amount.Cents())
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrDuplicateFunding
		}
		return fmt.Errorf("insert funding: %w", err)
	}
	return nil
}
