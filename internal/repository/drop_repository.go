package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/service"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

const dropColumns = `id, campaign_id, title, description, drop_type, difficulty, requires_proof, is_paid_entry,
	max_participants, current_participants, gem_reward_base_tenths, gem_pool_total_tenths,
	gem_pool_remaining_tenths, key_cost, follower_threshold, deadline_days, deadline, status, created_at`

// DropRepository provides data access for drops using pgx.
type DropRepository struct {
	pool PoolInterface
}

// NewDropRepository creates a new DropRepository with the given pool.
func NewDropRepository(pool *pgxpool.Pool) *DropRepository {
	return &DropRepository{pool: pool}
}

// NewDropRepositoryWithPool creates a new DropRepository with a custom pool interface.
// This is primarily used for testing.
func NewDropRepositoryWithPool(pool PoolInterface) *DropRepository {
	return &DropRepository{pool: pool}
}

// Insert inserts a drop within a transaction.
func (r *DropRepository) Insert(ctx context.Context, tx database.TxQuerier, d *model.Drop) error {
	query := `INSERT INTO drops (id, campaign_id, title, description, drop_type, difficulty, requires_proof,
		is_paid_entry, max_participants, current_participants, gem_reward_base_tenths, gem_pool_total_tenths,
		gem_pool_remaining_tenths, key_cost, follower_threshold, deadline_days, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		d.ID,
		d.CampaignID,
		d.Title,
		d.Description,
		string(d.DropType),
		string(d.Difficulty),
		d.RequiresProof,
		d.IsPaidEntry,
		d.MaxParticipants,
		d.CurrentParticipants,
		d.GemRewardBase.Tenths(),
		d.GemPoolTotal.Tenths(),
		d.GemPoolRemaining.Tenths(),
		d.KeyCost.Count(),
		d.FollowerThreshold,
		d.DeadlineDays,
		d.Deadline,
		string(d.Status),
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert drop: %w", err)
	}
	return nil
}

// ListByCampaign returns the campaign's drops in creation order.
// On success, returns an empty slice (not nil) when the campaign has no drops.
func (r *DropRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM drops WHERE campaign_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list drops for campaign %s: %w", campaignID, err)
	}
	return collectDrops(rows)
}

// ListByCampaignForUpdate is ListByCampaign with every returned row locked.
func (r *DropRepository) ListByCampaignForUpdate(ctx context.Context, tx database.TxQuerier, campaignID string) ([]model.Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM drops WHERE campaign_id = $1 ORDER BY created_at, id FOR UPDATE`

	rows, err := tx.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list drops for update for campaign %s: %w", campaignID, err)
	}
	return collectDrops(rows)
}

// GetForUpdate retrieves a drop with a row lock (SELECT FOR UPDATE).
// Returns service.ErrDropNotFound if the drop doesn't exist.
func (r *DropRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM drops WHERE id = $1 FOR UPDATE`

	d, err := scanDrop(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrDropNotFound
		}
		return nil, fmt.Errorf("get drop for update %s: %w", id, err)
	}
	return &d, nil
}

// Update writes the mutable drop fields: status, participants, remaining pool and deadline.
// Must be called within a transaction after locking the row.
func (r *DropRepository) Update(ctx context.Context, tx database.TxQuerier, d *model.Drop) error {
	query := `UPDATE drops SET status = $2, current_participants = $3, gem_pool_remaining_tenths = $4, deadline = $5
		WHERE id = $1`

	_, err := tx.Exec(ctx, query, d.ID, string(d.Status), d.CurrentParticipants, d.GemPoolRemaining.Tenths(), d.Deadline)
	if err != nil {
		return fmt.Errorf("update drop %s: %w", d.ID, err)
	}
	return nil
}

// ListExpired returns ids of active drops whose deadline is before now.
func (r *DropRepository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	query := `SELECT id FROM drops WHERE status = 'active' AND deadline IS NOT NULL AND deadline < $1
		ORDER BY deadline LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, batchLimit)
	if err != nil {
		return nil, fmt.Errorf("list expired drops: %w", err)
	}
	return collectIDs(rows, "drop")
}

func collectDrops(rows pgx.Rows) ([]model.Drop, error) {
	defer rows.Close()

	drops := []model.Drop{}
	for rows.Next() {
		d, err := scanDrop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drop: %w", err)
		}
		drops = append(drops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drop rows: %w", err)
	}
	return drops, nil
}

func scanDrop(row rowScanner) (model.Drop, error) {
	var (
		d                             model.Drop
		reward, pool, remaining, keys int64
	)
	err := row.Scan(
		&d.ID,
		&d.CampaignID,
		&d.Title,
		&d.Description,
		&d.DropType,
		&d.Difficulty,
		&d.RequiresProof,
		&d.IsPaidEntry,
		&d.MaxParticipants,
		&d.CurrentParticipants,
		&reward,
		&pool,
		&remaining,
		&keys,
		&d.FollowerThreshold,
		&d.DeadlineDays,
		&d.Deadline,
		&d.Status,
		&d.CreatedAt,
	)
	if err != nil {
		return model.Drop{}, err
	}

	if d.GemRewardBase, err = gemsFromRow(reward); err != nil {
		return model.Drop{}, err
	}
	if d.GemPoolTotal, err = gemsFromRow(pool); err != nil {
		return model.Drop{}, err
	}
	if d.GemPoolRemaining, err = gemsFromRow(remaining); err != nil {
		return model.Drop{}, err
	}
	if d.KeyCost, err = amount.NewKeys(keys); err != nil {
		return model.Drop{}, fmt.Errorf("decode key cost %d: %w", keys, err)
	}
	return d, nil
}
