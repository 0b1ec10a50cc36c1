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

const contentColumns = `id, campaign_id, content_type, title, url, currency, budget_cents, spent_cents, status`

// ContentRepository provides data access for campaign content items using pgx.
type ContentRepository struct {
	pool PoolInterface
}

// NewContentRepository creates a new ContentRepository with the given pool.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// NewContentRepositoryWithPool creates a new ContentRepository with a custom pool interface.
// This is primarily used for testing.
func NewContentRepositoryWithPool(pool PoolInterface) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// Insert inserts a content item within a transaction.
func (r *ContentRepository) Insert(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error {
	query := `INSERT INTO content_items (id, campaign_id, content_type, title, url, currency, budget_cents, spent_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		item.ID,
		item.CampaignID,
		string(item.Type),
		item.Title,
		item.URL,
		string(item.Budget.Currency()),
		item.Budget.Cents(),
		item.Spent.Cents(),
		string(item.Status),
	)
	if err != nil {
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

// ListByCampaign returns the campaign's content items.
// On success, returns an empty slice (not nil) when there are none.
func (r *ContentRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE campaign_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list content items for campaign %s: %w", campaignID, err)
	}
	defer rows.Close()

	items := []model.ContentItem{}
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content item rows: %w", err)
	}
	return items, nil
}

// GetForUpdate retrieves a content item with a row lock (SELECT FOR UPDATE).
// Returns service.ErrContentNotFound if the item doesn't exist.
func (r *ContentRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1 FOR UPDATE`

	item, err := scanContentItem(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrContentNotFound
		}
		return nil, fmt.Errorf("get content item for update %s: %w", id, err)
	}
	return &item, nil
}

// Update writes the content item's status and spend.
// Must be called within a transaction after locking the row.
func (r *ContentRepository) Update(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error {
	query := `UPDATE content_items SET status = $2, spent_cents = $3 WHERE id = $1`

	_, err := tx.Exec(ctx, query, item.ID, string(item.Status), item.Spent.Cents())
	if err != nil {
		return fmt.Errorf("update content item %s: %w", item.ID, err)
	}
	return nil
}

func scanContentItem(row rowScanner) (model.ContentItem, error) {
	var (
		item          model.ContentItem
		currency      string
		budget, spent int64
	)
	err := row.Scan(
		&item.ID,
		&item.CampaignID,
		&item.Type,
		&item.Title,
		&item.URL,
		&currency,
		&budget,
		&spent,
		&item.Status,
	)
	if err != nil {
		return model.ContentItem{}, err
	}

	if item.Budget, err = moneyFromRow(budget, currency); err != nil {
		return model.ContentItem{}, err
	}
	if item.Spent, err = moneyFromRow(spent, currency); err != nil {
		return model.ContentItem{}, err
	}
	return item, nil
}
