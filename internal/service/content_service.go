package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/lifecycle"
	"github.com/fairyhunter13/campaign-economics/internal/metrics"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// ContentService moves content items through review and charges their spend
// to both the item and its campaign.
type ContentService struct {
	pool      TxBeginner
	content   ContentRepositoryInterface
	campaigns CampaignRepositoryInterface
}

// NewContentService creates a new ContentService with the given pool and repositories.
func NewContentService(pool *pgxpool.Pool, content ContentRepositoryInterface, campaigns CampaignRepositoryInterface) *ContentService {
	return NewContentServiceWithTxBeginner(pool, content, campaigns)
}

// NewContentServiceWithTxBeginner creates a ContentService with a custom TxBeginner.
// Primarily used for testing.
func NewContentServiceWithTxBeginner(pool TxBeginner, content ContentRepositoryInterface, campaigns CampaignRepositoryInterface) *ContentService {
	return &ContentService{pool: pool, content: content, campaigns: campaigns}
}

// Transition applies a review or publication status change.
func (s *ContentService) Transition(ctx context.Context, id string, to model.ContentStatus) (*model.ContentItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	item, err := s.content.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrContentNotFound, "get content item for update")
	}
	next, err := lifecycle.TransitionContent(*item, to)
	if err != nil {
		return nil, err
	}
	if err := s.content.Update(ctx, tx, &next); err != nil {
		return nil, fmt.Errorf("update content item: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordTransition("content_item", string(to))
	log.Info().Str("content_id", id).Str("from", string(item.Status)).Str("to", string(to)).Msg("content status changed")
	return &next, nil
}

// RecordSpend charges spend to a live content item and to its campaign in one
// transaction. Either budget being exceeded rejects the whole charge.
func (s *ContentService) RecordSpend(ctx context.Context, id string, spend amount.Money) (*model.ContentItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	item, err := s.content.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrContentNotFound, "get content item for update")
	}
	if item.Status != model.ContentStatusLive {
		return nil, fmt.Errorf("%w: status is %s", ErrContentNotLive, item.Status)
	}
	c, err := s.campaigns.GetForUpdate(ctx, tx, item.CampaignID)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for update")
	}
	if err := spendable(c); err != nil {
		return nil, err
	}

	nextItem, err := economics.RecordContentSpend(*item, spend)
	if err != nil {
		return nil, err
	}
	nextCampaign, err := economics.RecordSpend(*c, spend)
	if err != nil {
		return nil, err
	}

	if err := s.content.Update(ctx, tx, &nextItem); err != nil {
		return nil, fmt.Errorf("update content item: %w", err)
	}
	if err := s.campaigns.UpdateLedger(ctx, tx, &nextCampaign); err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordLedgerCents("content_spend", string(spend.Currency()), spend.Cents())
	log.Info().
		Str("content_id", id).
		Str("campaign_id", c.ID).
		Str("amount", spend.String()).
		Str("content_spent", nextItem.Spent.String()).
		Msg("content spend recorded")
	return &nextItem, nil
}
