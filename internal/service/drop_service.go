package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/lifecycle"
	"github.com/fairyhunter13/campaign-economics/internal/metrics"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// DropService owns the participant counter and the drop status changes that
// happen after publish.
type DropService struct {
	pool      TxBeginner
	drops     DropRepositoryInterface
	campaigns CampaignRepositoryInterface
	now       func() time.Time
}

// NewDropService creates a new DropService with the given pool and repositories.
func NewDropService(pool *pgxpool.Pool, drops DropRepositoryInterface, campaigns CampaignRepositoryInterface) *DropService {
	return NewDropServiceWithTxBeginner(pool, drops, campaigns)
}

// NewDropServiceWithTxBeginner creates a DropService with a custom TxBeginner.
// Primarily used for testing.
func NewDropServiceWithTxBeginner(pool TxBeginner, drops DropRepositoryInterface, campaigns CampaignRepositoryInterface) *DropService {
	return &DropService{
		pool:      pool,
		drops:     drops,
		campaigns: campaigns,
		now:       time.Now,
	}
}

// AcceptParticipant admits one participant to an active drop. The drop moves
// to filled in the same transaction when the last slot is taken.
// Returns:
//   - ErrDropNotFound if the drop doesn't exist
//   - ErrDropNotActive if the drop is not active or its deadline passed
//   - ErrCampaignNotActive if the owning campaign is paused or completed
//   - *economics.InvariantError wrapping economics.ErrQuantityExceeded if no slot is left
func (s *DropService) AcceptParticipant(ctx context.Context, dropID string) (*model.Drop, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the drop row (SELECT FOR UPDATE)
	d, err := s.drops.GetForUpdate(ctx, tx, dropID)
	if err != nil {
		return nil, lockError(err, ErrDropNotFound, "get drop for update")
	}

	// 2. Check the drop is open
	if d.Status != model.DropStatusActive {
		return nil, fmt.Errorf("%w: status is %s", ErrDropNotActive, d.Status)
	}
	if d.PastDeadline(s.now()) {
		return nil, fmt.Errorf("%w: deadline passed", ErrDropNotActive)
	}
	if d.IsFull() {
		return nil, &economics.InvariantError{
			Err:       economics.ErrQuantityExceeded,
			Attempted: "1",
			Available: "0",
		}
	}

	// 3. Check the campaign is running; the shared lock holds off a pause until commit
	c, err := s.campaigns.GetForShare(ctx, tx, d.CampaignID)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for share")
	}
	if c.Status != model.CampaignStatusActive {
		return nil, fmt.Errorf("%w: status is %s", ErrCampaignNotActive, c.Status)
	}

	// 4. Increment, filling the drop on the last slot
	next := *d
	next.CurrentParticipants++
	if next.IsFull() {
		next, err = lifecycle.TransitionDrop(next, model.DropStatusFilled)
		if err != nil {
			return nil, err
		}
	}

	if err := s.drops.Update(ctx, tx, &next); err != nil {
		return nil, fmt.Errorf("update drop: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.ParticipantsAccepted.Inc()
	event := log.Info().
		Str("drop_id", dropID).
		Int("participants", next.CurrentParticipants).
		Int("max_participants", next.MaxParticipants)
	if next.Status == model.DropStatusFilled {
		metrics.RecordTransition("drop", string(model.DropStatusFilled))
		event.Msg("participant accepted, drop filled")
	} else {
		event.Msg("participant accepted")
	}
	return &next, nil
}

// TransitionDrop applies an operator status change. Only cancellation is
// operator driven; activation, filling and expiry are not.
func (s *DropService) TransitionDrop(ctx context.Context, id string, to model.DropStatus) (*model.Drop, error) {
	switch to {
	case model.DropStatusActive, model.DropStatusFilled, model.DropStatusExpired:
		return nil, fmt.Errorf("%w: %s", ErrDropManagedByCampaign, to)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	d, err := s.drops.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrDropNotFound, "get drop for update")
	}

	next, err := lifecycle.TransitionDrop(*d, to)
	if err != nil {
		return nil, err
	}
	if err := s.drops.Update(ctx, tx, &next); err != nil {
		return nil, fmt.Errorf("update drop: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordTransition("drop", string(to))
	log.Info().Str("drop_id", id).Str("from", string(d.Status)).Str("to", string(to)).Msg("drop status changed")
	return &next, nil
}

// ExpireDue expires every active drop whose deadline is before now.
// Returns how many were expired; failures are joined and do not stop the sweep.
func (s *DropService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.drops.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired drops: %w", err)
	}

	var errs []error
	expired := 0
	for _, id := range ids {
		ok, err := s.expire(ctx, id, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("expire drop %s: %w", id, err))
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// expire re-checks the drop under lock; a drop filled or cancelled since it
// was listed is left alone.
func (s *DropService) expire(ctx context.Context, id string, now time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	d, err := s.drops.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, ErrDropNotFound) {
			return false, nil
		}
		return false, err
	}
	if !lifecycle.CanTransitionDrop(d.Status, model.DropStatusExpired) || !d.PastDeadline(now) {
		return false, nil
	}

	next, err := lifecycle.TransitionDrop(*d, model.DropStatusExpired)
	if err != nil {
		return false, err
	}
	if err := s.drops.Update(ctx, tx, &next); err != nil {
		return false, fmt.Errorf("update drop: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordTransition("drop", string(model.DropStatusExpired))
	log.Info().
		Str("drop_id", id).
		Int("participants", d.CurrentParticipants).
		Int("max_participants", d.MaxParticipants).
		Msg("drop expired")
	return true, nil
}
