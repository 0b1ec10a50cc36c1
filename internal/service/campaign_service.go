package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/lifecycle"
	"github.com/fairyhunter13/campaign-economics/internal/metrics"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// CampaignService provides business logic for campaigns: composition, the
// budget ledger and publishing.
type CampaignService struct {
	pool  TxBeginner
	repos Repositories
	rules economics.PolicyTable
	rate  amount.Rate
	now   func() time.Time
	newID func() string
}

// NewCampaignService creates a new CampaignService with the given pool and repositories.
func NewCampaignService(pool *pgxpool.Pool, repos Repositories, rate amount.Rate) *CampaignService {
	return NewCampaignServiceWithTxBeginner(pool, repos, rate)
}

// NewCampaignServiceWithTxBeginner creates a CampaignService with a custom TxBeginner.
// Primarily used for testing.
func NewCampaignServiceWithTxBeginner(pool TxBeginner, repos Repositories, rate amount.Rate) *CampaignService {
	return &CampaignService{
		pool:  pool,
		repos: repos,
		rules: economics.DefaultPolicies(),
		rate:  rate,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ValidateDrop checks a drop definition without storing it.
// Returns economics.Violations listing every problem found.
func (s *CampaignService) ValidateDrop(draft *model.DropDraft) (*model.Drop, error) {
	if draft == nil {
		return nil, ErrInvalidRequest
	}
	drop, vs := economics.ValidateDrop(*draft, s.rules)
	if err := vs.Err(); err != nil {
		recordViolations(vs)
		return nil, err
	}
	return &drop, nil
}

// Create builds a draft campaign from the submitted composition and stores it
// with its drops, coupons and content items in one transaction.
// Returns economics.Violations if the composition is invalid.
func (s *CampaignService) Create(ctx context.Context, draft *model.CampaignDraft) (*model.Campaign, error) {
	if draft == nil {
		return nil, ErrInvalidRequest
	}

	c, vs := economics.BuildCampaign(*draft, s.rules)
	if err := vs.Err(); err != nil {
		recordViolations(vs)
		return nil, err
	}
	s.assignIDs(&c)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.repos.Campaigns.Insert(ctx, tx, &c); err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	for i := range c.Drops {
		if err := s.repos.Drops.Insert(ctx, tx, &c.Drops[i]); err != nil {
			return nil, fmt.Errorf("insert drop %d: %w", i, err)
		}
	}
	for i := range c.Coupons {
		if err := s.repos.Coupons.Insert(ctx, tx, &c.Coupons[i]); err != nil {
			return nil, fmt.Errorf("insert coupon %d: %w", i, err)
		}
	}
	for i := range c.ContentItems {
		if err := s.repos.Content.Insert(ctx, tx, &c.ContentItems[i]); err != nil {
			return nil, fmt.Errorf("insert content item %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Info().
		Str("campaign_id", c.ID).
		Int("drops", len(c.Drops)).
		Int("coupons", len(c.Coupons)).
		Int("content_items", len(c.ContentItems)).
		Msg("campaign created")
	return &c, nil
}

// Get retrieves a campaign with its children and derived budget metrics.
// Returns ErrCampaignNotFound if the campaign doesn't exist.
func (s *CampaignService) Get(ctx context.Context, id string) (*model.CampaignSummary, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	required, err := economics.ComputeRequiredBudget(c.Drops, c.PromoshareContribution)
	if err != nil {
		return nil, fmt.Errorf("compute required budget: %w", err)
	}
	return &model.CampaignSummary{
		Campaign:       *c,
		UtilizationPct: economics.Utilization(*c),
		Remaining:      economics.Remaining(*c),
		RequiredGems:   required,
		GemBudget:      s.rate.GemsFor(c.TotalBudget),
	}, nil
}

// RequiredBudget reports the worst-case gem payout against what the budget buys.
// Returns ErrCampaignNotFound if the campaign doesn't exist.
func (s *CampaignService) RequiredBudget(ctx context.Context, id string) (*model.BudgetEstimate, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	required, err := economics.ComputeRequiredBudget(c.Drops, c.PromoshareContribution)
	if err != nil {
		return nil, fmt.Errorf("compute required budget: %w", err)
	}
	budget := s.rate.GemsFor(c.TotalBudget)
	est := &model.BudgetEstimate{
		CampaignID:   c.ID,
		RequiredGems: required,
		GemBudget:    budget,
		Sufficient:   !budget.LessThan(required),
		Shortfall:    amount.Zero(amount.CurrencyUSD),
	}
	if !est.Sufficient {
		missing, err := required.Sub(budget)
		if err != nil {
			return nil, fmt.Errorf("compute shortfall: %w", err)
		}
		if est.Shortfall, err = s.rate.CostOf(missing); err != nil {
			return nil, fmt.Errorf("compute shortfall: %w", err)
		}
	}
	return est, nil
}

// AddFunds increases a campaign's total budget exactly once per idempotency key.
// Returns:
//   - ErrInvalidRequest if the key is blank
//   - ErrCampaignNotFound if the campaign doesn't exist
//   - ErrIdempotencyConflict if the key was used for a different campaign or amount
//   - amount.ErrInvalidAmount, amount.ErrCurrencyMismatch or economics.ErrCampaignClosed
func (s *CampaignService) AddFunds(ctx context.Context, id string, funds amount.Money, idempotencyKey string) (result *model.FundingResult, err error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return nil, ErrInvalidRequest
	}

	start := time.Now()
	defer func() {
		metrics.RecordLedgerOperation("add_funds", outcome(err), time.Since(start).Seconds())
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the campaign row; concurrent additions to one campaign serialize here
	c, err := s.repos.Campaigns.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for update")
	}

	// 2. Replays of an applied key return the current state unchanged
	existing, err := s.repos.Fundings.GetByKey(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("get funding: %w", err)
	}
	if existing != nil {
		if existing.CampaignID != id || !existing.Amount.Equal(funds) {
			return nil, ErrIdempotencyConflict
		}
		log.Info().Str("campaign_id", id).Str("idempotency_key", key).Msg("fund addition replayed")
		return &model.FundingResult{Campaign: *c, Replayed: true}, nil
	}

	// 3. Apply the ledger rule
	updated, err := economics.AddFunds(*c, funds)
	if err != nil {
		return nil, err
	}

	// 4. Record the key (UNIQUE constraint catches a concurrent use on another campaign)
	err = s.repos.Fundings.Insert(ctx, tx, &model.Funding{IdempotencyKey: key, CampaignID: id, Amount: funds})
	if err != nil {
		if errors.Is(err, ErrDuplicateFunding) {
			return nil, ErrIdempotencyConflict
		}
		return nil, fmt.Errorf("insert funding: %w", err)
	}

	if err := s.repos.Campaigns.UpdateLedger(ctx, tx, &updated); err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordLedgerCents("add_funds", string(funds.Currency()), funds.Cents())
	log.Info().
		Str("campaign_id", id).
		Str("amount", funds.String()).
		Str("total_budget", updated.TotalBudget.String()).
		Msg("funds added")
	return &model.FundingResult{Campaign: updated}, nil
}

// RecordSpend charges spend against a running campaign's budget.
// Returns an *economics.InvariantError wrapping economics.ErrBudgetExceeded
// when the spend would pass the total budget; nothing is written in that case.
func (s *CampaignService) RecordSpend(ctx context.Context, id string, spend amount.Money) (result *model.Campaign, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordLedgerOperation("record_spend", outcome(err), time.Since(start).Seconds())
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	c, err := s.repos.Campaigns.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for update")
	}
	if err := spendable(c); err != nil {
		return nil, err
	}

	updated, err := economics.RecordSpend(*c, spend)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Campaigns.UpdateLedger(ctx, tx, &updated); err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordLedgerCents("record_spend", string(spend.Currency()), spend.Cents())
	log.Info().
		Str("campaign_id", id).
		Str("amount", spend.String()).
		Str("budget_spent", updated.BudgetSpent.String()).
		Msg("spend recorded")
	return &updated, nil
}

// Publish moves a draft campaign to active once every publish check passes,
// activates its drops and reserves the required gem budget.
// Returns economics.Violations with the full checklist when checks fail.
func (s *CampaignService) Publish(ctx context.Context, id string) (*model.Campaign, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	c, err := s.repos.Campaigns.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for update")
	}
	published, err := s.publishLocked(ctx, tx, *c)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return published, nil
}

// TransitionCampaign applies a status change (pause, resume, complete).
// A draft campaign can only become active through Publish's checks.
// Returns a *lifecycle.IllegalTransitionError for transitions outside the table.
func (s *CampaignService) TransitionCampaign(ctx context.Context, id string, to model.CampaignStatus) (*model.Campaign, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	c, err := s.repos.Campaigns.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, lockError(err, ErrCampaignNotFound, "get campaign for update")
	}

	var updated *model.Campaign
	if c.Status == model.CampaignStatusDraft && to == model.CampaignStatusActive {
		updated, err = s.publishLocked(ctx, tx, *c)
		if err != nil {
			return nil, err
		}
	} else {
		next, err := lifecycle.TransitionCampaign(*c, to)
		if err != nil {
			return nil, err
		}
		if err := s.repos.Campaigns.UpdateStatus(ctx, tx, &next); err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
		updated = &next
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordTransition("campaign", string(to))
	log.Info().
		Str("campaign_id", id).
		Str("from", string(c.Status)).
		Str("to", string(to)).
		Msg("campaign status changed")
	return updated, nil
}

// CompleteDue completes every running campaign whose end date is before now.
// Returns how many were completed; failures are joined and do not stop the sweep.
func (s *CampaignService) CompleteDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.repos.Campaigns.ListDueForCompletion(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due campaigns: %w", err)
	}

	var errs []error
	completed := 0
	for _, id := range ids {
		ok, err := s.complete(ctx, id, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("complete campaign %s: %w", id, err))
			continue
		}
		if ok {
			completed++
		}
	}
	return completed, errors.Join(errs...)
}

// complete re-checks the campaign under lock; a campaign completed, deleted or
// given a later end date since it was listed is left alone.
func (s *CampaignService) complete(ctx context.Context, id string, now time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	c, err := s.repos.Campaigns.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return false, nil
		}
		return false, err
	}
	if !c.Ended(now) || !lifecycle.CanTransitionCampaign(c.Status, model.CampaignStatusCompleted) {
		log.Debug().Str("campaign_id", id).Str("status", string(c.Status)).Msg("skipping campaign completion")
		return false, nil
	}

	next, err := lifecycle.TransitionCampaign(*c, model.CampaignStatusCompleted)
	if err != nil {
		return false, err
	}
	if err := s.repos.Campaigns.UpdateStatus(ctx, tx, &next); err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordTransition("campaign", string(model.CampaignStatusCompleted))
	log.Info().
		Str("campaign_id", id).
		Str("from", string(c.Status)).
		Str("spent", next.BudgetSpent.String()).
		Msg("campaign completed")
	return true, nil
}

// publishLocked runs the publish checks and writes; c must be locked by tx.
func (s *CampaignService) publishLocked(ctx context.Context, tx pgx.Tx, c model.Campaign) (*model.Campaign, error) {
	if c.Status != model.CampaignStatusDraft {
		metrics.PublishAttempts.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, &lifecycle.IllegalTransitionError{
			Entity: "campaign",
			From:   string(c.Status),
			To:     string(model.CampaignStatusActive),
		}
	}

	drops, err := s.repos.Drops.ListByCampaignForUpdate(ctx, tx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list drops: %w", err)
	}
	coupons, err := s.repos.Coupons.ListByCampaign(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	content, err := s.repos.Content.ListByCampaign(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	c.Drops, c.Coupons, c.ContentItems = drops, coupons, content

	if vs := economics.CanPublish(c, s.rules, s.rate); len(vs) > 0 {
		metrics.PublishAttempts.WithLabelValues(metrics.ResultRejected).Inc()
		recordViolations(vs)
		log.Info().
			Str("campaign_id", c.ID).
			Strs("codes", codeStrings(vs)).
			Msg("campaign publish rejected")
		return nil, vs
	}

	required, err := economics.ComputeRequiredBudget(c.Drops, c.PromoshareContribution)
	if err != nil {
		return nil, fmt.Errorf("compute required budget: %w", err)
	}
	active, err := lifecycle.TransitionCampaign(c, model.CampaignStatusActive)
	if err != nil {
		return nil, err
	}
	active.ReservedGems = required

	now := s.now()
	activated := make([]model.Drop, len(active.Drops))
	for i, d := range active.Drops {
		if d.Status == model.DropStatusDraft {
			d, err = lifecycle.TransitionDrop(d, model.DropStatusActive)
			if err != nil {
				return nil, err
			}
			deadline := now.AddDate(0, 0, d.DeadlineDays)
			d.Deadline = &deadline
			if err := s.repos.Drops.Update(ctx, tx, &d); err != nil {
				return nil, fmt.Errorf("activate drop %s: %w", d.ID, err)
			}
		}
		activated[i] = d
	}
	active.Drops = activated

	if err := s.repos.Campaigns.UpdateStatus(ctx, tx, &active); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	metrics.PublishAttempts.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info().
		Str("campaign_id", c.ID).
		Str("reserved_gems", required.String()).
		Int("drops", len(activated)).
		Msg("campaign published")
	return &active, nil
}

// load reads a campaign row and its children.
func (s *CampaignService) load(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := s.repos.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}

	if c.Drops, err = s.repos.Drops.ListByCampaign(ctx, id); err != nil {
		return nil, fmt.Errorf("list drops: %w", err)
	}
	if c.Coupons, err = s.repos.Coupons.ListByCampaign(ctx, id); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	if c.ContentItems, err = s.repos.Content.ListByCampaign(ctx, id); err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	return c, nil
}

func (s *CampaignService) assignIDs(c *model.Campaign) {
	c.ID = s.newID()
	for i := range c.Drops {
		c.Drops[i].ID = s.newID()
		c.Drops[i].CampaignID = c.ID
	}
	for i := range c.Coupons {
		c.Coupons[i].ID = s.newID()
		c.Coupons[i].CampaignID = c.ID
	}
	for i := range c.ContentItems {
		c.ContentItems[i].ID = s.newID()
		c.ContentItems[i].CampaignID = c.ID
	}
}

// spendable rejects spend on campaigns that are not running.
func spendable(c *model.Campaign) error {
	switch {
	case lifecycle.IsTerminalCampaign(c.Status):
		return economics.ErrCampaignClosed
	case c.Status == model.CampaignStatusDraft:
		return ErrCampaignNotActive
	}
	return nil
}

// lockError passes the repository's not-found sentinel through and wraps anything else.
func lockError(err, notFound error, op string) error {
	if errors.Is(err, notFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, economics.ErrValidation),
		errors.Is(err, economics.ErrInvariantViolation),
		errors.Is(err, amount.ErrInvalidAmount),
		errors.Is(err, amount.ErrCurrencyMismatch),
		errors.Is(err, ErrIdempotencyConflict),
		errors.Is(err, ErrCampaignNotActive):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}

func recordViolations(vs economics.Violations) {
	metrics.RecordViolations(codeStrings(vs))
}

func codeStrings(vs economics.Violations) []string {
	codes := vs.Codes()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
