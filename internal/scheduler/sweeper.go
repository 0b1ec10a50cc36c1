// Package scheduler runs the periodic lifecycle sweeps that expire drops and
// complete campaigns once their dates pass.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/campaign-economics/internal/metrics"
)

// DropExpirer expires active drops whose deadline has passed.
type DropExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// CampaignCompleter completes running campaigns whose end date has passed.
type CampaignCompleter interface {
	CompleteDue(ctx context.Context, now time.Time) (int, error)
}

// LifecycleSweeper runs Sweep on a cron schedule. Runs never overlap.
type LifecycleSweeper struct {
	drops     DropExpirer
	campaigns CampaignCompleter
	cron      *cron.Cron
	now       func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewLifecycleSweeper creates a sweeper scheduled with spec, e.g. "@every 1m".
func NewLifecycleSweeper(spec string, drops DropExpirer, campaigns CampaignCompleter) (*LifecycleSweeper, error) {
	s := &LifecycleSweeper{
		drops:     drops,
		campaigns: campaigns,
		now:       time.Now,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{}),
			cron.SkipIfStillRunning(cronLogger{}),
		), cron.WithLogger(cronLogger{})),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule in the background.
func (s *LifecycleSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	log.Info().Msg("lifecycle sweeper started")
}

// Stop cancels an in-flight sweep and waits for it to return or ctx to expire.
func (s *LifecycleSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("lifecycle sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LifecycleSweeper) run() {
	if _, err := s.Sweep(s.ctx); err != nil {
		log.Error().Err(err).Msg("lifecycle sweep failed")
	}
}

// SweepResult counts what one sweep changed.
type SweepResult struct {
	ExpiredDrops       int
	CompletedCampaigns int
}

// Sweep expires due drops, then completes due campaigns. Both steps always
// run; their errors are returned together.
func (s *LifecycleSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now()
	var res SweepResult
	var errs []error

	expired, err := s.drops.ExpireDue(ctx, now)
	res.ExpiredDrops = expired
	if err != nil {
		errs = append(errs, fmt.Errorf("expire drops: %w", err))
	}

	completed, err := s.campaigns.CompleteDue(ctx, now)
	res.CompletedCampaigns = completed
	if err != nil {
		errs = append(errs, fmt.Errorf("complete campaigns: %w", err))
	}

	if res.ExpiredDrops > 0 || res.CompletedCampaigns > 0 {
		log.Info().
			Int("expired_drops", res.ExpiredDrops).
			Int("completed_campaigns", res.CompletedCampaigns).
			Dur("duration", time.Since(start)).
			Msg("lifecycle sweep finished")
	}
	return res, errors.Join(errs...)
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
