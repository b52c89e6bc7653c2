// Package poller runs the scrape, persist and notify cycle on a fixed
// interval. A failed cycle is logged and reported, never fatal.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/instascrape/internal/extract"
	"github.com/JakeFAU/instascrape/internal/metrics"
	"github.com/JakeFAU/instascrape/internal/notify"
	"github.com/JakeFAU/instascrape/internal/profile"
)

// Config controls Poller behavior.
type Config struct {
	User     string
	URL      string
	Interval time.Duration
}

// Snapshot is the most recent successful observation.
type Snapshot struct {
	Observation profile.Observation `json:"observation"`
	ObservedAt  time.Time           `json:"observed_at"`
}

// Poller owns the output recorder for the lifetime of Run.
type Poller struct {
	cfg      Config
	fetcher  profile.Fetcher
	recorder profile.Recorder
	notifier profile.Notifier
	clock    profile.Clock
	ids      profile.IDGenerator
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	mu     sync.RWMutex
	latest *Snapshot
}

// New constructs a Poller. notifier may be nil, in which case cycles are
// only logged and recorded.
func New(
	cfg Config,
	fetcher profile.Fetcher,
	recorder profile.Recorder,
	notifier profile.Notifier,
	clock profile.Clock,
	ids profile.IDGenerator,
	logger *zap.Logger,
) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		cfg.URL = profile.ProfileURL(cfg.User)
	}
	metrics.Init()
	return &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		recorder: recorder,
		notifier: notifier,
		clock:    clock,
		ids:      ids,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run blocks, running one cycle per interval until the context finishes.
// The interval is measured from the end of each cycle.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		zap.String("user", p.cfg.User),
		zap.String("url", p.cfg.URL),
		zap.Duration("interval", p.cfg.Interval),
	)
	for {
		_, _ = p.Cycle(ctx)
		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			p.logger.Info("poller stopped", zap.Error(err))
			return nil
		}
	}
}

// Cycle runs fetch, extract, parse, persist and notify once. The returned
// error is the first stage failure; it has already been logged and reported.
func (p *Poller) Cycle(ctx context.Context) (profile.Observation, error) {
	logger := p.cycleLogger()

	obs, err := p.Scrape(ctx)
	if err != nil {
		p.fail(ctx, logger, err)
		return profile.Observation{}, err
	}

	now := p.clock.Now()
	p.setLatest(obs, now)
	metrics.SetProfile(p.cfg.User, obs.Followers, obs.Following, obs.Posts, now)

	recordErr := p.recorder.Record(obs)
	if recordErr != nil {
		logger.Error("record observation failed", zap.Error(recordErr))
	}

	logger.Info("observation",
		zap.Uint64("followers", obs.Followers),
		zap.Uint64("following", obs.Following),
		zap.Uint64("posts", obs.Posts),
	)
	p.notify(ctx, logger, "success", notify.SuccessMessage(now, obs))

	if recordErr != nil {
		p.fail(ctx, logger, recordErr)
		return obs, recordErr
	}
	metrics.ObserveCycle(metrics.ResultSuccess, "")
	return obs, nil
}

// Scrape fetches the profile page and parses its counters without
// persisting or notifying.
func (p *Poller) Scrape(ctx context.Context) (profile.Observation, error) {
	start := time.Now()
	body, err := p.fetcher.Fetch(ctx, p.cfg.URL)
	metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return profile.Observation{}, fmt.Errorf("fetch %s: %w", p.cfg.URL, err)
	}

	content, err := extract.MetaDescription(body)
	if err != nil {
		return profile.Observation{}, fmt.Errorf("extract description: %w", err)
	}

	obs, err := extract.ParseCounters(content)
	if err != nil {
		return profile.Observation{}, fmt.Errorf("parse counters from %q: %w", content, err)
	}
	return obs, nil
}

// Latest returns the last successful observation, if any.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return Snapshot{}, false
	}
	return *p.latest, true
}

func (p *Poller) setLatest(obs profile.Observation, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = &Snapshot{Observation: obs, ObservedAt: at}
}

func (p *Poller) fail(ctx context.Context, logger *zap.Logger, err error) {
	stage := "unknown"
	if kind, ok := profile.KindOf(err); ok {
		stage = kind.Stage()
	}
	metrics.ObserveCycle(metrics.ResultFailure, stage)

	if ctx.Err() != nil {
		logger.Warn("cycle interrupted", zap.String("stage", stage), zap.Error(err))
		return
	}
	logger.Error("cycle failed", zap.String("stage", stage), zap.Error(err))
	p.notify(ctx, logger, "failure", notify.FailureMessage(p.cfg.User, err))
}

func (p *Poller) notify(ctx context.Context, logger *zap.Logger, kind, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, message); err != nil {
		metrics.ObserveNotification(kind, metrics.ResultFailure)
		logger.Warn("notification failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	metrics.ObserveNotification(kind, metrics.ResultSuccess)
}

func (p *Poller) cycleLogger() *zap.Logger {
	logger := p.logger.With(zap.String("user", p.cfg.User))
	if p.ids == nil {
		return logger
	}
	id, err := p.ids.NewID()
	if err != nil {
		logger.Warn("cycle id unavailable", zap.Error(err))
		return logger
	}
	return logger.With(zap.String("cycle_id", id))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
