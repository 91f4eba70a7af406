package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSweepInterval is how often idle forms are looked for
	DefaultSweepInterval = time.Minute

	// DefaultMaxIdle is how long a form may go untouched before it is discarded
	DefaultMaxIdle = 30 * time.Minute
)

// Sweeper discards idle forms. *form.Store implements it.
type Sweeper interface {
	SweepIdle(now time.Time, maxIdle time.Duration) int
}

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	Interval time.Duration // Time between sweeps
	MaxIdle  time.Duration // Idle time after which a form is dropped
}

// DefaultJanitorConfig returns sensible defaults.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval: DefaultSweepInterval,
		MaxIdle:  DefaultMaxIdle,
	}
}

// Janitor runs a background goroutine that periodically sweeps idle forms.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	maxIdle  time.Duration
	log      *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewJanitor creates a janitor; zero config values fall back to the defaults.
func NewJanitor(sweeper Sweeper, cfg JanitorConfig, log *zap.Logger) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweepInterval
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultMaxIdle
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Janitor{
		sweeper:  sweeper,
		interval: cfg.Interval,
		maxIdle:  cfg.MaxIdle,
		log:      log.With(zap.String("component", "janitor")),
	}
}

// Start begins sweeping. Call Stop() to shut down.
func (j *Janitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.run(ctx)

	j.log.Info("started", zap.Duration("interval", j.interval), zap.Duration("max_idle", j.maxIdle))
}

// Stop shuts the janitor down and blocks until its goroutine exits.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	j.wg.Wait()
	j.log.Info("stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			j.SweepOnce(now)
		}
	}
}

// SweepOnce runs a single sweep as of now.
func (j *Janitor) SweepOnce(now time.Time) int {
	n := j.sweeper.SweepIdle(now, j.maxIdle)
	if n > 0 {
		j.log.Info("discarded idle forms", zap.Int("count", n))
	}
	return n
}
