package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(context.Context) error

// PeriodicConfig configures a Periodic runner.
type PeriodicConfig struct {
	Interval time.Duration
	// RunOnStart executes the task immediately instead of waiting a full interval.
	RunOnStart bool
	Logger     *zap.Logger
}

// Periodic runs a task on a fixed interval in a single goroutine. Runs never
// overlap; a slow run delays the next tick.
type Periodic struct {
	name       string
	task       Task
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewPeriodic builds a runner. Interval defaults to one hour.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{
		name:       name,
		task:       task,
		interval:   cfg.Interval,
		runOnStart: cfg.RunOnStart,
		logger:     cfg.Logger,
	}
}

// Start launches the loop. Safe to call once.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.started = true
	go p.loop(ctx)
	p.logger.Sugar().Infow("periodic job started", "job", p.name, "interval", p.interval.String())
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	done := p.done
	p.started = false
	p.mu.Unlock()
	<-done
	p.logger.Sugar().Infow("periodic job stopped", "job", p.name)
}

func (p *Periodic) loop(ctx context.Context) {
	defer close(p.done)
	if p.runOnStart {
		p.run(ctx)
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Periodic) run(ctx context.Context) {
	start := time.Now()
	if err := p.task(ctx); err != nil {
		p.logger.Sugar().Warnw("periodic job failed", "job", p.name, "error", err, "elapsed", time.Since(start).String())
		return
	}
	p.logger.Sugar().Debugw("periodic job finished", "job", p.name, "elapsed", time.Since(start).String())
}
