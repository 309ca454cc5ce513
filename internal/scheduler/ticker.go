// Package scheduler periodically triggers message processing. The ticker is
// owned by whoever starts it; nothing here is global.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type RunFunc func(ctx context.Context) error

type Ticker struct {
	interval time.Duration
	run      RunFunc
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns a ticker calling run every interval. A non-positive interval
// yields a ticker whose Start does nothing.
func New(interval time.Duration, run RunFunc, logger *zap.Logger) *Ticker {
	return &Ticker{
		interval: interval,
		run:      run,
		logger:   logger,
	}
}

func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	if t.interval <= 0 {
		t.logger.Info("Periodic processing disabled")
		return
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.running = true
	t.wg.Add(1)
	go t.loop(ctx)
	t.logger.Info("Periodic processing started", zap.Duration("interval", t.interval))
}

// Stop cancels the loop and waits for a run in progress to return.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.cancel()
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("Periodic processing stopped")
}

func (t *Ticker) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.run(ctx); err != nil && ctx.Err() == nil {
				t.logger.Error("Periodic processing failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
