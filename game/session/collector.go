package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLifetime      = time.Hour
	DefaultSweepInterval = 3 * time.Second
)

// Collector periodically evicts sessions older than a lifetime
type Collector struct {
	stores   []*Store
	lifetime time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewCollector sweeps stores every interval. Zero durations take the defaults.
func NewCollector(lifetime, interval time.Duration, logger *zap.Logger, stores ...*Store) *Collector {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		stores:   stores,
		lifetime: lifetime,
		interval: interval,
		logger:   logger,
	}
}

// Sweep runs one pass over every store and returns the number evicted
func (c *Collector) Sweep() int {
	removed := 0
	for _, s := range c.stores {
		n := s.Sweep(c.lifetime)
		if n > 0 {
			c.logger.Info("cleaned up expired sessions",
				zap.String("variant", string(s.Variant())),
				zap.Int("removed", n))
		}
		removed += n
	}
	return removed
}

// Run sweeps on every tick until ctx is done
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
