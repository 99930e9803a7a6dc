package spawn

import (
	"context"
	"fmt"
	"time"
)

// DefaultTickInterval — период тика по умолчанию.
const DefaultTickInterval = 100 * time.Millisecond

// Run тикает менеджер каждые interval (blocks until context is canceled).
// delta — реальное время с прошлого тика в секундах.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("spawn tick interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("spawn tick loop started", "interval", interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("spawn tick loop stopping")
			return ctx.Err()

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			m.Tick(float32(delta.Seconds()))
		}
	}
}
