package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/conviteapp/convite-backend/pkg/logger"
)

// Poller is the second trigger source: a fixed-interval sweep over the
// watched events. It only fires while the surface is visible and no manual
// edit is in progress; the push path is never gated this way.
type Poller struct {
	coordinator *Coordinator
	interval    time.Duration
	logg        *logger.Logger
}

// NewPoller builds the poll trigger source.
func NewPoller(coordinator *Coordinator, interval time.Duration, logg *logger.Logger) (*Poller, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Poller{coordinator: coordinator, interval: interval, logg: logg}, nil
}

// Run sweeps until the context is canceled. Sharing the context with the
// coordinator and the push consumer tears all three down together.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Poller) sweep() {
	if !p.coordinator.ShouldPoll() {
		return
	}
	for _, eventID := range p.coordinator.Watched() {
		p.coordinator.Trigger(Trigger{EventID: eventID, Source: SourcePoll})
	}
}
