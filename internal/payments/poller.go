package payments

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout means the invoice never reached a terminal state
// within the attempt budget.
var ErrPollTimeout = errors.New("payment status poll timed out")

// Poller re-checks an invoice at a fixed interval until it reaches a
// terminal state, the attempt budget runs out, or the context is
// cancelled. Navigating away from the booking flow cancels the
// context, so no timer outlives its session.
type Poller struct {
	gateway     Gateway
	interval    time.Duration
	maxAttempts int
}

func NewPoller(gateway Gateway, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 24
	}
	return &Poller{gateway: gateway, interval: interval, maxAttempts: maxAttempts}
}

// Wait resolves exactly once per call: the first observed terminal
// state wins and later observations never re-fire.
func (p *Poller) Wait(ctx context.Context, billID string) (InvoiceState, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		state, err := p.gateway.GetInvoiceStatus(ctx, billID)
		if err != nil {
			// Transient gateway error burns the attempt, nothing more.
			continue
		}

		if state.Terminal() {
			return state, nil
		}
	}

	return InvoicePending, ErrPollTimeout
}
