package notification

import (
	"context"
	"log/slog"
)

// Dispatcher decouples alert delivery from the decision core. Publish
// never blocks: alerts go onto a buffered channel, a single delivery
// goroutine owns sending, and failures are logged and absorbed — they
// never reach the publisher.
type Dispatcher struct {
	notifier Notifier
	ch       chan Alert
	log      *slog.Logger

	// OnFailure is an optional metrics hook for failed deliveries.
	OnFailure func()
}

// NewDispatcher creates a dispatcher with the given channel capacity.
func NewDispatcher(n Notifier, buffer int, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		ch:       make(chan Alert, buffer),
		log:      log,
	}
}

// Start launches the delivery goroutine. It drains until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case alert := <-d.ch:
				if err := d.notifier.Send(ctx, alert); err != nil {
					d.log.Warn("alert delivery failed", "title", alert.Title, "err", err)
					if d.OnFailure != nil {
						d.OnFailure()
					}
				}
			}
		}
	}()
}

// Publish enqueues an alert without blocking. Alerts are dropped when
// the buffer is full; delivery is best-effort by contract.
func (d *Dispatcher) Publish(alert Alert) {
	select {
	case d.ch <- alert:
	default:
		d.log.Warn("alert buffer full, dropping", "title", alert.Title)
	}
}
