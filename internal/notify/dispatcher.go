package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const defaultSendTimeout = 30 * time.Second

// Dispatcher sends invitations in the background through a circuit
// breaker. Failures are logged and never reach the caller.
type Dispatcher struct {
	sender  Sender
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	d := &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "invitation-email",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("email circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return d
}

// Dispatch queues msg for delivery and returns immediately.
func (d *Dispatcher) Dispatch(msg Invitation) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(context.Background(), msg); err != nil {
			d.logger.Error("failed to send invitation email", "to", msg.To, "error", err)
			return
		}
		d.logger.Debug("invitation email sent", "to", msg.To)
	}()
}

// Send delivers msg synchronously, bounded by the dispatcher timeout.
func (d *Dispatcher) Send(ctx context.Context, msg Invitation) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.sender.SendInvitation(ctx, msg)
	})
	return err
}

// Wait blocks until every dispatched send has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
