package session

import "time"

// RetryPolicy decides whether and when the controller re-establishes the
// session after a disconnect. attempt starts at 1 for the first reconnect.
type RetryPolicy interface {
	Next(attempt int) (time.Duration, bool)
}

// ImmediateRetry reconnects forever with no backoff. The only thing that
// stops the controller is an explicit de-authorization.
type ImmediateRetry struct{}

func (ImmediateRetry) Next(int) (time.Duration, bool) { return 0, true }

// LimitedRetry gives up after MaxAttempts reconnects, waiting Delay between
// attempts.
type LimitedRetry struct {
	MaxAttempts int
	Delay       time.Duration
}

func (p LimitedRetry) Next(attempt int) (time.Duration, bool) {
	if attempt > p.MaxAttempts {
		return 0, false
	}
	return p.Delay, true
}
