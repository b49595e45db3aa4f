package retry

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultAttempts is the default number of checks per assertion.
	DefaultAttempts = 30
	// DefaultInterval is the pause between a failing check and the next one.
	DefaultInterval = 100 * time.Millisecond
)

// Result is anything with a pass/fail verdict.
type Result interface {
	Passed() bool
}

// Policy is a polling budget.
type Policy struct {
	Attempts int
	Interval time.Duration
	Logger   logrus.FieldLogger
}

// DefaultPolicy allows 30 attempts 100ms apart, about three seconds.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Interval: DefaultInterval}
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p Policy) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Budget is the worst-case time spent sleeping between attempts.
func (p Policy) Budget() time.Duration {
	return time.Duration(p.attempts()-1) * p.Interval
}

// Loop calls check until it passes, up to p.Attempts times, and returns the
// first passing result or the last failing one. Cancelling ctx ends the loop
// early with the last result.
func Loop[R Result](ctx context.Context, p Policy, check func(ctx context.Context) R) R {
	log := p.logger()
	every := rate.Sometimes{First: 1, Interval: time.Second}
	attempts := p.attempts()

	var last R
	for attempt := 1; attempt <= attempts; attempt++ {
		last = check(ctx)
		if last.Passed() {
			if attempt > 1 {
				log.WithField("attempts", attempt).Debug("check passed after retrying")
			}
			return last
		}
		if attempt == attempts {
			break
		}
		every.Do(func() {
			log.WithFields(logrus.Fields{
				"attempt": attempt,
				"of":      attempts,
			}).Debug("check failed, retrying")
		})
		if !sleep(ctx, p.Interval) {
			log.WithField("attempt", attempt).Debug("retry loop cancelled")
			return last
		}
	}
	log.WithField("attempts", attempts).Debug("check never passed")
	return last
}

// Poll is Loop for plain predicates. Errors from fn are logged and polling
// carries on; the last one is returned if the budget runs out.
func Poll(ctx context.Context, p Policy, fn func(ctx context.Context) (bool, error)) (bool, error) {
	log := p.logger()
	every := rate.Sometimes{First: 1, Interval: time.Second}
	attempts := p.attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ok, err := fn(ctx)
		if err != nil {
			lastErr = err
			every.Do(func() {
				log.WithError(err).WithField("attempt", attempt).Debug("poll attempt failed")
			})
		} else if ok {
			return true, nil
		}
		if attempt == attempts {
			break
		}
		if !sleep(ctx, p.Interval) {
			return false, ctx.Err()
		}
	}
	return false, lastErr
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
