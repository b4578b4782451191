package fetch

import (
	"context"
	"time"

	"github.com/pfrederiksen/kcycle-crawler/internal/page"
)

// Throttle spaces requests made through the wrapped Fetcher by at least delay.
// The delay is measured from the end of one request to the start of the next.
// A Throttle is meant for a single sequential caller.
type Throttle struct {
	next  Fetcher
	delay time.Duration
	last  time.Time
	now   func() time.Time
}

// NewThrottle wraps next with a politeness delay
func NewThrottle(next Fetcher, delay time.Duration) *Throttle {
	return &Throttle{
		next:  next,
		delay: delay,
		now:   time.Now,
	}
}

// Fetch waits out the remaining delay, then delegates to the wrapped Fetcher.
// It returns ctx.Err() if the context ends while waiting.
func (t *Throttle) Fetch(ctx context.Context, url string) (*page.Element, error) {
	if !t.last.IsZero() && t.delay > 0 {
		if wait := t.delay - t.now().Sub(t.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	doc, err := t.next.Fetch(ctx, url)
	t.last = t.now()
	return doc, err
}
