package ditto

import (
	"context"
	"time"
)

// readyGracePeriod is the settle time after the first successful probe.
// A freshly started Ditto answers its first request slightly before all
// services finish wiring up, so the tooling waits a moment before piling on.
const readyGracePeriod = 2 * time.Second

// WaitUntilAvailable polls the instance until it answers a probe or the
// timeout budget is spent.
//
// Connection errors, per-call timeouts, and non-200 answers all mean
// "not yet" and are never fatal; the loop sleeps interval between attempts
// and gives up with ErrTimeout once the elapsed wall-clock time reaches
// timeout. Progress is logged per attempt so an operator can tell the wait
// is alive.
func (c *Client) WaitUntilAvailable(ctx context.Context, timeout, interval time.Duration) error {
	start := c.now()
	attempt := 0

	for {
		attempt++

		if err := c.probe(ctx); err == nil {
			c.logger.Info("instance is available",
				"attempts", attempt,
				"elapsed", c.now().Sub(start).Round(time.Millisecond),
			)
			c.sleep(readyGracePeriod)
			return nil
		} else if ctx.Err() != nil {
			return ctx.Err()
		} else {
			c.logger.Info("waiting for instance",
				"attempt", attempt,
				"elapsed", c.now().Sub(start).Round(time.Second),
				"error", err,
			)
		}

		if c.now().Sub(start) >= timeout {
			return ErrTimeout
		}

		c.sleep(interval)
	}
}
