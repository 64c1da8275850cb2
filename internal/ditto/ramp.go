package ditto

import (
	"context"
	"time"
)

// RampValues generates the inclusive integer sequence from start to end,
// advancing by step. Direction is inferred from the endpoints and the sign
// of step is normalised to match, so RampValues(60, 50, 5) counts down.
//
// Inputs are truncated to integers before iterating; fractional starts,
// ends, and steps lose their fractional part. This mirrors the recorded
// simulator behaviour and is a known precision limitation, kept on purpose.
// A start equal to end yields exactly one value. A zero step defaults to 1.
func RampValues(start, end, step float64) []int {
	from := int(start)
	to := int(end)
	by := int(step)
	if by < 0 {
		by = -by
	}
	if by == 0 {
		by = 1
	}

	var values []int
	if from <= to {
		for v := from; v <= to; v += by {
			values = append(values, v)
		}
	} else {
		for v := from; v >= to; v -= by {
			values = append(values, v)
		}
	}
	return values
}

// RunRamp steps a feature property from start to end, writing each value and
// sleeping interval between writes.
//
// A failed write is logged and the ramp continues; the simulation is about
// producing a plausible value trajectory, not transactional delivery. It
// returns the number of successful writes and stops early only when the
// context is cancelled.
func (c *Client) RunRamp(ctx context.Context, thingID, featureID, property string, start, end, step float64, interval time.Duration) int {
	values := RampValues(start, end, step)

	c.logger.Info("starting ramp",
		"thing_id", thingID,
		"feature", featureID,
		"property", property,
		"steps", len(values),
		"interval", interval,
	)

	succeeded := 0
	for i, v := range values {
		if ctx.Err() != nil {
			return succeeded
		}

		if err := c.SetProperty(ctx, thingID, featureID, property, v); err != nil {
			c.logger.Error("ramp write failed", "value", v, "error", err)
		} else {
			c.logger.Info("ramp write", "property", property, "value", v)
			succeeded++
		}

		// No trailing sleep after the final value.
		if i < len(values)-1 {
			c.sleep(interval)
		}
	}

	return succeeded
}
