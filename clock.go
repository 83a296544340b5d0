// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"context"
	"fmt"
)

// A Clock drives a scalar signal with a periodic 50% duty-cycle
// waveform, high first. It runs as an ordinary task, so it can be killed
// like one, and it stops cleanly on scheduler shutdown.
type Clock struct {
	signal WriteHandle
	half   uint64
	amount uint64
	unit   TimeUnit
}

// NewClock creates a clock over sig with the given period. The period
// must be an even amount of at least two units so it splits into two
// equal half-periods, and sig must be a scalar handle.
func NewClock(sig WriteHandle, period uint64, unit TimeUnit) (*Clock, error) {
	if sig == nil {
		panic("signal must be non-nil")
	}
	if sig.Width() != 1 {
		return nil, fmt.Errorf("%w: %s is %d bits wide", ErrNotScalar, sig.Path(), sig.Width())
	}
	if period < 2 || period%2 != 0 {
		return nil, fmt.Errorf("%w: %d %s", ErrOddPeriod, period, unit)
	}
	return &Clock{signal: sig, half: period / 2, amount: period, unit: unit}, nil
}

// Start launches the clock as a task on s and returns its handle. The
// clock toggles forever; kill the task to stop it.
func (c *Clock) Start(s *Scheduler) *Task[struct{}] {
	return Start(s, c.String(), func(ctx context.Context) (struct{}, error) {
		for {
			c.signal.SetValue(1)
			if err := c.waitHalf(ctx, s); err != nil {
				return struct{}{}, err
			}
			c.signal.SetValue(0)
			if err := c.waitHalf(ctx, s); err != nil {
				return struct{}{}, err
			}
		}
	})
}

func (c *Clock) waitHalf(ctx context.Context, s *Scheduler) error {
	t, err := s.Timer(c.half, c.unit)
	if err != nil {
		return err
	}
	_, err = Await(ctx, t)
	return err
}

func (c *Clock) String() string {
	return fmt.Sprintf("Clock(%s, %d %s)", c.signal.Path(), c.amount, c.unit)
}
