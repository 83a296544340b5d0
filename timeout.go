// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"context"
	"fmt"
)

// WithTimeout suspends the calling task on aw, racing it against a timer
// of the given duration. If the timer fires first the call fails with
// [ErrTimeout] and aw's subscription is cancelled; otherwise the timer is
// cancelled and aw's await value is returned.
//
// The awaitable is armed before the timer, so if both become eligible in
// the same simulated instant the awaitable wins and no timeout is
// raised. Timeouts are cooperative: they take effect only at this
// suspension point, never by interrupting running code.
//
// Must be called from within a task routine, with the routine's context.
func WithTimeout(ctx context.Context, aw Awaitable, amount uint64, unit TimeUnit) (any, error) {
	t := taskFromContext(ctx)
	if t == nil {
		panic("cosched: WithTimeout called outside a task routine")
	}
	s := t.sched
	timer, err := s.Timer(amount, unit)
	if err != nil {
		return nil, err
	}
	first, err := s.First(aw, timer)
	if err != nil {
		return nil, err
	}
	v, err := Await(ctx, first)
	if err != nil {
		return nil, err
	}
	res := v.(FirstResult)
	if res.Winner == Awaitable(timer) {
		return nil, fmt.Errorf("%w after %d %s", ErrTimeout, amount, unit)
	}
	return res.Value, nil
}
