// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched_test

import (
	"context"
	"testing"

	"github.com/cohdl/cosched"
	"github.com/stretchr/testify/require"
)

// startClock launches a 50% duty-cycle clock with the given period over
// sig. The caller's monitors must be started first so their edge
// subscriptions observe the very first transition.
func startClock(t *testing.T, s *cosched.Scheduler, sig cosched.WriteHandle, period uint64) {
	t.Helper()
	chk := require.New(t)
	clk, err := cosched.NewClock(sig, period, cosched.Ns)
	chk.NoError(err)
	clk.Start(s)
}

func TestClockCyclesCountsRisingEdges(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	var done cosched.Steps
	mon := cosched.Start(s, "monitor", func(ctx context.Context) (struct{}, error) {
		cc, err := s.ClockCycles(sig, 5, true)
		if err != nil {
			return struct{}{}, err
		}
		if _, err := cosched.Await(ctx, cc); err != nil {
			return struct{}{}, err
		}
		done = eng.Now()
		return struct{}{}, nil
	})
	startClock(t, s, sig, 10)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(1, cosched.Us)))
	chk.True(mon.Done())
	_, err := mon.Result()
	chk.NoError(err)
	// Rising edges land at 0, 10, 20, 30, 40ns; the fifth completes the
	// count.
	chk.Equal(cosched.AsSteps(40, cosched.Ns), done)
}

func TestClockCyclesCountsFallingEdges(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	var done cosched.Steps
	mon := cosched.Start(s, "monitor", func(ctx context.Context) (struct{}, error) {
		cc, err := s.ClockCycles(sig, 3, false)
		if err != nil {
			return struct{}{}, err
		}
		if _, err := cosched.Await(ctx, cc); err != nil {
			return struct{}{}, err
		}
		done = eng.Now()
		return struct{}{}, nil
	})
	startClock(t, s, sig, 10)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(1, cosched.Us)))
	chk.True(mon.Done())
	// Falling edges land at 5, 15, 25ns.
	chk.Equal(cosched.AsSteps(25, cosched.Ns), done)
}

func TestClockCyclesIndependentCounters(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	// Two counters over the same shared edge trigger must not steal
	// edges from each other.
	times := make(map[int]cosched.Steps)
	monitor := func(name string, n int) {
		cosched.Start(s, name, func(ctx context.Context) (struct{}, error) {
			cc, err := s.ClockCycles(sig, n, true)
			if err != nil {
				return struct{}{}, err
			}
			if _, err := cosched.Await(ctx, cc); err != nil {
				return struct{}{}, err
			}
			times[n] = eng.Now()
			return struct{}{}, nil
		})
	}
	monitor("short", 2)
	monitor("long", 4)
	startClock(t, s, sig, 10)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(1, cosched.Us)))
	chk.Equal(cosched.AsSteps(10, cosched.Ns), times[2])
	chk.Equal(cosched.AsSteps(30, cosched.Ns), times[4])
}

func TestClockCyclesStartedFromWaker(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	// A task forked from inside an edge-resumed routine gets its own
	// full count, starting from the next qualifying edge.
	var first, second cosched.Steps
	cosched.Start(s, "outer", func(ctx context.Context) (struct{}, error) {
		cc, err := s.ClockCycles(sig, 2, true)
		if err != nil {
			return struct{}{}, err
		}
		if _, err := cosched.Await(ctx, cc); err != nil {
			return struct{}{}, err
		}
		first = eng.Now()
		inner := cosched.Start(s, "inner", func(ctx context.Context) (struct{}, error) {
			cc, err := s.ClockCycles(sig, 2, true)
			if err != nil {
				return struct{}{}, err
			}
			if _, err := cosched.Await(ctx, cc); err != nil {
				return struct{}{}, err
			}
			second = eng.Now()
			return struct{}{}, nil
		})
		_, err = cosched.Await(ctx, inner)
		return struct{}{}, err
	})
	startClock(t, s, sig, 10)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(1, cosched.Us)))
	chk.Equal(cosched.AsSteps(10, cosched.Ns), first)
	chk.Equal(cosched.AsSteps(30, cosched.Ns), second)
}

func TestClockCyclesValidation(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	sig := eng.NewSignal("top.clk", 1)
	bus := eng.NewSignal("top.data", 8)

	_, err := s.ClockCycles(sig, 0, true)
	chk.ErrorIs(err, cosched.ErrZeroCount)
	_, err = s.ClockCycles(sig, -3, true)
	chk.ErrorIs(err, cosched.ErrZeroCount)
	_, err = s.ClockCycles(bus, 5, true)
	chk.ErrorIs(err, cosched.ErrNotScalar)
}

func TestClockCyclesDescriptor(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	sig := eng.NewSignal("sample_module.clk", 1)

	rising, err := s.ClockCycles(sig, 10, true)
	chk.NoError(err)
	chk.Equal("ClockCycles(sample_module.clk, 10)", rising.String())

	falling, err := s.ClockCycles(sig, 10, false)
	chk.NoError(err)
	chk.Equal("ClockCycles(sample_module.clk, 10, falling)", falling.String())
}
