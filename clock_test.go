// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched_test

import (
	"context"
	"testing"

	"github.com/cohdl/cosched"
	"github.com/stretchr/testify/require"
)

func TestClockWaveform(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	const periods = 1000
	var last cosched.Steps
	mon := cosched.Start(s, "monitor", func(ctx context.Context) (struct{}, error) {
		rising, err := s.RisingEdge(sig)
		if err != nil {
			return struct{}{}, err
		}
		for i := 0; i < periods; i++ {
			if _, err := cosched.Await(ctx, rising); err != nil {
				return struct{}{}, err
			}
			last = eng.Now()
		}
		return struct{}{}, nil
	})

	clk, err := cosched.NewClock(sig, 10, cosched.Ns)
	chk.NoError(err)
	chk.Equal("Clock(top.clk, 10 ns)", clk.String())
	clk.Start(s)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(20, cosched.Us)))
	chk.True(mon.Done())
	_, err = mon.Result()
	chk.NoError(err)
	// Rising edges at 0, 10, ..., so the thousandth lands at 9990ns.
	chk.Equal(cosched.AsSteps((periods-1)*10, cosched.Ns), last)
	chk.NoError(s.Failure())
}

func TestClockKillStopsToggling(t *testing.T) {
	chk := require.New(t)
	eng, s := newBench(t)
	ctx := context.Background()
	sig := eng.NewSignal("top.clk", 1)

	clk, err := cosched.NewClock(sig, 10, cosched.Ns)
	chk.NoError(err)
	task := clk.Start(s)

	chk.NoError(eng.RunUntil(ctx, cosched.AsSteps(42, cosched.Ns)))
	task.Kill()
	frozen := sig.Value()

	// With the clock dead the simulation has no further stimulus.
	chk.NoError(eng.Run(ctx))
	chk.Equal(frozen, sig.Value())
	chk.NoError(s.Failure())
}

func TestClockValidation(t *testing.T) {
	chk := require.New(t)
	eng, _ := newBench(t)
	sig := eng.NewSignal("top.clk", 1)
	bus := eng.NewSignal("top.data", 8)

	_, err := cosched.NewClock(bus, 10, cosched.Ns)
	chk.ErrorIs(err, cosched.ErrNotScalar)
	_, err = cosched.NewClock(sig, 7, cosched.Ns)
	chk.ErrorIs(err, cosched.ErrOddPeriod)
	_, err = cosched.NewClock(sig, 0, cosched.Ns)
	chk.ErrorIs(err, cosched.ErrOddPeriod)
	chk.Panics(func() {
		_, _ = cosched.NewClock(nil, 10, cosched.Ns)
	})
}
