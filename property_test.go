// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched_test

import (
	"context"
	"testing"

	"github.com/cohdl/cosched"
	"github.com/cohdl/cosched/sim"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClockCyclesTimingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		half := rapid.Uint64Range(1, 50).Draw(t, "half")
		n := rapid.IntRange(1, 20).Draw(t, "n")
		period := 2 * half

		eng := sim.New()
		s := cosched.New(context.Background(), eng)
		defer s.Shutdown()
		sig := eng.NewSignal("top.clk", 1)

		var done cosched.Steps
		mon := cosched.Start(s, "monitor", func(ctx context.Context) (struct{}, error) {
			cc, err := s.ClockCycles(sig, n, true)
			if err != nil {
				return struct{}{}, err
			}
			if _, err := cosched.Await(ctx, cc); err != nil {
				return struct{}{}, err
			}
			done = eng.Now()
			return struct{}{}, nil
		})
		clk, err := cosched.NewClock(sig, period, cosched.Ns)
		chk.NoError(err)
		clk.Start(s)

		horizon := cosched.AsSteps(uint64(n+1)*period, cosched.Ns)
		chk.NoError(eng.RunUntil(context.Background(), horizon))
		chk.True(mon.Done())
		_, err = mon.Result()
		chk.NoError(err)
		// The monitor subscribes before the clock's first rising edge at
		// time zero, so n edges complete after n-1 further periods.
		chk.Equal(cosched.AsSteps(uint64(n-1)*period, cosched.Ns), done)
	})
}

func TestFirstWinnerIsEarliestTimerProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		delays := rapid.SliceOfNDistinct(
			rapid.Uint64Range(1, 1_000), 2, 6, rapid.ID,
		).Draw(t, "delays")

		eng := sim.New()
		s := cosched.New(context.Background(), eng)
		defer s.Shutdown()

		min := delays[0]
		for _, d := range delays[1:] {
			if d < min {
				min = d
			}
		}

		var (
			res  cosched.FirstResult
			woke cosched.Steps
		)
		timers := make([]*cosched.Timer, len(delays))
		task := cosched.Start(s, "racer", func(ctx context.Context) (struct{}, error) {
			aws := make([]cosched.Awaitable, len(delays))
			for i, d := range delays {
				tm, err := s.Timer(d, cosched.Ns)
				if err != nil {
					return struct{}{}, err
				}
				timers[i] = tm
				aws[i] = tm
			}
			first, err := s.First(aws...)
			if err != nil {
				return struct{}{}, err
			}
			v, err := cosched.Await(ctx, first)
			if err != nil {
				return struct{}{}, err
			}
			res = v.(cosched.FirstResult)
			woke = eng.Now()
			return struct{}{}, nil
		})

		chk.NoError(eng.Run(context.Background()))
		chk.True(task.Done())
		_, err := task.Result()
		chk.NoError(err)
		chk.Equal(cosched.AsSteps(min, cosched.Ns), woke)
		winner := res.Winner.(*cosched.Timer)
		chk.Equal(cosched.AsSteps(min, cosched.Ns), winner.Delay())
		for _, tm := range timers {
			if tm != winner {
				chk.False(tm.Fired())
			}
		}
	})
}
