// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched_test

import (
	"context"
	"testing"

	"github.com/cohdl/cosched"
	"github.com/cohdl/cosched/sim"
)

// newBench wires an in-process engine to a fresh scheduler for one test.
func newBench(t testing.TB, opts ...cosched.Option) (*sim.Engine, *cosched.Scheduler) {
	t.Helper()
	eng := sim.New()
	s := cosched.New(context.Background(), eng, opts...)
	t.Cleanup(s.Shutdown)
	return eng, s
}
