// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"

	"github.com/cohdl/cosched"
)

// Signal is an observable, writable simulated net. Writes take effect
// immediately, but edge notifications are queued as zero-delay events:
// a watcher's callback never runs inside SetValue itself.
type Signal struct {
	eng      *Engine
	path     string
	width    int
	value    uint64
	watchers []*registration
}

// NewSignal creates a signal on this engine with the given hierarchical
// path and bit width (1..64). The initial value is zero.
func (e *Engine) NewSignal(path string, width int) *Signal {
	if width < 1 || width > 64 {
		panic(fmt.Sprintf("signal width %d out of range [1,64]", width))
	}
	return &Signal{eng: e, path: path, width: width}
}

func (s *Signal) Path() string     { return s.path }
func (s *Signal) Width() int       { return s.width }
func (s *Signal) Value() uint64    { return s.value }
func (s *Signal) Observable() bool { return true }

func (s *Signal) String() string { return s.path }

// SetValue writes the signal, masking to its width. Writing the current
// value is a no-op and produces no edge.
func (s *Signal) SetValue(v uint64) {
	v &= s.mask()
	old := s.value
	if v == old {
		return
	}
	s.value = v
	keep := s.watchers[:0]
	for _, reg := range s.watchers {
		switch {
		case reg.cancelled:
		case edgeMatches(reg.kind, old, v):
			s.eng.push(s.eng.now, reg)
		default:
			keep = append(keep, reg)
		}
	}
	for i := len(keep); i < len(s.watchers); i++ {
		s.watchers[i] = nil
	}
	s.watchers = keep
}

func (s *Signal) mask() uint64 {
	if s.width == 64 {
		return ^uint64(0)
	}
	return 1<<s.width - 1
}

// edgeMatches reports whether a transition old->new satisfies the
// requested edge kind. Callers guarantee old != new.
func edgeMatches(kind cosched.EdgeKind, old, new uint64) bool {
	switch kind {
	case cosched.EdgeRising:
		return old == 0 && new == 1
	case cosched.EdgeFalling:
		return old == 1 && new == 0
	default:
		return true
	}
}

// Const is a read-only, non-observable handle. Useful for modelling
// parameters and tie-offs; edge triggers cannot be constructed on it.
type Const struct {
	path  string
	width int
	value uint64
}

// NewConst creates a constant handle. It is not bound to any engine.
func NewConst(path string, width int, value uint64) *Const {
	return &Const{path: path, width: width, value: value}
}

func (c *Const) Path() string     { return c.path }
func (c *Const) Width() int       { return c.width }
func (c *Const) Value() uint64    { return c.value }
func (c *Const) Observable() bool { return false }

func (c *Const) String() string { return c.path }
