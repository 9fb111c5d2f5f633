// Package hydration tracks whether it is safe to render output that may
// differ between the pre-rendered page and the live client render, such as
// locale-formatted timestamps.
package hydration

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle of a Gate.
type State int32

const (
	// Pending is the initial state: nothing divergent may be rendered.
	Pending State = iota
	// Ready is terminal.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "pending"
}

// Gate is a one-way pending -> ready switch. The zero value is not usable;
// construct with NewGate.
type Gate struct {
	state atomic.Int32
	once  sync.Once
}

func NewGate() *Gate {
	return &Gate{}
}

// NewReadyGate returns a gate that has already transitioned.
func NewReadyGate() *Gate {
	g := NewGate()
	g.MarkReady()
	return g
}

// MarkReady performs the transition. Only the first call has an effect and
// reports true.
func (g *Gate) MarkReady() bool {
	fired := false
	g.once.Do(func() {
		g.state.Store(int32(Ready))
		fired = true
	})
	return fired
}

func (g *Gate) State() State {
	return State(g.state.Load())
}

func (g *Gate) Ready() bool {
	return g.State() == Ready
}
