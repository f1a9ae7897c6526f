package engine

import "sync"

// gate is a binary signal the run loop blocks on at the start of each cycle.
// Open lets waiters through immediately; Close makes the next Wait block
// until the gate reopens. This is what makes pause take effect only at cycle
// boundaries, never mid-keystroke-sequence.
type gate struct {
	mu   sync.Mutex
	open bool
	ch   chan struct{}
}

func newGate(open bool) *gate {
	g := &gate{open: open, ch: make(chan struct{})}
	if open {
		close(g.ch)
	}
	return g
}

// Open releases all current and future waiters.
func (g *gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		g.open = true
		close(g.ch)
	}
}

// Close makes subsequent Waits block.
func (g *gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		g.open = false
		g.ch = make(chan struct{})
	}
}

// Wait blocks until the gate is open.
func (g *gate) Wait() {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	<-ch
}
