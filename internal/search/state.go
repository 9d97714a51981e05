package search

import "sync"

// State is a run controller lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StateNextLength State = "next_length"
	StateFound      State = "found"
	StateExhausted  State = "exhausted"
)

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateFound || s == StateExhausted
}

type stateBox struct {
	mu     sync.Mutex
	state  State
	length int
}

func (b *stateBox) set(state State, length int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.length = length
}

func (b *stateBox) get() (State, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == "" {
		return StateIdle, 0
	}
	return b.state, b.length
}
