package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Manager routes inbound events to the right height's Dispatcher and bounds
// how many heights' Dispatchers the caller keeps resident at once. A height's
// driver keeps every RoundState it created (§4.4), and a decided height keeps
// them while ignoring every further event, so an unbounded map of them
// across many heights leaks memory over a long-running process; Manager evicts the least-recently-touched heights the same way
// the teacher bounds its message/value caches (hashicorp/golang-lru).
type Manager struct {
	heights *lru.Cache[uint64, *Dispatcher]
}

// NewManager builds a Manager retaining at most capacity heights' worth of
// Dispatcher state at a time.
func NewManager(capacity int) (*Manager, error) {
	c, err := lru.New[uint64, *Dispatcher](capacity)
	if err != nil {
		return nil, err
	}
	return &Manager{heights: c}, nil
}

// StartHeight constructs and registers a new height's Dispatcher, evicting
// the least-recently-touched height if the Manager is already at capacity.
func (m *Manager) StartHeight(ev Start) []Action {
	d, actions := NewDispatcher(ev)
	m.heights.Add(ev.Height, d)
	return actions
}

// Step routes ev to the named height's Dispatcher, returning false if no
// Dispatcher is registered for that height (e.g. it was evicted or never
// started).
func (m *Manager) Step(height uint64, ev Event) ([]Action, bool) {
	d, ok := m.heights.Get(height)
	if !ok {
		return nil, false
	}
	return d.Step(ev), true
}

// Forget drops a height's Dispatcher immediately, e.g. once the caller knows
// the height has decided (a decided height ignores every further event).
func (m *Manager) Forget(height uint64) {
	m.heights.Remove(height)
}

// Len reports how many heights' Dispatchers are currently resident.
func (m *Manager) Len() int {
	return m.heights.Len()
}
