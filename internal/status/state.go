package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/msgtrik/trik/internal/bus"
)

// State represents the client session lifecycle.
type State string

const (
	LoggedOut      State = "LOGGED_OUT"
	Authenticating State = "AUTHENTICATING"
	Active         State = "ACTIVE"
	Refreshing     State = "REFRESHING"
	Expired        State = "EXPIRED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	LoggedOut:      {Authenticating},
	Authenticating: {Active, LoggedOut},
	Active:         {Refreshing, Expired, LoggedOut},
	Refreshing:     {Active, Expired},
	Expired:        {LoggedOut, Authenticating},
}

// Machine tracks and enforces session lifecycle transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting logged out.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: LoggedOut,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindStatusChanged,
			Timestamp: time.Now(),
			Payload: StatusChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
