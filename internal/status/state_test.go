package status

import (
	"testing"

	"github.com/msgtrik/trik/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != LoggedOut {
		t.Errorf("initial state = %s, want LOGGED_OUT", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{LoggedOut, Authenticating},
		{Authenticating, Active},
		{Authenticating, LoggedOut},
		{Active, Refreshing},
		{Active, Expired},
		{Active, LoggedOut},
		{Refreshing, Active},
		{Refreshing, Expired},
		{Expired, LoggedOut},
		{Expired, Authenticating},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Active); err == nil {
		t.Error("Transition(LOGGED_OUT -> ACTIVE) should fail; must authenticate first")
	}
	if m.Current() != LoggedOut {
		t.Errorf("state = %s, want LOGGED_OUT (should not have changed)", m.Current())
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Authenticating); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindStatusChanged {
		t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != LoggedOut || change.To != Authenticating {
		t.Errorf("change = %v -> %v, want LOGGED_OUT -> AUTHENTICATING", change.From, change.To)
	}
}

// TestAuthFailureLifecycle simulates a 401 surviving the refresh retry:
// ACTIVE → REFRESHING → EXPIRED → LOGGED_OUT.
func TestAuthFailureLifecycle(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Active)

	steps := []State{Refreshing, Expired, LoggedOut}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != LoggedOut {
		t.Errorf("final state = %s, want LOGGED_OUT", m.Current())
	}
}

// TestReturningUserLifecycle simulates a stored snapshot restoring a session:
// LOGGED_OUT → AUTHENTICATING → ACTIVE.
func TestReturningUserLifecycle(t *testing.T) {
	m := NewMachine(nil)

	steps := []State{Authenticating, Active}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Active {
		t.Errorf("final state = %s, want ACTIVE", m.Current())
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		LoggedOut:      {},
		Authenticating: {Authenticating},
		Active:         {Authenticating, Active},
		Refreshing:     {Authenticating, Active, Refreshing},
		Expired:        {Authenticating, Active, Expired},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
