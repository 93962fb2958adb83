// Package caption drives the transcript ledger from recognition
// session signals and applies the session restart policy.
package caption

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of the recognition session
// adapter.
type State int

const (
	// StateUninitialized - No capability acquired yet.
	StateUninitialized State = iota
	// StateReady - Capability acquired, no session running.
	StateReady
	// StateListening - A recognition session is active.
	StateListening
	// StateEnded - The session ended; eligible for restart.
	StateEnded
	// StateDisabled - Platform judged incapable. Terminal, one-way.
	StateDisabled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateReady:
		return "READY"
	case StateListening:
		return "LISTENING"
	case StateEnded:
		return "ENDED"
	case StateDisabled:
		return "DISABLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if no further sessions can start.
func (s State) IsTerminal() bool {
	return s == StateDisabled
}

// Errors for invalid state transitions.
var (
	ErrDisabled = errors.New("recognition permanently disabled")
	ErrNotReady = errors.New("recognition capability not initialized")
)

// Lifecycle manages the adapter's state machine.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	UNINITIALIZED → READY → LISTENING ⇄ ENDED
//	      │           │         │         │
//	      └───────────┴─────────┴─────────┴──→ DISABLED (terminal)
//
// Rules:
//   - READY/ENDED: a session may start (transitions to LISTENING)
//   - LISTENING: the active session may end (transitions to ENDED)
//   - DISABLED: one-way; every transition attempt fails
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

// NewLifecycle creates a lifecycle in UNINITIALIZED state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateUninitialized}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// CanStart returns true if a session may be started.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateReady || l.state == StateEnded
}

// IsDisabled returns true once the terminal state was reached.
func (l *Lifecycle) IsDisabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateDisabled
}

// MarkReady records successful capability acquisition.
// Returns ErrDisabled once disabled.
func (l *Lifecycle) MarkReady() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateDisabled {
		return ErrDisabled
	}
	l.state = StateReady
	return nil
}

// MarkListening validates and transitions into an active session.
func (l *Lifecycle) MarkListening() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateReady, StateEnded:
		l.state = StateListening
		return nil
	case StateDisabled:
		return ErrDisabled
	case StateUninitialized:
		return ErrNotReady
	default:
		// Already listening; engines occasionally double-fire start.
		return nil
	}
}

// MarkEnded records the active session ending. No-op once disabled.
func (l *Lifecycle) MarkEnded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateDisabled {
		return
	}
	l.state = StateEnded
}

// Disable transitions to the terminal DISABLED state.
// Returns true on the first call, false once already disabled, so the
// caller can gate its one-time fatal notification.
func (l *Lifecycle) Disable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateDisabled {
		return false
	}
	l.state = StateDisabled
	return true
}
