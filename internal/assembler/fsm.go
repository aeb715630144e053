package assembler

import (
	"errors"
	"fmt"
)

// State is a stage of the scheduling wizard.
type State string

const (
	StateDateSelected     State = "DATE_SELECTED"
	StateStaffSelected    State = "STAFF_SELECTED"
	StateBookingsSelected State = "BOOKINGS_SELECTED"
	StateSolving          State = "SOLVING"
	StateResultReady      State = "RESULT_READY"
	StateSolveFailed      State = "SOLVE_FAILED"
)

// ErrIllegalTransition is returned when a step is attempted out of order.
var ErrIllegalTransition = errors.New("illegal state transition")

// FSM holds the allowed wizard transitions. Only SOLVE_FAILED may go back.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the wizard FSM.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateDateSelected:     {StateStaffSelected},
			StateStaffSelected:    {StateStaffSelected, StateBookingsSelected},
			StateBookingsSelected: {StateBookingsSelected, StateSolving},
			StateSolving:          {StateResultReady, StateSolveFailed},
			StateSolveFailed:      {StateBookingsSelected},
			StateResultReady:      {},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Next validates from -> to and returns to.
func (f *FSM) Next(from, to State) (State, error) {
	if !f.CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return to, nil
}
