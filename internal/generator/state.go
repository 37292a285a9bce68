package generator

import (
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// Phase is the coordinator lifecycle position.
type Phase int

const (
	Idle Phase = iota
	Generating
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State is the coordinator's application state. Transitions are pure: each
// returns a new State and never mutates the receiver.
type State struct {
	Phase Phase
	// Last is the most recent successful output. Failures keep it.
	Last *render.Surface
	// Err is the cause of the last failure, cleared on Begin.
	Err error
}

// Begin moves to Generating. It fails with ErrAlreadyInProgress, returning
// the state unchanged, when a generation is already running.
func (s State) Begin() (State, error) {
	if s.Phase == Generating {
		return s, ErrAlreadyInProgress
	}
	s.Phase = Generating
	s.Err = nil
	return s, nil
}

// Succeed records out as the latest output.
func (s State) Succeed(out *render.Surface) State {
	s.Phase = Succeeded
	s.Last = out
	s.Err = nil
	return s
}

// Fail records err and leaves the previous output in place.
func (s State) Fail(err error) State {
	s.Phase = Failed
	s.Err = err
	return s
}

// Settle returns a finished state to Idle. Other phases are unchanged.
func (s State) Settle() State {
	if s.Phase == Succeeded || s.Phase == Failed {
		s.Phase = Idle
	}
	return s
}
