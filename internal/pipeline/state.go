package pipeline

import "fmt"

// State is a step of a run.
type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateFiltering   State = "filtering"
	StateSummarizing State = "summarizing"
	StateAssembling  State = "assembling"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

var next = map[State]State{
	StatePending:     StateFetching,
	StateFetching:    StateFiltering,
	StateFiltering:   StateSummarizing,
	StateSummarizing: StateAssembling,
	StateAssembling:  StateDone,
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// canMove reports whether from -> to is allowed: forward by one step, or to
// Failed from any non-terminal state.
func canMove(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return next[from] == to
}

// Transition is one recorded state change.
type Transition struct {
	RunID string
	From  State
	To    State
	Err   error
}

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s -> %s", t.RunID, t.From, t.To)
}
