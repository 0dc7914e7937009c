// Package history implements the course builder's undo/redo stack.
//
// Every function is pure: it takes a State by value and returns a new State whose
// slices never alias the input's, so callers can hold on to old states freely.
package history

import "github.com/dmhernandez2525/learning-hall/internal/domain/builder"

// State is one frame of the undo/redo stack. Past is oldest first; Future holds the
// most recently undone snapshot first.
type State struct {
	Past    []builder.Snapshot `json:"past"`
	Present builder.Snapshot   `json:"present"`
	Future  []builder.Snapshot `json:"future"`
}

func New(initial builder.Snapshot) State {
	return State{
		Past:    []builder.Snapshot{},
		Present: initial.Clone(),
		Future:  []builder.Snapshot{},
	}
}

// Push records snap as the new present. It always pushes, even when snap equals Present.
func Push(state State, snap builder.Snapshot) State {
	past := make([]builder.Snapshot, len(state.Past), len(state.Past)+1)
	copy(past, state.Past)
	past = append(past, state.Present)
	return State{
		Past:    past,
		Present: snap.Clone(),
		Future:  []builder.Snapshot{},
	}
}

// Undo steps back one snapshot. With nothing to undo it returns state unchanged.
func Undo(state State) State {
	if len(state.Past) == 0 {
		return state
	}
	last := len(state.Past) - 1
	past := make([]builder.Snapshot, last)
	copy(past, state.Past[:last])

	future := make([]builder.Snapshot, 0, len(state.Future)+1)
	future = append(future, state.Present)
	future = append(future, state.Future...)

	return State{Past: past, Present: state.Past[last], Future: future}
}

// Redo re-applies the most recently undone snapshot. With nothing to redo it returns
// state unchanged.
func Redo(state State) State {
	if len(state.Future) == 0 {
		return state
	}
	past := make([]builder.Snapshot, len(state.Past), len(state.Past)+1)
	copy(past, state.Past)
	past = append(past, state.Present)

	future := make([]builder.Snapshot, len(state.Future)-1)
	copy(future, state.Future[1:])

	return State{Past: past, Present: state.Future[0], Future: future}
}

func CanUndo(state State) bool { return len(state.Past) > 0 }

func CanRedo(state State) bool { return len(state.Future) > 0 }

// Limit drops the oldest past entries so at most max remain. max <= 0 disables the cap.
func Limit(state State, max int) State {
	if max <= 0 || len(state.Past) <= max {
		return state
	}
	past := make([]builder.Snapshot, max)
	copy(past, state.Past[len(state.Past)-max:])
	future := make([]builder.Snapshot, len(state.Future))
	copy(future, state.Future)
	return State{Past: past, Present: state.Present, Future: future}
}
