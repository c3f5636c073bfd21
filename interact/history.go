package interact

import "galaxy/diagram"

// History keeps the column orders a widget went through so reorders can be
// undone and redone. It lives as long as the widget and is never persisted.
type History struct {
	states  []diagram.ColumnOrder
	current int // Current position in history
	max     int // Maximum number of states to keep
}

// NewHistory creates a history holding at most max orders.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{
		states:  make([]diagram.ColumnOrder, 0, max),
		current: -1,
		max:     max,
	}
}

// Save records a new order and drops anything that could still be redone.
func (h *History) Save(order diagram.ColumnOrder) {
	if h.current >= 0 && h.states[h.current].Equal(order) {
		return
	}
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, order.Clone())

	// If we exceed max, remove oldest
	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}
}

// CanUndo returns true if we can undo
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if we can redo
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo steps back one order. ok is false when there is nothing to undo.
func (h *History) Undo() (diagram.ColumnOrder, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.current--
	return h.states[h.current].Clone(), true
}

// Redo steps forward one order.
func (h *History) Redo() (diagram.ColumnOrder, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.current++
	return h.states[h.current].Clone(), true
}

// Clear clears all history
func (h *History) Clear() {
	h.states = h.states[:0]
	h.current = -1
}

// Stats returns current position and total states
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
