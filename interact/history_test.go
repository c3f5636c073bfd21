package interact

import (
	"testing"

	"galaxy/diagram"
)

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(10)
	h.Save(diagram.ColumnOrder{0, 1, 2})
	h.Save(diagram.ColumnOrder{1, 0, 2})
	h.Save(diagram.ColumnOrder{1, 2, 0})

	if cur, total := h.Stats(); cur != 3 || total != 3 {
		t.Errorf("Stats() = %d/%d, want 3/3", cur, total)
	}

	order, ok := h.Undo()
	if !ok || !order.Equal(diagram.ColumnOrder{1, 0, 2}) {
		t.Errorf("Undo = %v, %v", order, ok)
	}
	order[0] = 99 // returned orders are copies
	order, _ = h.Undo()
	if !order.Equal(diagram.ColumnOrder{0, 1, 2}) {
		t.Errorf("second Undo = %v", order)
	}
	if _, ok := h.Undo(); ok {
		t.Error("cannot undo past the first state")
	}

	order, ok = h.Redo()
	if !ok || !order.Equal(diagram.ColumnOrder{1, 0, 2}) {
		t.Errorf("Redo = %v, %v", order, ok)
	}

	// a new state drops the redo branch
	h.Save(diagram.ColumnOrder{2, 1, 0})
	if h.CanRedo() {
		t.Error("saving should truncate redo states")
	}
}

func TestHistorySkipsDuplicatesAndIsBounded(t *testing.T) {
	h := NewHistory(3)
	h.Save(diagram.ColumnOrder{0, 1})
	h.Save(diagram.ColumnOrder{0, 1})
	if _, total := h.Stats(); total != 1 {
		t.Errorf("duplicate save should be ignored, total = %d", total)
	}

	h.Save(diagram.ColumnOrder{1, 0})
	h.Save(diagram.ColumnOrder{0, 1})
	h.Save(diagram.ColumnOrder{1, 0})
	if cur, total := h.Stats(); cur != 3 || total != 3 {
		t.Errorf("Stats() = %d/%d, want 3/3", cur, total)
	}

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("cleared history should be empty")
	}
}
