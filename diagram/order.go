package diagram

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnOrder is the left-to-right display sequence of notebook columns.
// It is the only source of horizontal position: geometry looks up a column's
// slot here and never uses the raw column index.
type ColumnOrder []int

// NewColumnOrder returns the identity order 0..n-1.
func NewColumnOrder(n int) ColumnOrder {
	order := make(ColumnOrder, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// ParseColumnOrder parses a comma separated list of column indices, e.g. "2,0,1".
func ParseColumnOrder(s string, n int) (ColumnOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewColumnOrder(n), nil
	}
	parts := strings.Split(s, ",")
	order := make(ColumnOrder, 0, len(parts))
	for _, part := range parts {
		col, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid column index %q: %w", part, err)
		}
		order = append(order, col)
	}
	if err := order.Validate(n); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate checks that the order is a permutation of 0..n-1.
func (o ColumnOrder) Validate(n int) error {
	if len(o) != n {
		return fmt.Errorf("column order has %d entries, want %d", len(o), n)
	}
	seen := make([]bool, n)
	for _, col := range o {
		if col < 0 || col >= n {
			return fmt.Errorf("column %d out of range [0,%d)", col, n)
		}
		if seen[col] {
			return fmt.Errorf("column %d appears twice", col)
		}
		seen[col] = true
	}
	return nil
}

// Slot returns the display position of a column, or -1 if it is not present.
func (o ColumnOrder) Slot(col int) int {
	for i, c := range o {
		if c == col {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy.
func (o ColumnOrder) Clone() ColumnOrder {
	out := make(ColumnOrder, len(o))
	copy(out, o)
	return out
}

// Equal reports whether two orders are identical.
func (o ColumnOrder) Equal(other ColumnOrder) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// Move removes col from its slot and reinserts it at slot. It returns false, leaving
// the order untouched, when the column is unknown, the slot is out of bounds, or the
// column already sits at that slot.
func (o ColumnOrder) Move(col, slot int) bool {
	from := o.Slot(col)
	if from < 0 || slot < 0 || slot >= len(o) || slot == from {
		return false
	}
	if from < slot {
		copy(o[from:slot], o[from+1:slot+1])
	} else {
		copy(o[slot+1:from+1], o[slot:from])
	}
	o[slot] = col
	return true
}

// String formats the order the way ParseColumnOrder reads it.
func (o ColumnOrder) String() string {
	parts := make([]string, len(o))
	for i, col := range o {
		parts[i] = strconv.Itoa(col)
	}
	return strings.Join(parts, ",")
}
