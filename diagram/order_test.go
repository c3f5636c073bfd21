package diagram

import "testing"

func TestColumnOrderMove(t *testing.T) {
	tests := []struct {
		name    string
		col     int
		slot    int
		want    ColumnOrder
		changed bool
	}{
		{"move first to third", 0, 2, ColumnOrder{1, 2, 0, 3}, true},
		{"move last to second", 3, 1, ColumnOrder{0, 3, 1, 2}, true},
		{"move to end", 1, 3, ColumnOrder{0, 2, 3, 1}, true},
		{"unchanged slot", 2, 2, ColumnOrder{0, 1, 2, 3}, false},
		{"slot past end", 1, 4, ColumnOrder{0, 1, 2, 3}, false},
		{"negative slot", 1, -1, ColumnOrder{0, 1, 2, 3}, false},
		{"unknown column", 9, 0, ColumnOrder{0, 1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewColumnOrder(4)
			changed := order.Move(tt.col, tt.slot)
			if changed != tt.changed {
				t.Errorf("Move returned %v, want %v", changed, tt.changed)
			}
			if !order.Equal(tt.want) {
				t.Errorf("order = %v, want %v", order, tt.want)
			}
			if err := order.Validate(4); err != nil {
				t.Errorf("order no longer a permutation: %v", err)
			}
		})
	}
}

func TestParseColumnOrder(t *testing.T) {
	order, err := ParseColumnOrder("2, 0,1", 3)
	if err != nil {
		t.Fatalf("ParseColumnOrder failed: %v", err)
	}
	if !order.Equal(ColumnOrder{2, 0, 1}) {
		t.Errorf("order = %v", order)
	}
	if order.String() != "2,0,1" {
		t.Errorf("String = %q", order.String())
	}

	empty, err := ParseColumnOrder("", 2)
	if err != nil || !empty.Equal(ColumnOrder{0, 1}) {
		t.Errorf("empty input should give identity order, got %v, %v", empty, err)
	}

	for _, bad := range []string{"0,0,1", "0,1", "0,1,3", "a,b,c"} {
		if _, err := ParseColumnOrder(bad, 3); err == nil {
			t.Errorf("ParseColumnOrder(%q) should fail", bad)
		}
	}
}

func TestColumnOrderSlot(t *testing.T) {
	order := ColumnOrder{2, 0, 1}
	if order.Slot(2) != 0 || order.Slot(1) != 2 {
		t.Errorf("unexpected slots for %v", order)
	}
	if order.Slot(7) != -1 {
		t.Errorf("missing column should report -1")
	}

	clone := order.Clone()
	clone.Move(2, 2)
	if !order.Equal(ColumnOrder{2, 0, 1}) {
		t.Errorf("Clone must be independent, original changed to %v", order)
	}
}
