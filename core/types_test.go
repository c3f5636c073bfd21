package core

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 5, Height: 6}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"top-left corner", Point{10, 20}, true},
		{"inside", Point{12, 23}, true},
		{"right edge is exclusive", Point{15, 22}, false},
		{"bottom edge is exclusive", Point{12, 26}, false},
		{"left of rect", Point{9.9, 22}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 5}

	got := a.Union(b)
	want := Rect{X: 0, Y: -5, Width: 15, Height: 15}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}

	if got := (Rect{}).Union(a); got != a {
		t.Errorf("empty union should return other rect, got %+v", got)
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Point{3, 4}
	if d := p.Distance(Point{}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if got := p.Sub(Point{1, 1}).Add(Point{1, 1}); got != p {
		t.Errorf("Sub/Add round trip = %v, want %v", got, p)
	}
}
