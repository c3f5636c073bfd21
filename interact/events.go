package interact

import "galaxy/core"

// Event is an input delivered by a host. Positions are screen coordinates.
type Event interface {
	event()
}

// PointerDown is a button press. Shift is the modifier that starts a column drag.
type PointerDown struct {
	Pos   core.Point
	Shift bool
}

// PointerMove is a pointer motion, with or without a button held.
type PointerMove struct {
	Pos core.Point
}

// PointerUp is a button release.
type PointerUp struct {
	Pos core.Point
}

// PointerLeave means the pointer left the container.
type PointerLeave struct{}

// Resize means the container changed size.
type Resize struct {
	Width  float64
	Height float64
}

// Zoom scales the view by Factor around At.
type Zoom struct {
	At     core.Point
	Factor float64
}

// Pan shifts the view by a screen delta.
type Pan struct {
	DX float64
	DY float64
}

func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}
func (PointerLeave) event() {}
func (Resize) event()       {}
func (Zoom) event()         {}
func (Pan) event()          {}
