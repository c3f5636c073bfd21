package widget

import "galaxy/render"

// Headless is a container without a screen. It keeps the last frame and
// optionally forwards every frame to OnPresent. Exporters and network sessions
// draw through it.
type Headless struct {
	width, height float64
	last          *render.Frame

	OnPresent func(*render.Frame) error
}

// NewHeadless creates a container of the given size. A zero height lets the
// frame take the diagram height.
func NewHeadless(width, height float64) *Headless {
	return &Headless{width: max(width, 0), height: max(height, 0)}
}

func (h *Headless) Size() (float64, float64) { return h.width, h.height }

// Resize changes the size reported to the widget. The caller still has to send
// an interact.Resize event for the widget to relayout.
func (h *Headless) Resize(width, height float64) {
	h.width, h.height = max(width, 0), max(height, 0)
}

func (h *Headless) Present(f *render.Frame) error {
	h.last = f
	if h.OnPresent != nil {
		return h.OnPresent(f)
	}
	return nil
}

// Last returns the most recent frame, or nil before the first draw.
func (h *Headless) Last() *render.Frame { return h.last }
