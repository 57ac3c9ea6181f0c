// Package input converts pointer and touch events into overlay position
// updates by hit-testing against the active frame's bounding box.
package input

import (
	"sync"

	"specs-overlay-engine/internal/geom"
)

// Target is the overlay surface the controller manipulates. The engine
// implements it; the controller never touches engine internals directly.
type Target interface {
	// FrameBounds returns the active frame's current bounding box, or
	// ok=false when no frame is active.
	FrameBounds() (r geom.Rect, ok bool)
	Position() geom.Vec2
	SetPosition(x, y float64)
}

// Controller tracks a single pointer. Touch events are normalized to the
// same handlers as mouse events; multi-touch is not modeled.
type Controller struct {
	mu         sync.Mutex
	target     Target
	dragging   bool
	dragOrigin geom.Vec2
	hover      bool
}

// NewController binds a controller to t.
func NewController(t Target) *Controller {
	return &Controller{target: t}
}

// PointerDown begins a drag when the pointer lands inside the frame's
// bounding box, capturing the pointer-to-center offset.
func (c *Controller) PointerDown(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return
	}
	bounds, ok := c.target.FrameBounds()
	if !ok || !bounds.Contains(geom.Vec2{X: x, Y: y}) {
		return
	}
	c.dragging = true
	c.dragOrigin = geom.Vec2{X: x, Y: y}.Sub(c.target.Position())
}

// PointerMove drags the frame when a drag is active; otherwise it only
// updates the hover affordance.
func (c *Controller) PointerMove(x, y float64) {
	c.mu.Lock()
	target := c.target
	dragging := c.dragging
	origin := c.dragOrigin
	c.mu.Unlock()

	if target == nil {
		return
	}
	if dragging {
		target.SetPosition(x-origin.X, y-origin.Y)
		return
	}

	bounds, ok := target.FrameBounds()
	c.mu.Lock()
	c.hover = ok && bounds.Contains(geom.Vec2{X: x, Y: y})
	c.mu.Unlock()
}

// PointerUp ends the drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
}

// PointerLeave ends the drag and clears hover.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	c.dragging = false
	c.hover = false
	c.mu.Unlock()
}

// TouchDown, TouchMove and TouchEnd normalize single-point touch input to
// the pointer handlers.
func (c *Controller) TouchDown(x, y float64) { c.PointerDown(x, y) }
func (c *Controller) TouchMove(x, y float64) { c.PointerMove(x, y) }
func (c *Controller) TouchEnd()              { c.PointerUp() }

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Hovering reports whether the pointer last moved over the frame.
func (c *Controller) Hovering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hover
}

// Detach unbinds the controller from its target. Events received after
// Detach are ignored. Idempotent.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.target = nil
	c.dragging = false
	c.hover = false
	c.mu.Unlock()
}
