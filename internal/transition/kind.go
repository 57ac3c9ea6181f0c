// Package transition animates the switch between two frame images. A small
// IDLE/RUNNING state machine drives one of four blend algorithms through a
// per-tick scheduler callback over a fixed per-kind duration.
package transition

import (
	"fmt"
	"time"
)

// Kind selects the blend algorithm for a frame switch.
type Kind int

const (
	Fade Kind = iota
	Slide
	Zoom
	Flip
)

func (k Kind) String() string {
	switch k {
	case Fade:
		return "fade"
	case Slide:
		return "slide"
	case Zoom:
		return "zoom"
	case Flip:
		return "flip"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Duration returns the fixed animation length for the kind.
func (k Kind) Duration() time.Duration {
	switch k {
	case Fade:
		return 400 * time.Millisecond
	case Slide:
		return 500 * time.Millisecond
	case Zoom:
		return 600 * time.Millisecond
	case Flip:
		return 700 * time.Millisecond
	}
	return 400 * time.Millisecond
}

// ParseKind maps a kind name to its Kind. Unknown names are an error rather
// than a silent no-op.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "fade", "":
		return Fade, nil
	case "slide":
		return Slide, nil
	case "zoom":
		return Zoom, nil
	case "flip":
		return Flip, nil
	}
	return Fade, fmt.Errorf("transition: unknown kind %q", s)
}
