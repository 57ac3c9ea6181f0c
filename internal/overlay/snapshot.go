package overlay

import (
	"fmt"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// Snapshot encodes the current composite as a WebP image.
func (e *Engine) Snapshot(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrDestroyed
	}
	if err := nativewebp.Encode(w, e.surface.Image(), nil); err != nil {
		return fmt.Errorf("overlay: snapshot encode: %w", err)
	}
	return nil
}
