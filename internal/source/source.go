// Package source provides image acquisition for the overlay engine: it
// fetches and decodes frame and base images from the local filesystem or
// over HTTP. The engine and cache only see the ImageSource interface.
package source

import (
	"context"
	"fmt"
	"image"
)

// ImageSource asynchronously yields a decoded raster image for a URL.
// Load blocks until the image is decoded or the context is done.
type ImageSource interface {
	Load(ctx context.Context, url string) (*image.NRGBA, error)
}

// LoadError reports an image fetch or decode failure for a specific URL.
// Load failures are surfaced to the immediate caller and never retried.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("source: load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
