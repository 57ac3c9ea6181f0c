package raster

import (
	"image"
	"math"

	"specs-overlay-engine/internal/geom"
)

// Surface is the 2D drawing target the engine composites onto. It owns an
// NRGBA pixel buffer sized to the base image plus a global alpha value that
// every draw multiplies into its pixels. The global alpha is restored to 1.0
// after each draw so it never leaks into subsequent calls.
type Surface struct {
	img         *image.NRGBA
	globalAlpha float64
}

// NewSurface allocates a transparent surface of the given pixel dimensions.
func NewSurface(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{
		img:         image.NewNRGBA(image.Rect(0, 0, w, h)),
		globalAlpha: 1.0,
	}
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() geom.Size {
	b := s.img.Bounds()
	return geom.Size{Width: b.Dx(), Height: b.Dy()}
}

// Image exposes the pixel buffer for snapshots and encoding. Callers must
// not retain the returned image across a Resize.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// GlobalAlpha returns the current global alpha. Outside of a draw call this
// is always 1.0.
func (s *Surface) GlobalAlpha() float64 {
	return s.globalAlpha
}

// Resize reallocates the pixel buffer. Previous contents are discarded.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.img = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Clear wipes the surface to fully transparent black.
func (s *Surface) Clear() {
	pix := s.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// DrawBase draws the base image at the origin. The surface is expected to be
// sized to the base image; pixels outside the surface are clipped.
func (s *Surface) DrawBase(img image.Image) {
	if img == nil {
		return
	}
	drawSrc(s.img, img)
}

// DrawFrame draws img centered at pos with a uniform scale and the given
// alpha. Top-left lands at (pos.X - w/2, pos.Y - h/2) where w,h are the
// image's natural size times scale.
func (s *Surface) DrawFrame(img image.Image, pos geom.Vec2, scale, alpha float64) {
	s.DrawFrameXY(img, pos, scale, scale, alpha)
}

// DrawFrameXY is DrawFrame with independent horizontal and vertical scale
// factors. The flip transition uses it to collapse the rendered width while
// keeping the height.
//
// Degenerate inputs (zero or negative scaled extent, NaN) draw nothing; the
// engine performs no validation on caller-provided scale or position.
func (s *Surface) DrawFrameXY(img image.Image, pos geom.Vec2, scaleX, scaleY, alpha float64) {
	if img == nil {
		return
	}

	s.globalAlpha = alpha
	defer func() { s.globalAlpha = 1.0 }()

	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	nb := img.Bounds()
	w := float64(nb.Dx()) * scaleX
	h := float64(nb.Dy()) * scaleY
	dw := int(math.Round(w))
	dh := int(math.Round(h))
	if dw < 1 || dh < 1 || math.IsNaN(w) || math.IsNaN(h) {
		return
	}

	scaled := scaleImage(img, dw, dh)

	x0 := int(math.Round(pos.X - w/2))
	y0 := int(math.Round(pos.Y - h/2))
	compositeOver(s.img, scaled, x0, y0, alpha)
}

// FrameBounds returns the rectangle DrawFrame would cover for img at pos and
// scale. Used for pointer hit-testing.
func FrameBounds(img image.Image, pos geom.Vec2, scale float64) geom.Rect {
	if img == nil {
		return geom.Rect{}
	}
	nb := img.Bounds()
	return geom.RectAround(pos, float64(nb.Dx())*scale, float64(nb.Dy())*scale)
}
