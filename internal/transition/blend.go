package transition

import (
	"image"
	"math"

	"specs-overlay-engine/internal/geom"
	"specs-overlay-engine/internal/raster"
)

// View is the live overlay geometry a blend reads on every tick. Position
// and scale are sampled at render time, not snapshotted at transition
// start, so caller updates mid-transition take effect immediately.
type View struct {
	Position geom.Vec2
	Scale    float64
}

// Blend draws one step of the transition for kind onto s with eased
// progress p in [0,1]. Every path restores the surface's global alpha to
// 1.0 (DrawFrame guarantees this).
func Blend(s *raster.Surface, kind Kind, outgoing, incoming *image.NRGBA, v View, p float64) {
	switch kind {
	case Fade:
		blendFade(s, outgoing, incoming, v, p)
	case Slide:
		blendSlide(s, outgoing, incoming, v, p)
	case Zoom:
		blendZoom(s, outgoing, incoming, v, p)
	case Flip:
		blendFlip(s, outgoing, incoming, v, p)
	}
}

// blendFade cross-fades: the outgoing frame is gone by p=0.5, by which
// point the incoming frame is fully opaque.
func blendFade(s *raster.Surface, out, in *image.NRGBA, v View, p float64) {
	ramp := math.Min(2*p, 1)
	if p < 0.5 {
		s.DrawFrame(out, v.Position, v.Scale, 1-ramp)
	}
	if p > 0 {
		s.DrawFrame(in, v.Position, v.Scale, ramp)
	}
}

// blendSlide shifts the outgoing frame left while the incoming frame
// converges from the right. The travel distance is 30% of surface width.
func blendSlide(s *raster.Surface, out, in *image.NRGBA, v View, p float64) {
	d := float64(s.Size().Width) * 0.3
	outPos := geom.Vec2{X: v.Position.X - d*p, Y: v.Position.Y}
	inPos := geom.Vec2{X: v.Position.X + d*(1-p), Y: v.Position.Y}
	s.DrawFrame(out, outPos, v.Scale, 1-p)
	s.DrawFrame(in, inPos, v.Scale, p)
}

// blendZoom shrinks the outgoing frame away while the incoming frame grows
// from 80% to full scale. The two windows overlap in [0.4, 0.6].
func blendZoom(s *raster.Surface, out, in *image.NRGBA, v View, p float64) {
	if p < 0.6 {
		t := p / 0.6
		s.DrawFrame(out, v.Position, v.Scale*(1-0.5*t), 1-t)
	}
	if p > 0.4 {
		t := (p - 0.4) / 0.6
		s.DrawFrame(in, v.Position, v.Scale*(0.8+0.2*t), math.Min(2*t, 1))
	}
}

// blendFlip is a scale-only pseudo-3D flip: |cos(p·π)| collapses the
// rendered width through zero at the midpoint, where the frames swap.
func blendFlip(s *raster.Surface, out, in *image.NRGBA, v View, p float64) {
	sx := math.Abs(math.Cos(p * math.Pi))
	if p < 0.5 {
		s.DrawFrameXY(out, v.Position, v.Scale*sx, v.Scale, 1-2*p)
	} else {
		s.DrawFrameXY(in, v.Position, v.Scale*sx, v.Scale, 2*(p-0.5))
	}
}
