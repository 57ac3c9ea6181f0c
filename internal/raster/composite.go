package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// drawSrc copies src onto dst at the origin, replacing destination pixels.
func drawSrc(dst *image.NRGBA, src image.Image) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(dst.Bounds().Min)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

// scaleImage resizes src to dw x dh with bilinear filtering.
func scaleImage(src image.Image, dw, dh int) *image.NRGBA {
	sb := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && sb.Dx() == dw && sb.Dy() == dh {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return dst
}

// compositeOver blends src onto dst at offset (x0,y0) with source-over
// semantics, multiplying every source alpha by m. Both images are
// non-premultiplied NRGBA.
func compositeOver(dst, src *image.NRGBA, x0, y0 int, m float64) {
	db := dst.Bounds()
	sb := src.Bounds()

	startX := max(db.Min.X, x0)
	startY := max(db.Min.Y, y0)
	endX := min(db.Max.X, x0+sb.Dx())
	endY := min(db.Max.Y, y0+sb.Dy())
	if startX >= endX || startY >= endY {
		return
	}

	for y := startY; y < endY; y++ {
		for x := startX; x < endX; x++ {
			si := src.PixOffset(x-x0+sb.Min.X, y-y0+sb.Min.Y)
			sa := float64(src.Pix[si+3]) / 255.0 * m
			if sa <= 0 {
				continue
			}

			di := dst.PixOffset(x, y)
			da := float64(dst.Pix[di+3]) / 255.0
			oa := sa + da*(1-sa)
			if oa <= 0 {
				continue
			}

			for c := 0; c < 3; c++ {
				sc := float64(src.Pix[si+c])
				dc := float64(dst.Pix[di+c])
				dst.Pix[di+c] = clamp8((sc*sa + dc*da*(1-sa)) / oa)
			}
			dst.Pix[di+3] = clamp8(oa * 255.0)
		}
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
