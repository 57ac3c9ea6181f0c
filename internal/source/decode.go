package source

import (
	"bufio"
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// decode sniffs the magic bytes and dispatches to the matching decoder
// (PNG, JPEG, WebP). TGA files carry no magic, so anything unrecognized
// falls through to the TGA decoder. Dispatch is explicit rather than via
// image.Decode: the tga package registers itself with an empty magic
// string, which would shadow every other registered format.
func decode(r io.Reader) (*image.NRGBA, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(12)
	if err != nil && len(magic) == 0 {
		return nil, err
	}

	var img image.Image
	switch {
	case bytes.HasPrefix(magic, []byte("\x89PNG\r\n\x1a\n")):
		img, err = png.Decode(br)
	case bytes.HasPrefix(magic, []byte("\xff\xd8")):
		img, err = jpeg.Decode(br)
	case len(magic) >= 12 && bytes.Equal(magic[:4], []byte("RIFF")) && bytes.Equal(magic[8:12], []byte("WEBP")):
		img, err = webp.Decode(br)
	default:
		img, err = tga.Decode(br)
	}
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha — draw and set alpha to 255
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
