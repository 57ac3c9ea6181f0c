// genframes generates the placeholder eyewear frame images the try-on
// catalog references: transparent PNGs with a simple outline drawing per
// style (aviator, round, sport).
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

type frameSpec struct {
	filename string
	width    int
	height   int
	col      color.NRGBA
	style    string
}

func main() {
	outDir := flag.String("out", filepath.Join("static", "frames"), "Output directory")
	flag.Parse()

	specs := []frameSpec{
		{"aviator_classic.png", 300, 100, color.NRGBA{0x8B, 0x45, 0x13, 0xFF}, "aviator"},
		{"round_vintage.png", 280, 120, color.NRGBA{0x65, 0x43, 0x21, 0xFF}, "round"},
		{"sport_modern.png", 320, 90, color.NRGBA{0x00, 0x00, 0x00, 0xFF}, "sport"},
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, s := range specs {
		img := drawFrame(s)
		path := filepath.Join(*outDir, s.filename)
		if err := writePNG(path, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Created %s\n", s.filename)
	}
	fmt.Println("Frame images created successfully!")
}

func drawFrame(s frameSpec) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	w, h := float64(s.width), float64(s.height)

	switch s.style {
	case "aviator":
		// Teardrop-ish lenses
		ellipse(img, w*0.1, h*0.2, w*0.4, h*0.8, s.col, 3)
		ellipse(img, w*0.6, h*0.2, w*0.9, h*0.8, s.col, 3)
		line(img, w*0.4, h*0.5, w*0.6, h*0.5, s.col, 3)
	case "round":
		ellipse(img, w*0.1, h*0.1, w*0.4, h*0.9, s.col, 4)
		ellipse(img, w*0.6, h*0.1, w*0.9, h*0.9, s.col, 4)
		line(img, w*0.4, h*0.5, w*0.6, h*0.5, s.col, 3)
	case "sport":
		rectOutline(img, w*0.1, h*0.3, w*0.4, h*0.7, s.col, 3)
		rectOutline(img, w*0.6, h*0.3, w*0.9, h*0.7, s.col, 3)
		line(img, w*0.4, h*0.5, w*0.6, h*0.5, s.col, 3)
	}
	return img
}

// ellipse strokes the ellipse inscribed in [x0,y0]-[x1,y1].
func ellipse(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA, width int) {
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := (x1-x0)/2, (y1-y0)/2
	steps := int(2 * math.Pi * math.Max(rx, ry))
	if steps < 16 {
		steps = 16
	}
	for i := 0; i <= steps; i++ {
		t := 2 * math.Pi * float64(i) / float64(steps)
		plot(img, cx+rx*math.Cos(t), cy+ry*math.Sin(t), c, width)
	}
}

// line strokes a straight segment.
func line(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA, width int) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		plot(img, x0+dx*t, y0+dy*t, c, width)
	}
}

func rectOutline(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA, width int) {
	line(img, x0, y0, x1, y0, c, width)
	line(img, x1, y0, x1, y1, c, width)
	line(img, x1, y1, x0, y1, c, width)
	line(img, x0, y1, x0, y0, c, width)
}

// plot stamps a width x width square centered on (x, y).
func plot(img *image.NRGBA, x, y float64, c color.NRGBA, width int) {
	half := width / 2
	cx, cy := int(x+0.5), int(y+0.5)
	b := img.Bounds()
	for py := cy - half; py <= cy+half; py++ {
		for px := cx - half; px <= cx+half; px++ {
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				img.SetNRGBA(px, py, c)
			}
		}
	}
}

func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
