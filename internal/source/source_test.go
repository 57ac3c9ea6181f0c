package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSourceResolvesServerPaths(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "static", "frames", "aviator.png"), 30, 10)

	s := &FileSource{BaseDir: dir}
	img, err := s.Load(context.Background(), "/static/frames/aviator.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 10 {
		t.Fatalf("decoded size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestFileSourceAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	writeTestPNG(t, path, 12, 8)

	s := &FileSource{}
	img, err := s.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 {
		t.Fatalf("decoded size = %dx%d", b.Dx(), b.Dy())
	}
}

// Each decoder must receive its own format: TGA has no magic bytes, so a
// mis-sniffed PNG/JPEG/WebP would fail with a TGA format error.
func TestFileSourceDecodesEachFormat(t *testing.T) {
	fill := image.NewNRGBA(image.Rect(0, 0, 20, 14))
	for i := range fill.Pix {
		fill.Pix[i] = 180
	}

	dir := t.TempDir()
	encoders := []struct {
		name   string
		encode func(*os.File) error
	}{
		{"img.png", func(f *os.File) error { return png.Encode(f, fill) }},
		{"img.jpg", func(f *os.File) error { return jpeg.Encode(f, fill, nil) }},
		{"img.webp", func(f *os.File) error { return nativewebp.Encode(f, fill, nil) }},
		{"img.tga", func(f *os.File) error { return tga.Encode(f, fill) }},
	}

	s := &FileSource{}
	for _, enc := range encoders {
		path := filepath.Join(dir, enc.name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := enc.encode(f); err != nil {
			t.Fatalf("%s: encode: %v", enc.name, err)
		}
		f.Close()

		img, err := s.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("%s: Load: %v", enc.name, err)
		}
		if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 14 {
			t.Fatalf("%s: decoded size = %dx%d", enc.name, b.Dx(), b.Dy())
		}
	}
}

// Relative paths name files in the working directory even when a base dir
// is configured; only /static/... URLs resolve under it.
func TestFileSourceRelativePathBypassesBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "photo.png"), 10, 10)
	t.Chdir(dir)

	s := &FileSource{BaseDir: t.TempDir()}
	img, err := s.Load(context.Background(), "photo.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 {
		t.Fatalf("decoded size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	s := &FileSource{BaseDir: t.TempDir()}
	_, err := s.Load(context.Background(), "/static/frames/nope.png")

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want LoadError", err)
	}
	if le.URL != "/static/frames/nope.png" {
		t.Fatalf("LoadError url = %q", le.URL)
	}
}

func TestFileSourceRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	os.WriteFile(path, []byte("not an image"), 0644)

	s := &FileSource{}
	var le *LoadError
	if _, err := s.Load(context.Background(), path); !errors.As(err, &le) {
		t.Fatalf("error = %v, want LoadError", err)
	}
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &FileSource{}
	var le *LoadError
	if _, err := s.Load(ctx, "whatever.png"); !errors.As(err, &le) {
		t.Fatalf("error = %v, want LoadError", err)
	}
}

func TestHTTPSourceLoads(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "f.png"), 16, 16)
	data, _ := os.ReadFile(filepath.Join(dir, "f.png"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/frames/f.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	s := &HTTPSource{}
	img, err := s.Load(context.Background(), srv.URL+"/frames/f.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 {
		t.Fatalf("decoded size = %dx%d", b.Dx(), b.Dy())
	}

	var le *LoadError
	if _, err := s.Load(context.Background(), srv.URL+"/missing.png"); !errors.As(err, &le) {
		t.Fatalf("404 error = %v, want LoadError", err)
	}
}
