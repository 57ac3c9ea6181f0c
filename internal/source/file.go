package source

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// FileSource loads images from the local filesystem. Server-style paths
// ("/static/frames/x.png") are resolved against the configured base
// directory, so catalog URLs work unchanged against a local asset tree.
type FileSource struct {
	BaseDir string
}

// Load reads and decodes the image at url. The context is checked before
// the read; file I/O itself is not interruptible.
func (s *FileSource) Load(ctx context.Context, url string) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	path := s.resolve(url)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	return img, nil
}

// resolve maps server-style "/static/..." URLs under BaseDir. Everything
// else, absolute or relative, names a filesystem path and passes through
// unchanged.
func (s *FileSource) resolve(url string) string {
	p := strings.TrimPrefix(url, "file://")
	if s.BaseDir != "" && strings.HasPrefix(p, "/static/") {
		return filepath.Join(s.BaseDir, strings.TrimPrefix(p, "/"))
	}
	return p
}
