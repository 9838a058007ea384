// Package debug provides capture helpers for inspecting rendered output.
package debug

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// LatestName is rewritten on every capture so scripts can poll one path.
const LatestName = "latest.png"

// Screenshots writes timestamped PNG captures into a directory.
type Screenshots struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewScreenshots creates a capture writer. An empty dir writes to the
// working directory.
func NewScreenshots(dir, prefix string) *Screenshots {
	return &Screenshots{dir: dir, prefix: prefix, now: time.Now}
}

// Dir returns the output directory.
func (s *Screenshots) Dir() string {
	return s.dir
}

// SavePixels saves bottom-up RGBA rows as read back from OpenGL.
func (s *Screenshots) SavePixels(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return s.Save(transform.FlipV(img))
}

// Save writes img and refreshes the latest capture. Returns the timestamped path.
func (s *Screenshots) Save(img image.Image) (string, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	name := s.Filename()
	if err := imgio.Save(name, img, imgio.PNGEncoder()); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := imgio.Save(filepath.Join(s.dir, LatestName), img, imgio.PNGEncoder()); err != nil {
		return name, fmt.Errorf("updating %s: %w", LatestName, err)
	}
	return name, nil
}

// Filename returns the path the next capture will use.
func (s *Screenshots) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000"))
	return filepath.Join(s.dir, name)
}
