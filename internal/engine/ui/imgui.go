// Package ui provides ImGui-based tool windows.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
)

// fontPaths are tried in order when no font is configured.
var fontPaths = []string{
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"C:\\Windows\\Fonts\\segoeui.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

// Config holds tool window settings.
type Config struct {
	Title  string
	Width  int
	Height int
	// Font is a TTF path; empty picks the first system font found.
	Font     string
	FontSize float32
}

// Backend owns the SDL window, GL context and ImGui context of a tool.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	cfg     Config
	log     *zap.Logger
}

// NewBackend creates the window and initializes OpenGL for it.
func NewBackend(cfg Config) (*Backend, error) {
	b := &Backend{cfg: cfg, log: logger.Named("ui")}
	if b.cfg.FontSize <= 0 {
		b.cfg.FontSize = 16
	}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	// Fonts must be added before the first frame builds the atlas.
	b.backend.SetAfterCreateContextHook(b.loadFont)

	b.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	b.backend.CreateWindow(cfg.Title, cfg.Width, cfg.Height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	b.log.Info("tool window created",
		zap.String("title", cfg.Title),
		zap.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
	)
	return b, nil
}

func (b *Backend) loadFont() {
	path := b.cfg.Font
	if path == "" {
		for _, p := range fontPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return
	}

	fontCfg := imgui.NewFontConfig()
	defer fontCfg.Destroy()

	if font := imgui.CurrentIO().Fonts().AddFontFromFileTTFV(path, b.cfg.FontSize, fontCfg, nil); font == nil {
		b.log.Warn("font not loaded, using default", zap.String("path", path))
		return
	}
	b.log.Debug("font loaded", zap.String("path", path))
}

// Run calls frame once per frame until the window closes.
func (b *Backend) Run(frame func()) {
	b.backend.Run(frame)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// Viewport returns the main viewport work area, which excludes the menu bar.
func Viewport() (pos, size imgui.Vec2) {
	vp := imgui.MainViewport()
	return vp.WorkPos(), vp.WorkSize()
}

// KeyPressed reports a key press this frame, ignoring it while a text field is active.
func KeyPressed(chord imgui.KeyChord) bool {
	return !imgui.IsAnyItemActive() && imgui.IsKeyChordPressed(chord)
}
