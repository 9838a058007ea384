// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Shader programs a scene entry can be drawn with.
const (
	ProgramLit      = "lit"
	ProgramEmissive = "emissive"
)

// Camera modes.
const (
	CameraFly   = "fly"
	CameraOrbit = "orbit"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Scene    SceneConfig    `yaml:"scene"`
	Textures TexturesConfig `yaml:"textures"`
	Import   ImportConfig   `yaml:"import"`
	Camera   CameraConfig   `yaml:"camera"`
	Watch    WatchConfig    `yaml:"watch"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // 0 disables the frame lock
}

// SceneConfig lists the models to draw and the point light.
type SceneConfig struct {
	Models        []ModelEntry `yaml:"models"`
	LightPosition [3]float32   `yaml:"light_position"`
	// LightOrbit rotates the light about Y with each lit model's spin.
	LightOrbit bool       `yaml:"light_orbit"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// ModelEntry places one model file in the scene.
type ModelEntry struct {
	Name     string     `yaml:"name"`
	Path     string     `yaml:"path"`
	Program  string     `yaml:"program"`
	Position [3]float32 `yaml:"position"`
	Scale    float32    `yaml:"scale"`
	Spin     float32    `yaml:"spin"` // radians per second about Y
}

// TexturesConfig controls image loading.
type TexturesConfig struct {
	FlipVertical bool `yaml:"flip_vertical"`
	// Strict fails a model load on any missing or undecodable texture.
	Strict bool `yaml:"strict"`
}

// ImportConfig controls scene post-processing.
type ImportConfig struct {
	GenerateNormals bool `yaml:"generate_normals"`
}

// CameraConfig holds the initial camera state.
type CameraConfig struct {
	Mode        string     `yaml:"mode"`
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	Zoom        float32    `yaml:"zoom"`
}

// WatchConfig controls hot reload.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CaptureConfig controls F12 screenshots.
type CaptureConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:    "meshview",
			Width:    800,
			Height:   600,
			VSync:    true,
			FPSLimit: 120,
		},
		Scene: SceneConfig{
			Models: []ModelEntry{
				{Name: "sun", Path: "models/sun.obj", Program: ProgramEmissive, Position: [3]float32{0, 0, 10}, Scale: 1},
				{Name: "mars", Path: "models/mars.obj", Program: ProgramLit, Scale: 1, Spin: 0.1},
				{Name: "milky_way", Path: "models/milkyWay.obj", Program: ProgramEmissive, Position: [3]float32{0, 0, 10}, Scale: 50},
			},
			LightPosition: [3]float32{0, 0, 10},
			LightOrbit:    true,
			ClearColor:    [4]float32{0, 0, 0, 1},
		},
		Textures: TexturesConfig{
			FlipVertical: true,
		},
		Camera: CameraConfig{
			Mode:        CameraFly,
			Position:    [3]float32{0, 0, 3},
			Yaw:         -90,
			Speed:       2.5,
			Sensitivity: 0.1,
			Zoom:        45,
		},
		Capture: CaptureConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that cannot be used, joined into one error.
func (c *Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		problems = append(problems, fmt.Sprintf("fps_limit %d", c.Window.FPSLimit))
	}
	switch c.Camera.Mode {
	case CameraFly, CameraOrbit:
	default:
		problems = append(problems, fmt.Sprintf("camera mode %q", c.Camera.Mode))
	}
	for i, m := range c.Scene.Models {
		if m.Path == "" {
			problems = append(problems, fmt.Sprintf("models[%d] has no path", i))
		}
		switch m.Program {
		case ProgramLit, ProgramEmissive:
		default:
			problems = append(problems, fmt.Sprintf("models[%d] program %q", i, m.Program))
		}
		if m.Scale <= 0 {
			problems = append(problems, fmt.Sprintf("models[%d] scale %v", i, m.Scale))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// DisplayName returns Name, or Path when no name is set.
func (m ModelEntry) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Path
}
