// Package viewer holds the window-independent parts of the model viewer: the
// configured scene, per-frame transforms, frame pacing and file watching.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/logger"
)

// ErrNoProgram is returned when an entry names a program that was not provided.
var ErrNoProgram = errors.New("no shader program")

// Program is the part of shader.Program the scene drives.
type Program interface {
	mesh.Sampler
	Use()
	SetMat4(name string, m mgl32.Mat4)
	SetVec3(name string, v mgl32.Vec3)
}

// Entry is one placed model.
type Entry struct {
	Config config.ModelEntry
	Model  *model.Model

	warnedEmpty bool
}

// Scene owns the loaded models of a viewer session.
type Scene struct {
	dev      gpu.Device
	programs map[string]Program
	entries  []*Entry
	light    mgl32.Vec3
	orbit    bool
	opts     model.Options
	log      *zap.Logger
}

// NewScene prepares a scene for cfg. Nothing is loaded until Load.
func NewScene(dev gpu.Device, cfg *config.Config, programs map[string]Program) *Scene {
	s := &Scene{
		dev:      dev,
		programs: programs,
		light:    mgl32.Vec3(cfg.Scene.LightPosition),
		orbit:    cfg.Scene.LightOrbit,
		opts: model.Options{
			StrictTextures:  cfg.Textures.Strict,
			GenerateNormals: cfg.Import.GenerateNormals,
			FlipTextures:    cfg.Textures.FlipVertical,
		},
		log: logger.Named("scene"),
	}
	for _, m := range cfg.Scene.Models {
		s.entries = append(s.entries, &Entry{Config: m})
	}
	return s
}

// Load loads every entry. A failed entry keeps an empty model so the rest of
// the scene still draws; all failures are returned joined.
func (s *Scene) Load() error {
	var errs []error
	for _, e := range s.entries {
		if err := s.load(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scene) load(e *Entry) error {
	if _, ok := s.programs[e.Config.Program]; !ok {
		e.Model = model.NewEmpty(s.dev, e.Config.Path)
		return fmt.Errorf("%s: %w %q", e.Config.DisplayName(), ErrNoProgram, e.Config.Program)
	}

	m, err := model.Load(s.dev, e.Config.Path, s.opts)
	e.Model = m
	e.warnedEmpty = false
	if err != nil {
		return fmt.Errorf("%s: %w", e.Config.DisplayName(), err)
	}
	if texErr := m.TextureErrors(); texErr != nil {
		s.log.Warn("model loaded with missing textures",
			zap.String("model", e.Config.DisplayName()),
			zap.Error(texErr))
	}
	return nil
}

// Reload loads a fresh copy of every entry whose file is path. The old model
// is released only once its replacement loaded; otherwise the old one stays.
// It returns how many entries were replaced.
func (s *Scene) Reload(path string) (int, error) {
	target := cleanPath(path)
	replaced := 0
	var errs []error

	for _, e := range s.entries {
		if cleanPath(e.Config.Path) != target {
			continue
		}
		m, err := model.Load(s.dev, e.Config.Path, s.opts)
		if err != nil {
			m.Release()
			s.log.Warn("reload failed, keeping previous model",
				zap.String("model", e.Config.DisplayName()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", e.Config.DisplayName(), err))
			continue
		}
		if e.Model != nil {
			e.Model.Release()
		}
		e.Model = m
		e.warnedEmpty = false
		replaced++
		s.log.Info("model reloaded", zap.String("model", e.Config.DisplayName()), zap.Any("stats", m.Stats()))
	}
	return replaced, errors.Join(errs...)
}

// ReloadAll reloads every entry, as Reload does for a single file.
func (s *Scene) ReloadAll() error {
	seen := make(map[string]bool)
	var errs []error
	for _, p := range s.Paths() {
		if seen[p] {
			continue
		}
		seen[p] = true
		if _, err := s.Reload(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Draw draws every entry at time t seconds. Empty models are skipped with a
// single warning until they are reloaded.
func (s *Scene) Draw(view, projection mgl32.Mat4, viewPos mgl32.Vec3, t float32) {
	for _, e := range s.entries {
		if e.Model == nil || e.Model.Empty() {
			if !e.warnedEmpty {
				s.log.Warn("skipping empty model", zap.String("model", e.Config.DisplayName()))
				e.warnedEmpty = true
			}
			continue
		}
		prog := s.programs[e.Config.Program]

		prog.Use()
		prog.SetMat4("projection", projection)
		prog.SetMat4("view", view)
		prog.SetMat4("model", ModelMatrix(e.Config, t))
		if e.Config.Program == config.ProgramLit {
			angle := float32(0)
			if s.orbit {
				angle = e.Config.Spin * t
			}
			prog.SetVec3("sourceLightPos", LightPosition(s.light, angle))
			prog.SetVec3("viewPos", viewPos)
		}
		e.Model.Draw(prog)
	}
}

// Release frees every model. The scene can be loaded again afterwards.
func (s *Scene) Release() {
	for _, e := range s.entries {
		if e.Model != nil {
			e.Model.Release()
		}
	}
}

// Entries returns the scene entries in configuration order.
func (s *Scene) Entries() []*Entry {
	return s.entries
}

// Paths returns the cleaned file path of every entry.
func (s *Scene) Paths() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cleanPath(e.Config.Path))
	}
	return out
}

// Bounds returns the world-space box around all loaded models at t=0. It
// reports false when nothing is loaded.
func (s *Scene) Bounds() (model.Bounds, bool) {
	var out model.Bounds
	found := false
	for _, e := range s.entries {
		b, ok := e.worldBounds(0)
		if !ok {
			continue
		}
		if !found {
			out = b
			found = true
			continue
		}
		for i := 0; i < 3; i++ {
			out.Min[i] = min(out.Min[i], b.Min[i])
			out.Max[i] = max(out.Max[i], b.Max[i])
		}
	}
	return out, found
}

// Pick returns the nearest entry whose world box the ray crosses at time t.
func (s *Scene) Pick(r picking.Ray, t float32) (*Entry, bool) {
	var best *Entry
	bestDist := float32(0)
	for _, e := range s.entries {
		b, ok := e.worldBounds(t)
		if !ok {
			continue
		}
		d, hit := r.IntersectBox(b.Min, b.Max)
		if hit && (best == nil || d < bestDist) {
			best, bestDist = e, d
		}
	}
	return best, best != nil
}

// worldBounds transforms the model box by the entry placement. Rotation can
// swap corners, so each axis is re-sorted.
func (e *Entry) worldBounds(t float32) (model.Bounds, bool) {
	if e.Model == nil || !e.Model.Bounds().Valid() {
		return model.Bounds{}, false
	}
	b := e.Model.Bounds()
	m := ModelMatrix(e.Config, t)
	lo := mgl32.TransformCoordinate(b.Min, m)
	hi := mgl32.TransformCoordinate(b.Max, m)
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = min(lo[i], hi[i]), max(lo[i], hi[i])
	}
	return model.Bounds{Min: lo, Max: hi}, true
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
