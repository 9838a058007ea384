// Package model loads scene files into drawable meshes that share one texture cache.
package model

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/texture"
	"github.com/Faultbox/meshview/internal/logger"
)

// ErrSceneLoad wraps every failure to read or build a scene.
var ErrSceneLoad = errors.New("scene load failed")

// Options controls loading.
type Options struct {
	// StrictTextures turns any texture failure into a load failure.
	StrictTextures bool
	// GenerateNormals computes smooth normals for meshes that have none.
	GenerateNormals bool
	// FlipTextures mirrors images vertically before upload.
	FlipTextures bool
}

// Stats summarizes a loaded model.
type Stats struct {
	Meshes             int
	Vertices           int
	Indices            int
	Textures           int
	TextureAllocations int
}

// Model owns the meshes of one scene file and the textures they sample.
type Model struct {
	dev      gpu.Device
	path     string
	dir      string
	meshes   []*mesh.Mesh
	textures *texture.Cache
	bounds   Bounds

	textureErr error
	released   bool
	log        *zap.Logger
}

// Load imports path and uploads its meshes and textures.
//
// A non-nil Model is always returned. If the scene cannot be read the Model is
// empty and the error wraps ErrSceneLoad. Texture failures are kept in
// TextureErrors and the load succeeds, unless opts.StrictTextures is set, in
// which case the Model is released and the texture error returned.
func Load(dev gpu.Device, path string, opts Options) (*Model, error) {
	m := newModel(dev, path, opts)

	flags := importer.Triangulate | importer.FlipUVs | importer.CalcTangentSpace
	if opts.GenerateNormals {
		flags |= importer.GenNormals
	}

	scene, err := importer.Import(path, flags)
	if err == nil && scene.Flags&importer.SceneIncomplete != 0 {
		err = errors.New("scene is incomplete")
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSceneLoad, path, err)
		m.log.Error("scene import failed", zap.String("path", path), zap.Error(err))
		return m, err
	}
	for _, w := range scene.Warnings {
		m.log.Warn("import warning", zap.String("path", path), zap.String("warning", w))
	}

	m.textures.SetEmbedded(scene.Embedded)

	b := builder{model: m, scene: scene}
	if err := b.processNode(scene.Root); err != nil {
		m.Release()
		err = fmt.Errorf("%w: %s: %w", ErrSceneLoad, path, err)
		m.log.Error("mesh upload failed", zap.String("path", path), zap.Error(err))
		return m, err
	}

	if texErr := errors.Join(b.textureErrs...); texErr != nil {
		if opts.StrictTextures {
			m.Release()
			return m, fmt.Errorf("%s: %w", path, texErr)
		}
		m.textureErr = texErr
	}

	st := m.Stats()
	m.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", st.Meshes),
		zap.Int("vertices", st.Vertices),
		zap.Int("indices", st.Indices),
		zap.Int("textures", st.Textures),
		zap.Int("texture_failures", len(b.textureErrs)))

	return m, nil
}

// NewEmpty returns a Model with nothing to draw, for path that was never loaded.
func NewEmpty(dev gpu.Device, path string) *Model {
	return newModel(dev, path, Options{})
}

func newModel(dev gpu.Device, path string, opts Options) *Model {
	dir := filepath.Dir(path)
	return &Model{
		dev:      dev,
		path:     path,
		dir:      dir,
		textures: texture.NewCache(dev, dir, texture.Options{FlipVertical: opts.FlipTextures}),
		bounds:   emptyBounds(),
		log:      logger.Named("model"),
	}
}

// Draw draws every mesh in load order. The sampler's program must be in use.
func (m *Model) Draw(s mesh.Sampler) {
	for _, me := range m.meshes {
		me.Draw(s)
	}
}

// Release frees all meshes and then the textures. Later calls do nothing.
func (m *Model) Release() {
	if m.released {
		return
	}
	for _, me := range m.meshes {
		me.Release()
	}
	m.meshes = nil
	m.textures.Release()
	m.bounds = emptyBounds()
	m.released = true
}

// Meshes returns the meshes in depth-first scene order. Callers must not modify it.
func (m *Model) Meshes() []*mesh.Mesh { return m.meshes }

// Empty reports whether there is nothing to draw.
func (m *Model) Empty() bool { return len(m.meshes) == 0 }

// Path returns the file the model was loaded from.
func (m *Model) Path() string { return m.path }

// Directory returns the directory texture references are resolved against.
func (m *Model) Directory() string { return m.dir }

// TextureErrors returns the joined texture failures of a non-strict load, or nil.
func (m *Model) TextureErrors() error { return m.textureErr }

// Textures returns every texture the model loaded, failures included, in load order.
func (m *Model) Textures() []texture.Texture { return m.textures.Entries() }

// Bounds returns the axis-aligned box around all vertices.
func (m *Model) Bounds() Bounds { return m.bounds }

func (m *Model) Stats() Stats {
	s := Stats{
		Meshes:             len(m.meshes),
		Textures:           m.textures.Len(),
		TextureAllocations: m.textures.Allocations(),
	}
	for _, me := range m.meshes {
		s.Vertices += me.VertexCount()
		s.Indices += me.IndexCount()
	}
	return s
}
