// Package importer reads 3D scene files into a format-neutral scene graph.
//
// Formats register themselves by file extension. Import applies the requested
// post-processing steps in a fixed order after reading.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("no importer for file extension")
	ErrNoRoot        = errors.New("scene has no root node")
)

// PostProcess selects processing steps applied after reading.
type PostProcess uint32

const (
	// Triangulate splits polygons into triangle fans and drops points and lines.
	Triangulate PostProcess = 1 << iota
	// GenNormals computes smooth normals for meshes that have none.
	GenNormals
	// FlipUVs maps v to 1-v on every UV channel.
	FlipUVs
	// CalcTangentSpace computes tangents and bitangents where missing.
	CalcTangentSpace
)

// Format reads one family of scene files.
type Format interface {
	Name() string
	Extensions() []string
	Read(path string) (*Scene, error)
}

var registry = make(map[string]Format)

// Register makes f available for its extensions, replacing earlier entries.
func Register(f Format) {
	for _, ext := range f.Extensions() {
		registry[strings.ToLower(ext)] = f
	}
}

// Extensions lists the registered file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supported reports whether a registered format handles path's extension.
func Supported(path string) bool {
	_, ok := registry[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Import reads path with the format registered for its extension and applies flags.
// Callers must check the scene for SceneIncomplete.
func Import(path string, flags PostProcess) (*Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	scene, err := f.Read(path)
	if err != nil {
		return scene, fmt.Errorf("%s import: %w", f.Name(), err)
	}
	if scene.Root == nil {
		return scene, ErrNoRoot
	}

	if flags&Triangulate != 0 {
		triangulate(scene)
	}
	if flags&GenNormals != 0 {
		genNormals(scene)
	}
	if flags&FlipUVs != 0 {
		flipUVs(scene)
	}
	if flags&CalcTangentSpace != 0 {
		calcTangentSpace(scene)
	}

	return scene, nil
}
