package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/engine/model"
)

const quadOBJ = "mtllib quad.mtl\no panel\nv 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nusemtl paint\nf 1 2 3 4\n"

func writeQuad(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte("newmtl paint\nmap_Kd paint.png\n"), 0o644))
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	return path
}

func TestCollectModels(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "props")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	a := writeQuad(t, dir)
	b := filepath.Join(sub, "crate.gltf")
	require.NoError(t, os.WriteFile(b, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), nil, 0o644))

	got, err := collectModels([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, got)

	explicit := filepath.Join(sub, "notes.txt")
	got, err = collectModels([]string{explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit}, got, "explicit files pass through")

	_, err = collectModels([]string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadStatsLenientTextures(t *testing.T) {
	path := writeQuad(t, t.TempDir())

	row := loadStats(path, model.Options{GenerateNormals: true})
	require.NoError(t, row.Err)
	assert.Error(t, row.Textures, "paint.png does not exist")
	assert.Equal(t, model.Stats{Meshes: 1, Vertices: 4, Indices: 6, Textures: 1}, row.Stats)
}

func TestLoadStatsStrictFails(t *testing.T) {
	path := writeQuad(t, t.TempDir())

	row := loadStats(path, model.Options{StrictTextures: true})
	assert.Error(t, row.Err)
}

func TestWriteStats(t *testing.T) {
	rows := []statsRow{
		{Path: "a.obj", Stats: model.Stats{Meshes: 1, Vertices: 3, Indices: 3, Textures: 1, TextureAllocations: 1}},
		{Path: "b.obj", Stats: model.Stats{Meshes: 2, Vertices: 8, Indices: 12}, Textures: errors.New("texture load failed: \"x.png\"")},
		{Path: "c.obj", Err: errors.New("scene load failed: c.obj: no such file")},
	}

	var buf bytes.Buffer
	failed := writeStats(&buf, rows)
	assert.Equal(t, 1, failed)

	out := buf.String()
	assert.Contains(t, out, "total (3 files)")
	assert.Contains(t, out, "b.obj:\n  texture load failed")
	assert.Contains(t, out, "c.obj:\n  scene load failed")
	assert.NotContains(t, out, "a.obj:\n")
}

func TestWriteSceneInfo(t *testing.T) {
	path := writeQuad(t, t.TempDir())
	scene, err := importer.Import(path, importer.Triangulate)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSceneInfo(&buf, path, scene))

	out := buf.String()
	assert.Contains(t, out, "Faces:     2")
	assert.Contains(t, out, "paint")
	assert.Contains(t, out, "diffuse    paint.png")
}
