package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func names(n *fileNode) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Name)
	}
	return out
}

func TestBuildTree(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"zeta.obj",
		"Alpha.gltf",
		"planets/mars.obj",
		"planets/mars.mtl",
		"planets/textures/mars.png",
		"ships/fighter.glb",
		".git/objects/x.obj",
		"readme.txt",
	)

	tree, count, err := buildTree(root, "")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, []string{"planets", "ships", "Alpha.gltf", "zeta.obj"}, names(tree))

	planets := tree.Children[0]
	assert.True(t, planets.IsDir)
	assert.Equal(t, "planets", planets.Path)
	assert.Equal(t, []string{"mars.obj"}, names(planets), "texture-only directories are pruned")
	assert.Equal(t, filepath.Join(root, "planets", "mars.obj"), planets.Children[0].Path)
}

func TestBuildTreeSearch(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "planets/mars.obj", "planets/venus.obj", "ships/mars_lander.glb")

	tree, count, err := buildTree(root, "MARS")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"planets", "ships"}, names(tree))
	assert.Equal(t, []string{"mars.obj"}, names(tree.Children[0]))

	tree, count, err = buildTree(root, "ships/")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"ships"}, names(tree))
}

func TestBuildTreeMissingRoot(t *testing.T) {
	_, _, err := buildTree(filepath.Join(t.TempDir(), "gone"), "")
	assert.Error(t, err)
}
