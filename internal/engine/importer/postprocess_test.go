package importer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadScene() *Scene {
	return &Scene{
		Root: &Node{Transform: mgl32.Ident4(), Meshes: []int{0}},
		Meshes: []*Mesh{{
			Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			TexCoords: [][]mgl32.Vec2{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
			Faces:     [][]uint32{{0, 1, 2, 3}, {0, 1}},
		}},
	}
}

func TestTriangulateFans(t *testing.T) {
	s := quadScene()
	s.Meshes[0].Faces = append(s.Meshes[0].Faces, []uint32{0, 1, 2, 3, 0}, []uint32{3, 2, 1})
	triangulate(s)

	assert.Equal(t, [][]uint32{
		{0, 1, 2}, {0, 2, 3}, // quad
		{0, 1, 2}, {0, 2, 3}, {0, 3, 0}, // pentagon
		{3, 2, 1},
	}, s.Meshes[0].Faces, "lines are dropped")
}

func TestGenNormalsFlatQuad(t *testing.T) {
	s := quadScene()
	triangulate(s)
	genNormals(s)

	m := s.Meshes[0]
	require.True(t, m.HasNormals())
	for _, n := range m.Normals {
		assert.InDelta(t, 0, n[0], 1e-6)
		assert.InDelta(t, 0, n[1], 1e-6)
		assert.InDelta(t, 1, n[2], 1e-6)
	}
}

func TestGenNormalsKeepsExisting(t *testing.T) {
	s := quadScene()
	existing := []mgl32.Vec3{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	s.Meshes[0].Normals = existing
	genNormals(s)
	assert.Equal(t, existing, s.Meshes[0].Normals)
}

func TestGenNormalsSmoothAcrossSeam(t *testing.T) {
	// Two triangles folded 90 degrees along the x axis, with the shared edge
	// duplicated as a UV seam.
	s := &Scene{Meshes: []*Mesh{{
		Positions: []mgl32.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, // floor in z=0, normal +z
			{0, 0, 0}, {0, 0, 1}, {1, 0, 0}, // wall in y=0, normal +y
		},
		Faces: [][]uint32{{0, 1, 2}, {3, 4, 5}},
	}}}
	genNormals(s)

	n := s.Meshes[0].Normals
	assert.Equal(t, n[0], n[3], "seam vertices share a normal")
	assert.InDelta(t, n[0][1], n[0][2], 1e-6)
	assert.InDelta(t, 1, n[0].Len(), 1e-6)
	assert.InDelta(t, 1, n[2][2], 1e-6, "unshared vertex keeps its face normal")
}

func TestGenNormalsDegenerate(t *testing.T) {
	s := &Scene{Meshes: []*Mesh{{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Faces:     [][]uint32{{0, 1, 2}},
	}}}
	genNormals(s)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, s.Meshes[0].Normals[0])
}

func TestFlipUVs(t *testing.T) {
	s := quadScene()
	flipUVs(s)
	assert.Equal(t, []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}, s.Meshes[0].TexCoords[0])
}

func TestCalcTangentSpace(t *testing.T) {
	s := quadScene()
	triangulate(s)
	genNormals(s)
	calcTangentSpace(s)

	m := s.Meshes[0]
	require.True(t, m.HasTangents())
	require.Len(t, m.Bitangents, 4)
	for i := range m.Positions {
		assert.InDelta(t, 1, m.Tangents[i][0], 1e-5, "u grows along +x")
		assert.InDelta(t, 1, m.Bitangents[i][1], 1e-5, "v grows along +y")
		assert.InDelta(t, 0, m.Tangents[i].Dot(m.Normals[i]), 1e-5)
	}
}

func TestCalcTangentSpaceMirroredUVs(t *testing.T) {
	s := quadScene()
	triangulate(s)
	genNormals(s)
	flipUVs(s)
	calcTangentSpace(s)

	m := s.Meshes[0]
	assert.InDelta(t, 1, m.Tangents[0][0], 1e-5)
	assert.InDelta(t, -1, m.Bitangents[0][1], 1e-5, "flipped v reverses the bitangent")
}

func TestCalcTangentSpaceSkips(t *testing.T) {
	noUV := quadScene()
	noUV.Meshes[0].TexCoords = nil
	triangulate(noUV)
	genNormals(noUV)
	calcTangentSpace(noUV)
	assert.False(t, noUV.Meshes[0].HasTangents())

	noNormals := quadScene()
	calcTangentSpace(noNormals)
	assert.False(t, noNormals.Meshes[0].HasTangents())
}

func TestCalcTangentSpaceDegenerateUVs(t *testing.T) {
	s := quadScene()
	s.Meshes[0].TexCoords = [][]mgl32.Vec2{make([]mgl32.Vec2, 4)}
	triangulate(s)
	genNormals(s)
	calcTangentSpace(s)

	m := s.Meshes[0]
	require.True(t, m.HasTangents())
	for i := range m.Positions {
		assert.InDelta(t, 1, m.Tangents[i].Len(), 1e-5)
		assert.InDelta(t, 0, m.Tangents[i].Dot(m.Normals[i]), 1e-5)
	}
}

func TestSceneWalk(t *testing.T) {
	leaf := &Node{Name: "leaf"}
	s := &Scene{Root: &Node{Name: "root", Children: []*Node{
		{Name: "a", Children: []*Node{leaf}},
		{Name: "b"},
	}}}

	var order []string
	var depths []int
	s.Walk(func(n *Node, depth int) {
		order = append(order, n.Name)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"root", "a", "leaf", "b"}, order)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	(&Scene{}).Walk(func(*Node, int) { t.Fatal("empty scene visited") })
}

func TestTextureTypeString(t *testing.T) {
	assert.Equal(t, "height", TextureHeight.String())
	assert.Equal(t, "base_color", TextureBaseColor.String())
	assert.Equal(t, "unknown", TextureType(42).String())
	assert.Equal(t, "unknown", TextureType(-1).String())
}
