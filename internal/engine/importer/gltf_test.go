package importer

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePNG only needs to survive the round trip; decoding happens in the texture cache.
var fakePNG = []byte("\x89PNG\r\n\x1a\nnot really")

func writeTriangleGLB(t *testing.T, dir string) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})
	img, err := modeler.WriteImage(doc, "brick.png", "image/png", bytes.NewReader(fakePNG))
	require.NoError(t, err)

	doc.Images = append(doc.Images, &gltf.Image{URI: "normal.png"})
	doc.Textures = []*gltf.Texture{
		{Source: gltf.Index(img)},
		{Source: gltf.Index(uint32(len(doc.Images) - 1))},
	}
	doc.Materials = []*gltf.Material{{
		Name: "brick",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
		NormalTexture: &gltf.NormalTexture{Index: gltf.Index(1)},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "parent", Translation: [3]float64{1, 2, 3}, Children: []uint32{1, 2}},
		{Name: "first", Mesh: gltf.Index(0)},
		{Name: "second", Mesh: gltf.Index(0), Scale: [3]float64{2, 2, 2}},
	}
	doc.Scenes[0].Nodes = []uint32{0}

	path := filepath.Join(dir, "quad.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestImportGLB(t *testing.T) {
	path := writeTriangleGLB(t, t.TempDir())

	scene, err := Import(path, Triangulate|FlipUVs|CalcTangentSpace|GenNormals)
	require.NoError(t, err)
	assert.Zero(t, scene.Flags&SceneIncomplete)
	assert.Empty(t, scene.Warnings)

	require.Len(t, scene.Root.Children, 1)
	parent := scene.Root.Children[0]
	assert.Equal(t, "parent", parent.Name)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, parent.Transform.Col(3).Vec3())
	require.Len(t, parent.Children, 2)
	assert.InDelta(t, 2, parent.Children[1].Transform.At(0, 0), 1e-6)

	require.Len(t, scene.Meshes, 1, "a mesh used by two nodes is built once")
	assert.Equal(t, []int{0}, parent.Children[0].Meshes)
	assert.Equal(t, []int{0}, parent.Children[1].Meshes)

	m := scene.Meshes[0]
	assert.Equal(t, "quad", m.Name)
	assert.Len(t, m.Positions, 4)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {2, 1, 3}}, m.Faces)
	assert.True(t, m.HasNormals())
	assert.True(t, m.HasTangents())
	assert.Equal(t, mgl32.Vec2{0, 1}, m.TexCoords[0][0], "uv flipped")

	require.Len(t, scene.Materials, 2)
	mat := scene.Materials[m.Material]
	assert.Equal(t, "brick", mat.Name)
	assert.Equal(t, "*0", mat.Texture(TextureDiffuse, 0))
	assert.Equal(t, "*0", mat.Texture(TextureBaseColor, 0))
	assert.Equal(t, "normal.png", mat.Texture(TextureNormals, 0))

	require.Len(t, scene.Embedded, 1, "shared image is embedded once")
	assert.Equal(t, fakePNG, scene.Embedded[0])
}

func TestPrimitiveFaces(t *testing.T) {
	idx := []int{0, 1, 2, 3, 4}

	assert.Equal(t, [][]uint32{{0, 1, 2}}, primitiveFaces(gltf.PrimitiveTriangles, idx))
	assert.Equal(t, [][]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}, primitiveFaces(gltf.PrimitiveTriangleStrip, idx))
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}, primitiveFaces(gltf.PrimitiveTriangleFan, idx))
	assert.Empty(t, primitiveFaces(gltf.PrimitiveTriangles, idx[:2]))
}

func TestDecodeDataURI(t *testing.T) {
	payload := []byte{1, 2, 3, 250}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	got, err := decodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = decodeDataURI("data:,plain")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), got)

	for _, bad := range []string{"image.png", "data:image/png;base64", "data:;base64,!!!"} {
		_, err := decodeDataURI(bad)
		assert.ErrorIs(t, err, errBadDataURI, bad)
	}
}

func TestNodeTransformMatrix(t *testing.T) {
	m := mgl32.Translate3D(4, 5, 6)
	var n gltf.Node
	for i, v := range m {
		n.Matrix[i] = float64(v)
	}
	assert.Equal(t, m, nodeTransform(&n))

	assert.Equal(t, mgl32.Ident4(), nodeTransform(&gltf.Node{}))
}

func TestImportGLTFBadReferences(t *testing.T) {
	const asset = `"asset":{"version":"2.0"}`
	zeros36 := base64.StdEncoding.EncodeToString(make([]byte, 36))
	tests := []struct {
		name       string
		doc        string
		incomplete bool
	}{
		{
			name: "position accessor past the end",
			doc: `{` + asset + `,"meshes":[{"primitives":[{"attributes":{"POSITION":7}}]}],
				"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			incomplete: true,
		},
		{
			name: "accessor buffer view past the end",
			doc: `{` + asset + `,"accessors":[{"bufferView":3,"componentType":5126,"count":3,"type":"VEC3"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],
				"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			incomplete: true,
		},
		{
			name: "index accessor past the end",
			doc: `{` + asset + `,"buffers":[{"byteLength":36,"uri":"data:application/octet-stream;base64,` + zeros36 + `"}],
				"bufferViews":[{"buffer":0,"byteLength":36}],
				"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":5}]}],
				"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			incomplete: true,
		},
		{
			name: "accessor without data",
			doc: `{` + asset + `,"accessors":[{"componentType":5126,"count":3,"type":"VEC3"}],
				"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],
				"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}]}`,
			incomplete: true,
		},
		{
			name: "default scene past the end",
			doc:  `{` + asset + `,"scene":4,"scenes":[{"nodes":[]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "broken.gltf", tt.doc)
			scene, err := Import(path, Triangulate)
			if !tt.incomplete {
				assert.ErrorIs(t, err, errBadReference)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, scene.Flags&SceneIncomplete)
			assert.Empty(t, scene.Meshes)
			require.NotEmpty(t, scene.Warnings)
			assert.Contains(t, scene.Warnings[0], "primitive 0")
		})
	}
}

func TestImportGLTFImageURIUnescaped(t *testing.T) {
	doc := `{"asset":{"version":"2.0"},
		"images":[{"uri":"my%20tex.png"},{"uri":"sub/100%2541.png"}],
		"textures":[{"source":0},{"source":1}],
		"materials":[{"name":"m","normalTexture":{"index":0},"emissiveTexture":{"index":1}}],
		"scenes":[{"nodes":[]}]}`
	path := writeFile(t, t.TempDir(), "uri.gltf", doc)

	scene, err := Import(path, 0)
	require.NoError(t, err)
	require.Len(t, scene.Materials, 2)
	mat := scene.Materials[1]
	assert.Equal(t, "my tex.png", mat.Texture(TextureNormals, 0))
	assert.Equal(t, "sub/100%41.png", mat.Texture(TextureEmissive, 0), "decoded exactly once")
}
