package importer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TextureType is a material texture slot.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureNormals
	TextureShininess
	TextureOpacity
	TextureLightmap
	TextureBaseColor
	TextureMetalness
	TextureUnknown
)

var textureTypeNames = [...]string{
	TextureDiffuse:   "diffuse",
	TextureSpecular:  "specular",
	TextureAmbient:   "ambient",
	TextureEmissive:  "emissive",
	TextureHeight:    "height",
	TextureNormals:   "normals",
	TextureShininess: "shininess",
	TextureOpacity:   "opacity",
	TextureLightmap:  "lightmap",
	TextureBaseColor: "base_color",
	TextureMetalness: "metalness",
	TextureUnknown:   "unknown",
}

func (t TextureType) String() string {
	if t < 0 || int(t) >= len(textureTypeNames) {
		return "unknown"
	}
	return textureTypeNames[t]
}

// Material lists texture references per slot. References are paths relative
// to the scene file, or "*N" for the scene's N-th embedded image.
type Material struct {
	Name     string
	Textures map[TextureType][]string
}

// NewMaterial returns a material with no textures.
func NewMaterial(name string) *Material {
	return &Material{Name: name, Textures: make(map[TextureType][]string)}
}

// AddTexture appends a reference to slot t.
func (m *Material) AddTexture(t TextureType, ref string) {
	m.Textures[t] = append(m.Textures[t], ref)
}

// TextureCount returns how many references slot t holds.
func (m *Material) TextureCount(t TextureType) int {
	return len(m.Textures[t])
}

// Texture returns the i-th reference of slot t.
func (m *Material) Texture(t TextureType, i int) string {
	return m.Textures[t][i]
}

// Mesh is one material's geometry. Per-vertex slices are parallel to
// Positions; Normals, Tangents and Bitangents are either empty or full length.
type Mesh struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	// TexCoords holds UV channels; each channel is full length.
	TexCoords [][]mgl32.Vec2
	// UVFilled parallels TexCoords. A true entry marks a vertex the file
	// gave no coordinate; it holds (0,0) and FlipUVs leaves it there. A nil
	// channel means every vertex had one.
	UVFilled [][]bool
	// Faces are polygons of vertex indices; triangles after Triangulate.
	Faces    [][]uint32
	Material int
}

func (m *Mesh) HasNormals() bool  { return len(m.Normals) == len(m.Positions) && len(m.Positions) > 0 }
func (m *Mesh) HasTangents() bool { return len(m.Tangents) == len(m.Positions) && len(m.Positions) > 0 }

// HasTexCoords reports whether UV channel ch exists.
func (m *Mesh) HasTexCoords(ch int) bool {
	return ch < len(m.TexCoords) && len(m.TexCoords[ch]) == len(m.Positions)
}

// Node is a scene graph node referencing meshes by index into Scene.Meshes.
type Node struct {
	Name      string
	Transform mgl32.Mat4
	Meshes    []int
	Children  []*Node
}

// SceneFlags describe the state of an imported scene.
type SceneFlags uint32

const (
	// SceneIncomplete marks a scene whose geometry could not be fully read.
	SceneIncomplete SceneFlags = 1 << iota
)

// Scene is the result of an import.
type Scene struct {
	Flags     SceneFlags
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material
	// Embedded holds encoded images referenced as "*N".
	Embedded [][]byte
	// Warnings collects non-fatal problems found while reading.
	Warnings []string
}

// Walk visits nodes depth-first, parents before children.
func (s *Scene) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	if s.Root != nil {
		visit(s.Root, 0)
	}
}

// FaceCount returns the number of faces across all meshes.
func (s *Scene) FaceCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Faces)
	}
	return n
}
