package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// DefaultMaterialName names the material used by faces without usemtl.
const DefaultMaterialName = "DefaultMaterial"

// objTextureSlots maps MTL statements to texture slots, in lookup order.
var objTextureSlots = []struct {
	statement string
	slot      TextureType
}{
	{"map_kd", TextureDiffuse},
	{"map_ks", TextureSpecular},
	{"map_ka", TextureAmbient},
	{"map_bump", TextureHeight},
	{"bump", TextureHeight},
	{"map_kn", TextureNormals},
	{"norm", TextureNormals},
	{"map_ke", TextureEmissive},
	{"map_ns", TextureShininess},
	{"map_d", TextureOpacity},
}

type objFormat struct{}

func init() {
	Register(objFormat{})
}

func (objFormat) Name() string         { return "obj" }
func (objFormat) Extensions() []string { return []string{".obj"} }

// Read parses an OBJ file and the material libraries it names. Each object
// becomes a child of the root, holding one mesh per run of faces sharing a
// material.
func (objFormat) Read(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obj, err := formats.ParseOBJ(f)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Materials: []*Material{NewMaterial(DefaultMaterialName)},
		Warnings:  append([]string(nil), obj.Warnings...),
	}

	dir := filepath.Dir(path)
	matIndex := make(map[string]int)
	for _, lib := range obj.MaterialLibs {
		mats, err := readMTL(filepath.Join(dir, lib))
		if err != nil {
			scene.Warnings = append(scene.Warnings, fmt.Sprintf("material library %s: %v", lib, err))
			continue
		}
		names := make([]string, 0, len(mats))
		for name := range mats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, dup := matIndex[name]; dup {
				continue
			}
			matIndex[name] = len(scene.Materials)
			scene.Materials = append(scene.Materials, objMaterial(mats[name]))
		}
	}

	root := &Node{Name: filepath.Base(path), Transform: mgl32.Ident4()}
	for _, o := range obj.Objects {
		node := &Node{Name: o.Name, Transform: mgl32.Ident4()}
		for _, run := range materialRuns(o.Faces) {
			mesh := objMesh(obj, o.Name, run)

			name := run[0].Material
			if idx, ok := matIndex[name]; ok {
				mesh.Material = idx
			} else if name != "" {
				scene.Warnings = append(scene.Warnings, fmt.Sprintf("object %s: unknown material %q", o.Name, name))
			}

			node.Meshes = append(node.Meshes, len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, mesh)
		}
		root.Children = append(root.Children, node)
	}
	scene.Root = root

	return scene, nil
}

func readMTL(path string) (map[string]*formats.MTLMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return formats.ParseMTL(f)
}

func objMaterial(src *formats.MTLMaterial) *Material {
	m := NewMaterial(src.Name)
	for _, s := range objTextureSlots {
		for _, file := range src.Maps[s.statement] {
			m.AddTexture(s.slot, file)
		}
	}
	return m
}

// materialRuns splits faces into consecutive runs with the same material.
func materialRuns(faces []formats.OBJFace) [][]formats.OBJFace {
	var runs [][]formats.OBJFace
	start := 0
	for i := 1; i <= len(faces); i++ {
		if i == len(faces) || faces[i].Material != faces[start].Material {
			runs = append(runs, faces[start:i])
			start = i
		}
	}
	return runs
}

// objMesh builds a mesh with one vertex per distinct position/uv/normal
// combination. A UV channel exists if any corner has a texture coordinate;
// normals are kept only if every corner has one.
func objMesh(obj *formats.OBJ, name string, faces []formats.OBJFace) *Mesh {
	hasUV, allNormals := false, true
	for _, f := range faces {
		for _, c := range f.Corners {
			hasUV = hasUV || c.TexCoord != formats.OBJNone
			allNormals = allNormals && c.Normal != formats.OBJNone
		}
	}

	m := &Mesh{Name: name, Faces: make([][]uint32, 0, len(faces))}
	var uvs []mgl32.Vec2
	var filled []bool
	partial := false
	seen := make(map[formats.OBJCorner]uint32)

	for _, f := range faces {
		face := make([]uint32, len(f.Corners))
		for i, c := range f.Corners {
			idx, ok := seen[c]
			if !ok {
				idx = uint32(len(m.Positions))
				seen[c] = idx
				m.Positions = append(m.Positions, obj.Positions[c.Position])
				if hasUV {
					var uv mgl32.Vec2
					missing := c.TexCoord == formats.OBJNone
					if !missing {
						uv = obj.TexCoords[c.TexCoord]
					}
					uvs = append(uvs, uv)
					filled = append(filled, missing)
					partial = partial || missing
				}
				if allNormals {
					m.Normals = append(m.Normals, obj.Normals[c.Normal])
				}
			}
			face[i] = idx
		}
		m.Faces = append(m.Faces, face)
	}

	if hasUV {
		m.TexCoords = [][]mgl32.Vec2{uvs}
		if partial {
			m.UVFilled = [][]bool{filled}
		}
	}
	return m
}
