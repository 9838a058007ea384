package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/texture"
)

// roleSlots maps each sampler role to the material slot it is read from.
// Normal maps live in the height slot and height maps in the ambient slot,
// matching how OBJ exporters fill map_bump and map_Ka.
var roleSlots = [...]struct {
	role texture.Role
	slot importer.TextureType
}{
	{texture.RoleDiffuse, importer.TextureDiffuse},
	{texture.RoleSpecular, importer.TextureSpecular},
	{texture.RoleNormal, importer.TextureHeight},
	{texture.RoleHeight, importer.TextureAmbient},
}

type builder struct {
	model       *Model
	scene       *importer.Scene
	textureErrs []error
}

// processNode uploads the node's meshes and then recurses into its children.
func (b *builder) processNode(n *importer.Node) error {
	if n == nil {
		return nil
	}
	for _, idx := range n.Meshes {
		if idx < 0 || idx >= len(b.scene.Meshes) {
			b.model.log.Warn("node references a missing mesh", zap.String("node", n.Name), zap.Int("mesh", idx))
			continue
		}
		if err := b.processMesh(b.scene.Meshes[idx]); err != nil {
			return fmt.Errorf("node %q mesh %d: %w", n.Name, idx, err)
		}
	}
	for _, child := range n.Children {
		if err := b.processNode(child); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) processMesh(src *importer.Mesh) error {
	vertices := meshVertices(src)
	indices := meshIndices(src)
	if len(vertices) == 0 || len(indices) == 0 {
		b.model.log.Warn("skipping empty mesh", zap.String("mesh", src.Name))
		return nil
	}

	textures := b.materialTextures(src.Material)

	m, err := mesh.New(b.model.dev, vertices, indices, textures)
	if err != nil {
		return err
	}
	for _, v := range vertices {
		b.model.bounds.extend(v.Position)
	}
	b.model.meshes = append(b.model.meshes, m)
	return nil
}

// materialTextures resolves the four sampler roles in fixed order.
func (b *builder) materialTextures(index int) []texture.Texture {
	if index < 0 || index >= len(b.scene.Materials) {
		return nil
	}
	mat := b.scene.Materials[index]

	var out []texture.Texture
	for _, rs := range roleSlots {
		n := mat.TextureCount(rs.slot)
		if n == 0 {
			continue
		}
		refs := make([]string, n)
		for i := range refs {
			refs[i] = mat.Texture(rs.slot, i)
		}
		texs, err := b.model.textures.Resolve(refs, rs.role)
		if err != nil {
			b.textureErrs = append(b.textureErrs, err)
		}
		out = append(out, texs...)
	}
	return out
}

func meshVertices(src *importer.Mesh) []mesh.Vertex {
	hasUV := src.HasTexCoords(0)
	hasNormals := src.HasNormals()
	hasTangents := src.HasTangents() && len(src.Bitangents) == len(src.Positions)

	out := make([]mesh.Vertex, len(src.Positions))
	for i, p := range src.Positions {
		v := mesh.Vertex{Position: p}
		if hasNormals {
			v.Normal = src.Normals[i]
		}
		if hasUV {
			v.TexCoords = src.TexCoords[0][i]
		}
		if hasTangents {
			v.Tangent = src.Tangents[i]
			v.Bitangent = src.Bitangents[i]
		}
		out[i] = v
	}
	return out
}

// meshIndices flattens the faces. Anything that is not a triangle is left in
// place and rejected by mesh.New.
func meshIndices(src *importer.Mesh) []uint32 {
	out := make([]uint32, 0, len(src.Faces)*3)
	for _, f := range src.Faces {
		out = append(out, f...)
	}
	return out
}

// Bounds is an axis-aligned box in model space.
type Bounds struct {
	Min, Max mgl32.Vec3
}

func emptyBounds() Bounds {
	const inf = float32(1e30)
	return Bounds{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
}

// Valid reports whether the box contains at least one point.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Size() mgl32.Vec3 {
	if !b.Valid() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}
