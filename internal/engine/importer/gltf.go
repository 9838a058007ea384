package importer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	errBadDataURI     = errors.New("malformed data uri")
	errBadReference   = errors.New("reference out of range")
	errNoAccessorData = errors.New("accessor has no data")
)

type gltfFormat struct{}

func init() {
	Register(gltfFormat{})
}

func (gltfFormat) Name() string         { return "gltf" }
func (gltfFormat) Extensions() []string { return []string{".gltf", ".glb"} }

// Read loads a glTF or GLB document. The default scene's node hierarchy is
// kept under a synthetic root; each triangle primitive becomes one mesh.
// Primitives that cannot be read are skipped and mark the scene incomplete.
func (gltfFormat) Read(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	r := &gltfReader{
		doc:      doc,
		scene:    &Scene{},
		meshes:   make(map[int][]int),
		embedded: make(map[int]int),
	}
	r.readMaterials()

	nodes, err := r.sceneNodes()
	if err != nil {
		return nil, err
	}
	root := &Node{Name: filepath.Base(path), Transform: mgl32.Ident4()}
	for _, idx := range nodes {
		if child := r.readNode(idx, 0); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	r.scene.Root = root

	return r.scene, nil
}

type gltfReader struct {
	doc   *gltf.Document
	scene *Scene
	// meshes maps a glTF mesh index to the scene meshes built from its primitives.
	meshes map[int][]int
	// embedded maps a glTF image index to its position in Scene.Embedded.
	embedded map[int]int
}

func (r *gltfReader) warn(format string, args ...any) {
	r.scene.Warnings = append(r.scene.Warnings, fmt.Sprintf(format, args...))
}

func (r *gltfReader) sceneNodes() ([]int, error) {
	if len(r.doc.Scenes) == 0 {
		// No scenes: treat every node without a parent as a root.
		child := make(map[int]bool)
		for _, n := range r.doc.Nodes {
			for _, c := range n.Children {
				child[int(c)] = true
			}
		}
		var roots []int
		for i := range r.doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	s := 0
	if r.doc.Scene != nil {
		s = int(*r.doc.Scene)
	}
	if s >= len(r.doc.Scenes) {
		return nil, fmt.Errorf("%w: scene %d of %d", errBadReference, s, len(r.doc.Scenes))
	}
	var nodes []int
	for _, n := range r.doc.Scenes[s].Nodes {
		nodes = append(nodes, int(n))
	}
	return nodes, nil
}

// accessor returns the accessor at idx once it and the views it reads are in
// range. modeler indexes them without checking.
func (r *gltfReader) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", errBadReference, idx, len(r.doc.Accessors))
	}
	acr := r.doc.Accessors[idx]
	if acr.BufferView == nil && acr.Sparse == nil {
		return nil, fmt.Errorf("%w: accessor %d", errNoAccessorData, idx)
	}
	if acr.BufferView != nil {
		if err := r.checkView(*acr.BufferView, acr.ByteOffset); err != nil {
			return nil, fmt.Errorf("accessor %d: %w", idx, err)
		}
	}
	if sp := acr.Sparse; sp != nil {
		if err := r.checkView(sp.Indices.BufferView, sp.Indices.ByteOffset); err != nil {
			return nil, fmt.Errorf("accessor %d sparse indices: %w", idx, err)
		}
		if err := r.checkView(sp.Values.BufferView, sp.Values.ByteOffset); err != nil {
			return nil, fmt.Errorf("accessor %d sparse values: %w", idx, err)
		}
		// modeler looks the values stride up by byte offset.
		if int(sp.Values.ByteOffset) >= len(r.doc.BufferViews) {
			return nil, fmt.Errorf("%w: accessor %d sparse values offset %d", errBadReference, idx, sp.Values.ByteOffset)
		}
	}
	return acr, nil
}

func (r *gltfReader) checkView(view, offset uint32) error {
	if int(view) >= len(r.doc.BufferViews) {
		return fmt.Errorf("%w: buffer view %d of %d", errBadReference, view, len(r.doc.BufferViews))
	}
	if bv := r.doc.BufferViews[view]; offset > bv.ByteLength {
		return fmt.Errorf("%w: offset %d past buffer view %d", errBadReference, offset, view)
	}
	return nil
}

const maxNodeDepth = 256

func (r *gltfReader) readNode(idx, depth int) *Node {
	if idx < 0 || idx >= len(r.doc.Nodes) || depth > maxNodeDepth {
		r.warn("node %d: invalid reference", idx)
		return nil
	}
	src := r.doc.Nodes[idx]

	n := &Node{Name: src.Name, Transform: nodeTransform(src)}
	if n.Name == "" {
		n.Name = fmt.Sprintf("node%d", idx)
	}
	if src.Mesh != nil {
		n.Meshes = r.readMesh(int(*src.Mesh))
	}
	for _, c := range src.Children {
		if child := r.readNode(int(c), depth+1); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// nodeTransform returns the node's local matrix, composing TRS when no matrix is given.
func nodeTransform(n *gltf.Node) mgl32.Mat4 {
	m := n.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := n.Translation
	q := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(q[3]), V: mgl32.Vec3{float32(q[0]), float32(q[1]), float32(q[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (r *gltfReader) readMesh(idx int) []int {
	if built, ok := r.meshes[idx]; ok {
		return built
	}
	if idx < 0 || idx >= len(r.doc.Meshes) {
		r.warn("mesh %d: invalid reference", idx)
		r.scene.Flags |= SceneIncomplete
		return nil
	}

	src := r.doc.Meshes[idx]
	var built []int
	for p, prim := range src.Primitives {
		m, err := r.readPrimitive(prim)
		if err != nil {
			r.warn("mesh %q primitive %d: %v", src.Name, p, err)
			r.scene.Flags |= SceneIncomplete
			continue
		}
		if m == nil {
			continue
		}
		m.Name = src.Name
		built = append(built, len(r.scene.Meshes))
		r.scene.Meshes = append(r.scene.Meshes, m)
	}
	r.meshes[idx] = built
	return built
}

// readPrimitive returns nil, nil for point and line primitives.
func (r *gltfReader) readPrimitive(prim *gltf.Primitive) (*Mesh, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	acr, err := r.accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(r.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	m := &Mesh{Positions: make([]mgl32.Vec3, len(positions))}
	for i, p := range positions {
		m.Positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := r.accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		normals, err := modeler.ReadNormal(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if len(normals) == len(positions) {
			m.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				m.Normals[i] = n
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		acr, err := r.accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
		tangents, err := modeler.ReadTangent(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
		if len(tangents) == len(positions) && m.HasNormals() {
			m.Tangents = make([]mgl32.Vec3, len(tangents))
			m.Bitangents = make([]mgl32.Vec3, len(tangents))
			for i, t := range tangents {
				// w holds the handedness of the bitangent.
				tv := mgl32.Vec3{t[0], t[1], t[2]}
				m.Tangents[i] = tv
				m.Bitangents[i] = m.Normals[i].Cross(tv).Mul(t[3])
			}
		}
	}

	for ch := 0; ; ch++ {
		idx, ok := prim.Attributes[fmt.Sprintf("TEXCOORD_%d", ch)]
		if !ok {
			break
		}
		acr, err := r.accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("texcoord %d: %w", ch, err)
		}
		uvs, err := modeler.ReadTextureCoord(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("texcoord %d: %w", ch, err)
		}
		channel := make([]mgl32.Vec2, len(positions))
		for i := 0; i < len(uvs) && i < len(channel); i++ {
			channel[i] = uvs[i]
		}
		var filled []bool
		if len(uvs) < len(channel) {
			filled = make([]bool, len(channel))
			for i := len(uvs); i < len(filled); i++ {
				filled[i] = true
			}
		}
		m.TexCoords = append(m.TexCoords, channel)
		m.UVFilled = append(m.UVFilled, filled)
	}

	var indices []int
	if prim.Indices != nil {
		acr, err := r.accessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		raw, err := modeler.ReadIndices(r.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		indices = make([]int, len(raw))
		for i, v := range raw {
			indices[i] = int(v)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}
	for _, v := range indices {
		if v < 0 || v >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", v, len(positions))
		}
	}

	m.Faces = primitiveFaces(prim.Mode, indices)
	if prim.Material != nil {
		// Material 0 is the default; glTF materials follow it.
		m.Material = int(*prim.Material) + 1
	}
	return m, nil
}

// primitiveFaces expands a triangle list, strip or fan into triangles.
func primitiveFaces(mode gltf.PrimitiveMode, idx []int) [][]uint32 {
	tri := func(a, b, c int) []uint32 { return []uint32{uint32(a), uint32(b), uint32(c)} }

	var faces [][]uint32
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, tri(idx[i], idx[i+1], idx[i+2]))
			} else {
				faces = append(faces, tri(idx[i+1], idx[i], idx[i+2]))
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, tri(idx[0], idx[i], idx[i+1]))
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, tri(idx[i], idx[i+1], idx[i+2]))
		}
	}
	return faces
}

func (r *gltfReader) readMaterials() {
	r.scene.Materials = []*Material{NewMaterial(DefaultMaterialName)}
	for i, src := range r.doc.Materials {
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("material%d", i)
		}
		m := NewMaterial(name)

		if pbr := src.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorTexture != nil {
				ref := r.textureRef(int(pbr.BaseColorTexture.Index))
				m.AddTexture(TextureDiffuse, ref)
				m.AddTexture(TextureBaseColor, ref)
			}
			if pbr.MetallicRoughnessTexture != nil {
				m.AddTexture(TextureMetalness, r.textureRef(int(pbr.MetallicRoughnessTexture.Index)))
			}
		}
		if src.NormalTexture != nil && src.NormalTexture.Index != nil {
			m.AddTexture(TextureNormals, r.textureRef(int(*src.NormalTexture.Index)))
		}
		if src.OcclusionTexture != nil && src.OcclusionTexture.Index != nil {
			m.AddTexture(TextureLightmap, r.textureRef(int(*src.OcclusionTexture.Index)))
		}
		if src.EmissiveTexture != nil {
			m.AddTexture(TextureEmissive, r.textureRef(int(src.EmissiveTexture.Index)))
		}

		r.scene.Materials = append(r.scene.Materials, m)
	}
}

// textureRef turns a glTF texture into a file path or an "*N" embedded reference.
// Unresolvable textures yield a reference that fails to load later.
func (r *gltfReader) textureRef(texIdx int) string {
	if texIdx < 0 || texIdx >= len(r.doc.Textures) || r.doc.Textures[texIdx].Source == nil {
		r.warn("texture %d: no image source", texIdx)
		return fmt.Sprintf("<missing texture %d>", texIdx)
	}
	imgIdx := int(*r.doc.Textures[texIdx].Source)
	if imgIdx < 0 || imgIdx >= len(r.doc.Images) {
		r.warn("texture %d: invalid image %d", texIdx, imgIdx)
		return fmt.Sprintf("<missing image %d>", imgIdx)
	}
	img := r.doc.Images[imgIdx]

	// gltf.Open has already percent-decoded external URIs.
	if img.BufferView == nil && !strings.HasPrefix(img.URI, "data:") {
		return img.URI
	}

	if n, ok := r.embedded[imgIdx]; ok {
		return fmt.Sprintf("*%d", n)
	}
	data, err := r.imageData(img)
	if err != nil {
		r.warn("image %d: %v", imgIdx, err)
		return fmt.Sprintf("<missing image %d>", imgIdx)
	}
	n := len(r.scene.Embedded)
	r.scene.Embedded = append(r.scene.Embedded, data)
	r.embedded[imgIdx] = n
	return fmt.Sprintf("*%d", n)
}

func (r *gltfReader) imageData(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bvIdx := int(*img.BufferView)
		if bvIdx < 0 || bvIdx >= len(r.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bvIdx)
		}
		bv := r.doc.BufferViews[bvIdx]
		if int(bv.Buffer) >= len(r.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		buf := r.doc.Buffers[bv.Buffer].Data
		start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
		if end > len(buf) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", bvIdx)
		}
		return buf[start:end], nil
	}
	return decodeDataURI(img.URI)
}

// decodeDataURI decodes "data:[<mime>][;base64],<data>".
func decodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errBadDataURI
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadDataURI, err)
	}
	return data, nil
}
