package mesh

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

// Vertex is one interleaved vertex as the shaders consume it.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// VertexSize is the stride of Vertex in bytes.
const VertexSize = int32(unsafe.Sizeof(Vertex{}))

// Layout declares attribute slots 0-4 in field order.
var Layout = []gpu.Attribute{
	{Slot: 0, Components: 3, Stride: VertexSize, Offset: unsafe.Offsetof(Vertex{}.Position)},
	{Slot: 1, Components: 3, Stride: VertexSize, Offset: unsafe.Offsetof(Vertex{}.Normal)},
	{Slot: 2, Components: 2, Stride: VertexSize, Offset: unsafe.Offsetof(Vertex{}.TexCoords)},
	{Slot: 3, Components: 3, Stride: VertexSize, Offset: unsafe.Offsetof(Vertex{}.Tangent)},
	{Slot: 4, Components: 3, Stride: VertexSize, Offset: unsafe.Offsetof(Vertex{}.Bitangent)},
}

func vertexBytes(vs []Vertex) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*int(VertexSize))
}

func indexBytes(is []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&is[0])), len(is)*4)
}
