// Package gpu defines the graphics device surface used by the mesh pipeline.
//
// Every method must be called from the thread that owns the OpenGL context.
package gpu

// BufferTarget selects the binding point for buffer operations.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// PixelFormat describes the channel layout of texture pixel data.
type PixelFormat int

const (
	FormatRed PixelFormat = iota + 1
	FormatRGB
	FormatRGBA
)

// Channels returns the number of 8-bit channels per pixel.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatRed:
		return 1
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

// String returns the GL-style format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRed:
		return "RED"
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	default:
		return "UNKNOWN"
	}
}

// Wrap is a texture coordinate wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
	FilterLinearMipmapLinear
)

// Sampling holds the sampler state applied to a 2D texture.
type Sampling struct {
	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
}

// DefaultSampling repeats in both axes with trilinear minification.
var DefaultSampling = Sampling{
	WrapS:     WrapRepeat,
	WrapT:     WrapRepeat,
	MinFilter: FilterLinearMipmapLinear,
	MagFilter: FilterLinear,
}

// Attribute describes one float vertex attribute inside an interleaved buffer.
type Attribute struct {
	Slot       uint32
	Components int32
	Stride     int32
	Offset     uintptr
}

// Image is tightly packed 8-bit pixel data ready for upload.
type Image struct {
	Width  int
	Height int
	Format PixelFormat
	Pix    []byte
}

// Device is the subset of the graphics API needed to upload and draw meshes.
// Handles are opaque non-zero integers; zero means "no object".
type Device interface {
	GenVertexArray() uint32
	GenBuffer() uint32
	GenTexture() uint32

	DeleteVertexArray(vao uint32)
	DeleteBuffer(buf uint32)
	DeleteTexture(tex uint32)

	BindVertexArray(vao uint32)
	BindBuffer(target BufferTarget, buf uint32)
	BufferData(target BufferTarget, data []byte)
	VertexAttribPointer(attr Attribute)

	// TexImage2D uploads img to the texture bound to the active unit.
	TexImage2D(img Image)
	GenerateMipmap()
	SetSampling(s Sampling)

	ActiveTexture(unit uint32)
	BindTexture(tex uint32)

	UseProgram(program uint32)
	DeleteProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, value int32)
	Uniform1f(location int32, value float32)
	Uniform3f(location int32, value [3]float32)
	UniformMatrix4f(location int32, value [16]float32)

	// DrawTriangles issues one indexed triangle-list draw over count uint32 indices.
	DrawTriangles(count int32)
}
