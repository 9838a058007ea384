package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// GL is the OpenGL 4.1 core implementation of Device.
// gl.Init must have succeeded on the calling thread before it is used.
type GL struct{}

// NewGL returns a Device backed by the current OpenGL context.
func NewGL() *GL {
	return &GL{}
}

func (GL) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (GL) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (GL) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (GL) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (GL) DeleteBuffer(buf uint32) {
	gl.DeleteBuffers(1, &buf)
}

func (GL) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (GL) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (GL) BindBuffer(target BufferTarget, buf uint32) {
	gl.BindBuffer(glTarget(target), buf)
}

func (GL) BufferData(target BufferTarget, data []byte) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(glTarget(target), len(data), gl.Ptr(&data[0]), gl.STATIC_DRAW)
}

func (GL) VertexAttribPointer(attr Attribute) {
	gl.EnableVertexAttribArray(attr.Slot)
	gl.VertexAttribPointerWithOffset(attr.Slot, attr.Components, gl.FLOAT, false, attr.Stride, attr.Offset)
}

func (GL) TexImage2D(img Image) {
	format := glFormat(img.Format)
	// Rows of RED and RGB images are not 4-byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(img.Width), int32(img.Height), 0,
		format, gl.UNSIGNED_BYTE, gl.Ptr(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
}

func (GL) GenerateMipmap() {
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

func (GL) SetSampling(s Sampling) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(s.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(s.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(s.MagFilter))
}

func (GL) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (GL) BindTexture(tex uint32) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (GL) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (GL) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) Uniform1i(location int32, value int32) {
	gl.Uniform1i(location, value)
}

func (GL) Uniform1f(location int32, value float32) {
	gl.Uniform1f(location, value)
}

func (GL) Uniform3f(location int32, value [3]float32) {
	gl.Uniform3f(location, value[0], value[1], value[2])
}

func (GL) UniformMatrix4f(location int32, value [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &value[0])
}

func (GL) DrawTriangles(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
}

func glTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glFormat(f PixelFormat) uint32 {
	switch f {
	case FormatRed:
		return gl.RED
	case FormatRGB:
		return gl.RGB
	default:
		return gl.RGBA
	}
}

func glWrap(w Wrap) int32 {
	if w == WrapClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

func glFilter(f Filter) int32 {
	switch f {
	case FilterNearest:
		return gl.NEAREST
	case FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}
