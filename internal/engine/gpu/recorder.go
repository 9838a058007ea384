package gpu

import (
	"fmt"
	"sort"
)

// UniformCall is one uniform write issued through a Recorder, resolved back to
// its name. Integer writes fill Value, float writes fill Floats.
type UniformCall struct {
	Program uint32
	Name    string
	Value   int32
	Floats  []float32
}

// DrawCall is one DrawTriangles issued through a Recorder with the state it saw.
type DrawCall struct {
	Program     uint32
	VertexArray uint32
	IndexBuffer uint32
	Count       int32
	// Units maps texture unit to the texture bound on it at draw time.
	Units map[uint32]uint32
}

// TextureState is what a Recorder remembers about a texture object.
type TextureState struct {
	Image     Image
	Sampling  Sampling
	Mipmapped bool
}

type uniformKey struct {
	program uint32
	name    string
}

// Recorder is a headless Device. It hands out increasing handles, keeps enough
// state to answer questions about what was uploaded and drawn, and records
// misuse (double deletes, draws without a vertex array) as faults instead of
// crashing. It is used by tests and by meshtool to load models without a window.
type Recorder struct {
	next uint32

	vertexArrays map[uint32]uint32 // vao -> element buffer bound while it was current
	buffers      map[uint32][]byte
	textures     map[uint32]*TextureState

	program      uint32
	boundVAO     uint32
	boundBuffers map[BufferTarget]uint32
	activeUnit   uint32
	units        map[uint32]uint32

	attributes map[uint32][]Attribute

	locations map[uniformKey]int32
	names     map[int32]uniformKey

	TexturesCreated int
	Uniforms        []UniformCall
	Draws           []DrawCall
	DeletedPrograms []uint32
	Faults          []string

	failGen map[string]int
}

// NewRecorder returns an empty headless device.
func NewRecorder() *Recorder {
	return &Recorder{
		vertexArrays: make(map[uint32]uint32),
		buffers:      make(map[uint32][]byte),
		textures:     make(map[uint32]*TextureState),
		boundBuffers: make(map[BufferTarget]uint32),
		units:        make(map[uint32]uint32),
		attributes:   make(map[uint32][]Attribute),
		locations:    make(map[uniformKey]int32),
		names:        make(map[int32]uniformKey),
		failGen:      make(map[string]int),
	}
}

// FailNext makes the next n Gen calls of kind ("vertexarray", "buffer" or
// "texture") return 0, as a driver out of memory would.
func (r *Recorder) FailNext(kind string, n int) {
	r.failGen[kind] += n
}

func (r *Recorder) gen(kind string) uint32 {
	if r.failGen[kind] > 0 {
		r.failGen[kind]--
		return 0
	}
	r.next++
	return r.next
}

func (r *Recorder) fault(format string, args ...any) {
	r.Faults = append(r.Faults, fmt.Sprintf(format, args...))
}

func (r *Recorder) GenVertexArray() uint32 {
	h := r.gen("vertexarray")
	if h != 0 {
		r.vertexArrays[h] = 0
	}
	return h
}

func (r *Recorder) GenBuffer() uint32 {
	h := r.gen("buffer")
	if h != 0 {
		r.buffers[h] = nil
	}
	return h
}

func (r *Recorder) GenTexture() uint32 {
	h := r.gen("texture")
	if h != 0 {
		r.textures[h] = &TextureState{}
		r.TexturesCreated++
	}
	return h
}

func (r *Recorder) DeleteVertexArray(vao uint32) {
	if _, ok := r.vertexArrays[vao]; !ok {
		r.fault("delete of unknown vertex array %d", vao)
		return
	}
	delete(r.vertexArrays, vao)
	delete(r.attributes, vao)
	if r.boundVAO == vao {
		r.boundVAO = 0
	}
}

func (r *Recorder) DeleteBuffer(buf uint32) {
	if _, ok := r.buffers[buf]; !ok {
		r.fault("delete of unknown buffer %d", buf)
		return
	}
	delete(r.buffers, buf)
}

func (r *Recorder) DeleteTexture(tex uint32) {
	if _, ok := r.textures[tex]; !ok {
		r.fault("delete of unknown texture %d", tex)
		return
	}
	delete(r.textures, tex)
}

func (r *Recorder) BindVertexArray(vao uint32) {
	if _, ok := r.vertexArrays[vao]; vao != 0 && !ok {
		r.fault("bind of unknown vertex array %d", vao)
	}
	r.boundVAO = vao
}

func (r *Recorder) BindBuffer(target BufferTarget, buf uint32) {
	if _, ok := r.buffers[buf]; buf != 0 && !ok {
		r.fault("bind of unknown buffer %d", buf)
	}
	r.boundBuffers[target] = buf
	if target == ElementArrayBuffer && r.boundVAO != 0 {
		r.vertexArrays[r.boundVAO] = buf
	}
}

func (r *Recorder) BufferData(target BufferTarget, data []byte) {
	buf := r.boundBuffers[target]
	if buf == 0 {
		r.fault("buffer data with nothing bound")
		return
	}
	r.buffers[buf] = append([]byte(nil), data...)
}

func (r *Recorder) VertexAttribPointer(attr Attribute) {
	if r.boundVAO == 0 {
		r.fault("attribute %d declared without a vertex array", attr.Slot)
		return
	}
	r.attributes[r.boundVAO] = append(r.attributes[r.boundVAO], attr)
}

func (r *Recorder) boundTexture() *TextureState {
	tex := r.units[r.activeUnit]
	st, ok := r.textures[tex]
	if !ok {
		r.fault("texture operation on unit %d with no texture", r.activeUnit)
		return nil
	}
	return st
}

func (r *Recorder) TexImage2D(img Image) {
	if st := r.boundTexture(); st != nil {
		st.Image = img
	}
}

func (r *Recorder) GenerateMipmap() {
	if st := r.boundTexture(); st != nil {
		st.Mipmapped = true
	}
}

func (r *Recorder) SetSampling(s Sampling) {
	if st := r.boundTexture(); st != nil {
		st.Sampling = s
	}
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.activeUnit = unit
}

func (r *Recorder) BindTexture(tex uint32) {
	r.units[r.activeUnit] = tex
}

func (r *Recorder) UseProgram(program uint32) {
	r.program = program
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.DeletedPrograms = append(r.DeletedPrograms, program)
	if r.program == program {
		r.program = 0
	}
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	key := uniformKey{program: program, name: name}
	if loc, ok := r.locations[key]; ok {
		return loc
	}
	loc := int32(len(r.locations))
	r.locations[key] = loc
	r.names[loc] = key
	return loc
}

func (r *Recorder) uniform(location int32, call UniformCall) {
	key, ok := r.names[location]
	if !ok {
		r.fault("uniform write to unknown location %d", location)
		return
	}
	if key.program != r.program {
		r.fault("uniform %s of program %d written while program %d in use", key.name, key.program, r.program)
	}
	call.Program = key.program
	call.Name = key.name
	r.Uniforms = append(r.Uniforms, call)
}

func (r *Recorder) Uniform1i(location int32, value int32) {
	r.uniform(location, UniformCall{Value: value})
}

func (r *Recorder) Uniform1f(location int32, value float32) {
	r.uniform(location, UniformCall{Floats: []float32{value}})
}

func (r *Recorder) Uniform3f(location int32, value [3]float32) {
	r.uniform(location, UniformCall{Floats: value[:]})
}

func (r *Recorder) UniformMatrix4f(location int32, value [16]float32) {
	r.uniform(location, UniformCall{Floats: value[:]})
}

func (r *Recorder) DrawTriangles(count int32) {
	if r.boundVAO == 0 {
		r.fault("draw with no vertex array bound")
		return
	}
	units := make(map[uint32]uint32, len(r.units))
	for u, t := range r.units {
		if t != 0 {
			units[u] = t
		}
	}
	r.Draws = append(r.Draws, DrawCall{
		Program:     r.program,
		VertexArray: r.boundVAO,
		IndexBuffer: r.vertexArrays[r.boundVAO],
		Count:       count,
		Units:       units,
	})
}

// ActiveUnit returns the currently active texture unit.
func (r *Recorder) ActiveUnit() uint32 {
	return r.activeUnit
}

// BoundVertexArray returns the vertex array currently bound.
func (r *Recorder) BoundVertexArray() uint32 {
	return r.boundVAO
}

// Live returns how many vertex arrays, buffers and textures are still allocated.
func (r *Recorder) Live() (vertexArrays, buffers, textures int) {
	return len(r.vertexArrays), len(r.buffers), len(r.textures)
}

// BufferContents returns the bytes last uploaded to buf.
func (r *Recorder) BufferContents(buf uint32) []byte {
	return r.buffers[buf]
}

// Attributes returns the attribute layout declared on vao, in declaration order.
func (r *Recorder) Attributes(vao uint32) []Attribute {
	return r.attributes[vao]
}

// Texture returns the recorded state of tex, or nil if it does not exist.
func (r *Recorder) Texture(tex uint32) *TextureState {
	return r.textures[tex]
}

// CurrentProgram returns the program last passed to UseProgram.
func (r *Recorder) CurrentProgram() uint32 {
	return r.program
}

// LastUniform returns the most recent write to the named uniform.
func (r *Recorder) LastUniform(name string) (UniformCall, bool) {
	for i := len(r.Uniforms) - 1; i >= 0; i-- {
		if r.Uniforms[i].Name == name {
			return r.Uniforms[i], true
		}
	}
	return UniformCall{}, false
}

// UniformNames returns the distinct uniform names written, sorted.
func (r *Recorder) UniformNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, u := range r.Uniforms {
		if !seen[u.Name] {
			seen[u.Name] = true
			names = append(names, u.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Reset forgets recorded uniforms, draws and faults but keeps allocated objects.
func (r *Recorder) Reset() {
	r.Uniforms = nil
	r.Draws = nil
	r.Faults = nil
}
