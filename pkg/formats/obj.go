// OBJ (geometry) format parser.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrMalformedLine   = errors.New("malformed statement")
	ErrInvalidFace     = errors.New("face needs at least 3 vertices")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// OBJNone marks an absent texture coordinate or normal reference in a corner.
const OBJNone = -1

// OBJCorner references the attributes of one face corner. Indices are 0-based
// and already resolved from relative (negative) form; absent ones are OBJNone.
type OBJCorner struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a polygon with 3 or more corners.
type OBJFace struct {
	Corners     []OBJCorner
	Material    string // Material active at the face ("" if none)
	SmoothGroup int    // 0 = off
}

// OBJObject is a named group of faces ("o" or "g" statement).
type OBJObject struct {
	Name  string
	Faces []OBJFace
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	Objects      []OBJObject
	MaterialLibs []string // mtllib file names, relative to the .obj
	Warnings     []string
}

// FaceCount returns the number of faces across all objects.
func (o *OBJ) FaceCount() int {
	n := 0
	for i := range o.Objects {
		n += len(o.Objects[i].Faces)
	}
	return n
}

type objParser struct {
	obj      *OBJ
	line     int
	current  *OBJObject
	material string
	smooth   int
}

// ParseOBJ parses OBJ text from r.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	p := &objParser{obj: &OBJ{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("obj line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}

	// Drop empty objects left behind by "o" without faces.
	objects := p.obj.Objects[:0]
	for _, o := range p.obj.Objects {
		if len(o.Faces) > 0 {
			objects = append(objects, o)
		}
	}
	p.obj.Objects = objects

	return p.obj, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	args := fields[1:]
	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3, 4)
		if err != nil {
			return err
		}
		p.obj.Positions = append(p.obj.Positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(args, 1, 3)
		if err != nil {
			return err
		}
		uv := [2]float32{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		p.obj.TexCoords = append(p.obj.TexCoords, uv)
	case "vn":
		v, err := parseFloats(args, 3, 3)
		if err != nil {
			return err
		}
		p.obj.Normals = append(p.obj.Normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(args)
	case "o", "g":
		name := strings.Join(args, " ")
		if name == "" {
			name = "default"
		}
		p.obj.Objects = append(p.obj.Objects, OBJObject{Name: name})
		p.current = &p.obj.Objects[len(p.obj.Objects)-1]
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("%w: usemtl without name", ErrMalformedLine)
		}
		p.material = strings.Join(args, " ")
	case "mtllib":
		if len(args) == 0 {
			return fmt.Errorf("%w: mtllib without file", ErrMalformedLine)
		}
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, args...)
	case "s":
		p.smooth = 0
		if len(args) > 0 && args[0] != "off" {
			if n, err := strconv.Atoi(args[0]); err == nil {
				p.smooth = n
			}
		}
	case "l", "p", "vp", "cstype", "deg", "curv", "surf", "parm", "end":
		// Lines, points and free-form geometry are not rendered.
	default:
		p.obj.Warnings = append(p.obj.Warnings, fmt.Sprintf("line %d: unsupported statement %q", p.line, fields[0]))
	}
	return nil
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return ErrInvalidFace
	}

	face := OBJFace{
		Corners:     make([]OBJCorner, len(args)),
		Material:    p.material,
		SmoothGroup: p.smooth,
	}
	for i, tok := range args {
		c, err := p.parseCorner(tok)
		if err != nil {
			return err
		}
		face.Corners[i] = c
	}

	if p.current == nil {
		p.obj.Objects = append(p.obj.Objects, OBJObject{Name: "default"})
		p.current = &p.obj.Objects[len(p.obj.Objects)-1]
	}
	p.current.Faces = append(p.current.Faces, face)
	return nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) parseCorner(tok string) (OBJCorner, error) {
	c := OBJCorner{TexCoord: OBJNone, Normal: OBJNone}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("%w: face corner %q", ErrMalformedLine, tok)
	}

	var err error
	if c.Position, err = resolveIndex(parts[0], len(p.obj.Positions)); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = resolveIndex(parts[1], len(p.obj.TexCoords)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = resolveIndex(parts[2], len(p.obj.Normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to 0-based.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedLine, s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d with %d defined", ErrIndexOutOfRange, n, count)
	}
	return idx, nil
}

func parseFloats(args []string, min, max int) ([]float32, error) {
	if len(args) < min {
		return nil, fmt.Errorf("%w: expected at least %d values, got %d", ErrMalformedLine, min, len(args))
	}
	if len(args) > max {
		args = args[:max]
	}
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedLine, a)
		}
		out[i] = float32(f)
	}
	return out, nil
}
