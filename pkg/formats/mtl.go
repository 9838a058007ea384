// MTL (material library) format parser.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMaterialBeforeNewmtl is returned when a material statement precedes any newmtl.
var ErrMaterialBeforeNewmtl = errors.New("material statement before newmtl")

// MTLMaterial is one material from a .mtl file.
type MTLMaterial struct {
	Name      string
	Ambient   [3]float32 // Ka
	Diffuse   [3]float32 // Kd
	Specular  [3]float32 // Ks
	Emissive  [3]float32 // Ke
	Shininess float32    // Ns
	Opacity   float32    // d, or 1-Tr
	Illum     int

	// Maps holds texture file names keyed by lower-cased statement
	// ("map_kd", "bump", "norm", ...), in file order.
	Maps map[string][]string
}

// Map returns the first file name for a texture statement, or "".
func (m *MTLMaterial) Map(statement string) string {
	if files := m.Maps[strings.ToLower(statement)]; len(files) > 0 {
		return files[0]
	}
	return ""
}

// texture option arity; 0 means "up to 3 numbers".
var mtlOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-boost":   1,
	"-bm":      1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-texres":  1,
	"-type":    1,
	"-mm":      2,
	"-o":       0,
	"-s":       0,
	"-t":       0,
}

// ParseMTL parses a material library. Materials are keyed by name; a later
// definition with the same name replaces the earlier one.
func ParseMTL(r io.Reader) (map[string]*MTLMaterial, error) {
	materials := make(map[string]*MTLMaterial)
	var current *MTLMaterial

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		key := strings.ToLower(fields[0])
		args := fields[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("mtl line %d: %w: newmtl without name", line, ErrMalformedLine)
			}
			current = &MTLMaterial{
				Name:    strings.Join(args, " "),
				Opacity: 1,
				Maps:    make(map[string][]string),
			}
			materials[current.Name] = current
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("mtl line %d: %w", line, ErrMaterialBeforeNewmtl)
		}
		if err := current.apply(key, args); err != nil {
			return nil, fmt.Errorf("mtl line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mtl: %w", err)
	}

	return materials, nil
}

func (m *MTLMaterial) apply(key string, args []string) error {
	switch {
	case key == "ka" || key == "kd" || key == "ks" || key == "ke":
		c, err := parseColor(args)
		if err != nil {
			return err
		}
		switch key {
		case "ka":
			m.Ambient = c
		case "kd":
			m.Diffuse = c
		case "ks":
			m.Specular = c
		case "ke":
			m.Emissive = c
		}
	case key == "ns":
		v, err := parseFloats(args, 1, 1)
		if err != nil {
			return err
		}
		m.Shininess = v[0]
	case key == "d":
		v, err := parseFloats(args, 1, 1)
		if err != nil {
			return err
		}
		m.Opacity = v[0]
	case key == "tr":
		v, err := parseFloats(args, 1, 1)
		if err != nil {
			return err
		}
		m.Opacity = 1 - v[0]
	case key == "illum":
		if len(args) == 0 {
			return fmt.Errorf("%w: illum without model", ErrMalformedLine)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: illum %q", ErrMalformedLine, args[0])
		}
		m.Illum = n
	case strings.HasPrefix(key, "map_") || key == "bump" || key == "norm" || key == "disp" || key == "refl" || key == "decal":
		file, err := textureFile(args)
		if err != nil {
			return err
		}
		m.Maps[key] = append(m.Maps[key], file)
	}
	// Ni, Tf, sharpness and vendor extensions are ignored.
	return nil
}

// parseColor reads "r g b"; a single value is replicated to all channels.
func parseColor(args []string) ([3]float32, error) {
	if len(args) > 0 && (args[0] == "spectral" || args[0] == "xyz") {
		return [3]float32{}, fmt.Errorf("%w: %s colors not supported", ErrMalformedLine, args[0])
	}
	v, err := parseFloats(args, 1, 3)
	if err != nil {
		return [3]float32{}, err
	}
	if len(v) < 3 {
		return [3]float32{v[0], v[0], v[0]}, nil
	}
	return [3]float32{v[0], v[1], v[2]}, nil
}

// textureFile skips texture options and returns the remaining tokens as the file name.
func textureFile(args []string) (string, error) {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		n, ok := mtlOptionArgs[strings.ToLower(args[i])]
		if !ok {
			return "", fmt.Errorf("%w: unknown texture option %s", ErrMalformedLine, args[i])
		}
		i++
		if n == 0 {
			for k := 0; k < 3 && i < len(args) && isNumber(args[i]); k++ {
				i++
			}
			continue
		}
		i += n
	}
	if i >= len(args) {
		return "", fmt.Errorf("%w: texture statement without file", ErrMalformedLine)
	}
	return strings.Join(args[i:], " "), nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}
