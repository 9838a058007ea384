package importer

import (
	"github.com/go-gl/mathgl/mgl32"
)

const degenerateEpsilon = 1e-12

// triangulate fans polygons around their first vertex. Points and lines are dropped.
func triangulate(s *Scene) {
	for _, m := range s.Meshes {
		faces := make([][]uint32, 0, len(m.Faces))
		for _, f := range m.Faces {
			switch {
			case len(f) < 3:
				continue
			case len(f) == 3:
				faces = append(faces, f)
			default:
				for i := 1; i+1 < len(f); i++ {
					faces = append(faces, []uint32{f[0], f[i], f[i+1]})
				}
			}
		}
		m.Faces = faces
	}
}

// genNormals gives meshes without normals smooth normals: every vertex gets
// the normalized sum of the area-weighted normals of all faces touching its
// position, so UV seams do not split shading.
func genNormals(s *Scene) {
	for _, m := range s.Meshes {
		if m.HasNormals() || len(m.Positions) == 0 {
			continue
		}

		acc := make(map[mgl32.Vec3]mgl32.Vec3, len(m.Positions))
		for _, f := range m.Faces {
			n := faceNormal(m.Positions, f)
			for _, idx := range f {
				p := m.Positions[idx]
				acc[p] = acc[p].Add(n)
			}
		}

		m.Normals = make([]mgl32.Vec3, len(m.Positions))
		for i, p := range m.Positions {
			m.Normals[i] = normalizeOr(acc[p], mgl32.Vec3{0, 1, 0})
		}
	}
}

// faceNormal returns the unnormalized normal of a polygon, twice its area long.
func faceNormal(pos []mgl32.Vec3, f []uint32) mgl32.Vec3 {
	var n mgl32.Vec3
	if len(f) < 3 {
		return n
	}
	p0 := pos[f[0]]
	for i := 1; i+1 < len(f); i++ {
		n = n.Add(pos[f[i]].Sub(p0).Cross(pos[f[i+1]].Sub(p0)))
	}
	return n
}

func flipUVs(s *Scene) {
	for _, m := range s.Meshes {
		for c, ch := range m.TexCoords {
			var filled []bool
			if c < len(m.UVFilled) {
				filled = m.UVFilled[c]
			}
			for i := range ch {
				if i < len(filled) && filled[i] {
					continue
				}
				ch[i][1] = 1 - ch[i][1]
			}
		}
	}
}

// calcTangentSpace derives per-vertex tangents and bitangents from UV channel 0.
// Meshes without normals or UVs, or that already have tangents, are left alone.
func calcTangentSpace(s *Scene) {
	for _, m := range s.Meshes {
		if m.HasTangents() || !m.HasNormals() || !m.HasTexCoords(0) {
			continue
		}

		uv := m.TexCoords[0]
		tan := make([]mgl32.Vec3, len(m.Positions))
		bit := make([]mgl32.Vec3, len(m.Positions))

		for _, f := range m.Faces {
			for i := 1; i+1 < len(f); i++ {
				a, b, c := f[0], f[i], f[i+1]
				e1 := m.Positions[b].Sub(m.Positions[a])
				e2 := m.Positions[c].Sub(m.Positions[a])
				d1 := uv[b].Sub(uv[a])
				d2 := uv[c].Sub(uv[a])

				det := d1[0]*d2[1] - d2[0]*d1[1]
				if det*det < degenerateEpsilon {
					continue
				}
				r := 1 / det
				t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
				bt := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)

				for _, idx := range [3]uint32{a, b, c} {
					tan[idx] = tan[idx].Add(t)
					bit[idx] = bit[idx].Add(bt)
				}
			}
		}

		for i, n := range m.Normals {
			// Gram-Schmidt against the normal, then rebuild the bitangent
			// keeping the handedness the UVs imply.
			t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
			t = normalizeOr(t, perpendicular(n))
			b := n.Cross(t)
			if b.Dot(bit[i]) < 0 {
				b = b.Mul(-1)
			}
			tan[i] = t
			bit[i] = b
		}

		m.Tangents = tan
		m.Bitangents = bit
	}
}

func normalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Dot(v) < degenerateEpsilon {
		return fallback
	}
	return v.Normalize()
}

// perpendicular returns some unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if mgl32.Abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return normalizeOr(axis.Sub(n.Mul(n.Dot(axis))), mgl32.Vec3{0, 0, 1})
}
