package texture

// Role is the semantic purpose of a texture within a material.
type Role int

const (
	RoleDiffuse Role = iota
	RoleSpecular
	RoleNormal
	RoleHeight
)

// Roles lists every role in the order meshes collect them.
var Roles = []Role{RoleDiffuse, RoleSpecular, RoleNormal, RoleHeight}

// String returns the short role name.
func (r Role) String() string {
	switch r {
	case RoleDiffuse:
		return "diffuse"
	case RoleSpecular:
		return "specular"
	case RoleNormal:
		return "normal"
	case RoleHeight:
		return "height"
	default:
		return "unknown"
	}
}

// Uniform returns the sampler uniform prefix for the role, e.g. "texture_diffuse".
// Shaders declare texture_diffuse1, texture_diffuse2, ... per mesh.
func (r Role) Uniform() string {
	return "texture_" + r.String()
}
