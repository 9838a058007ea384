// Package shaders embeds the viewer's GLSL sources.
package shaders

import _ "embed"

// ModelVertex transforms mesh vertices into world and clip space.
//
//go:embed model.vert
var ModelVertex string

// LitFragment shades with a point light at sourceLightPos.
//
//go:embed model.frag
var LitFragment string

// EmissiveFragment outputs the diffuse texture unlit, for light sources and skies.
//
//go:embed light.frag
var EmissiveFragment string
