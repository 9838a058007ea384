package formats

import (
	"errors"
	"strings"
	"testing"
)

const crateMTL = `# crate material
newmtl crate
Ka 0.1 0.1 0.1
Kd 0.8 0.7 0.6
Ks 0.5
Ns 32
d 0.75
illum 2
map_Kd crate_diffuse.png
map_Ks -bm 0.5 crate_spec.png
map_Bump -bm 1.0 -s 2 2 1 crate_normal.png
map_Ka crate ao.png

newmtl glass
Tr 0.9
norm glass_n.png
`

func TestParseMTL(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader(crateMTL))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}

	crate := mats["crate"]
	if crate == nil {
		t.Fatal("crate material missing")
	}
	if crate.Diffuse != [3]float32{0.8, 0.7, 0.6} {
		t.Errorf("unexpected Kd %v", crate.Diffuse)
	}
	if crate.Specular != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("single-value Ks should replicate, got %v", crate.Specular)
	}
	if crate.Shininess != 32 || crate.Opacity != 0.75 || crate.Illum != 2 {
		t.Errorf("unexpected scalars Ns=%v d=%v illum=%d", crate.Shininess, crate.Opacity, crate.Illum)
	}

	maps := []struct {
		statement string
		want      string
	}{
		{"map_Kd", "crate_diffuse.png"},
		{"map_Ks", "crate_spec.png"},
		{"map_bump", "crate_normal.png"},
		{"map_Ka", "crate ao.png"},
		{"map_Ke", ""},
	}
	for _, m := range maps {
		if got := crate.Map(m.statement); got != m.want {
			t.Errorf("Map(%q) = %q, want %q", m.statement, got, m.want)
		}
	}

	glass := mats["glass"]
	if glass.Opacity < 0.099 || glass.Opacity > 0.101 {
		t.Errorf("Tr 0.9 should give opacity 0.1, got %v", glass.Opacity)
	}
	if glass.Map("norm") != "glass_n.png" {
		t.Errorf("unexpected norm map %q", glass.Map("norm"))
	}
}

func TestParseMTL_DefaultOpacity(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader("newmtl plain\nKd 1 1 1\n"))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if mats["plain"].Opacity != 1 {
		t.Errorf("expected default opacity 1, got %v", mats["plain"].Opacity)
	}
}

func TestParseMTL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"statement before newmtl", "Kd 1 1 1\n", ErrMaterialBeforeNewmtl},
		{"newmtl without name", "newmtl\n", ErrMalformedLine},
		{"map without file", "newmtl a\nmap_Kd -bm 0.5\n", ErrMalformedLine},
		{"unknown option", "newmtl a\nmap_Kd -zz 1 a.png\n", ErrMalformedLine},
		{"bad color", "newmtl a\nKd red\n", ErrMalformedLine},
		{"spectral color", "newmtl a\nKd spectral file.rfl\n", ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMTL(strings.NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTextureFile(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a.png"}, "a.png"},
		{[]string{"-clamp", "on", "a.png"}, "a.png"},
		{[]string{"-o", "0.5", "a.png"}, "a.png"},
		{[]string{"-o", "-1", "0", "0", "a.png"}, "a.png"},
		{[]string{"-mm", "0", "1", "-imfchan", "r", "a.png"}, "a.png"},
		{[]string{"dir", "with", "spaces.png"}, "dir with spaces.png"},
	}

	for _, tt := range tests {
		got, err := textureFile(tt.args)
		if err != nil {
			t.Errorf("textureFile(%v) failed: %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("textureFile(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
