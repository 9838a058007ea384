package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/framebuffer"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/texture"
	"github.com/Faultbox/meshview/internal/engine/ui"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/viewer"
	"github.com/Faultbox/meshview/internal/viewer/shaders"
)

const previewSize = 768

// Preview renders one model file offscreen with an orbit camera.
type Preview struct {
	dev     gpu.Device
	program *shader.Program
	fb      *framebuffer.Framebuffer
	cam     *camera.OrbitCamera
	scene   *viewer.Scene
	watcher *viewer.Watcher
	opts    previewOptions
	path    string
	loadErr error
	start   time.Time

	lastMouse imgui.Vec2
}

type previewOptions struct {
	Spin            bool
	FlipTextures    bool
	GenerateNormals bool
	Strict          bool
}

// NewPreview compiles the lit program and allocates the render target.
func NewPreview() (*Preview, error) {
	program, err := shader.Compile(shaders.ModelVertex, shaders.LitFragment)
	if err != nil {
		return nil, fmt.Errorf("preview program: %w", err)
	}
	fb, err := framebuffer.New(previewSize, previewSize, [4]float32{0.15, 0.15, 0.15, 1})
	if err != nil {
		program.Delete()
		return nil, err
	}
	return &Preview{
		dev:     gpu.NewGL(),
		program: program,
		fb:      fb,
		cam:     camera.NewOrbitCamera(),
		opts:    previewOptions{FlipTextures: true, GenerateNormals: true},
		start:   time.Now(),
	}, nil
}

// Load replaces the previewed model. The returned error is also kept for display.
func (p *Preview) Load(path string) error {
	if p.scene != nil {
		p.scene.Release()
	}

	cfg := config.Default()
	cfg.Scene.LightOrbit = false
	cfg.Scene.LightPosition = [3]float32{4, 8, 10}
	cfg.Textures.FlipVertical = p.opts.FlipTextures
	cfg.Textures.Strict = p.opts.Strict
	cfg.Import.GenerateNormals = p.opts.GenerateNormals
	entry := config.ModelEntry{
		Name:    filepath.Base(path),
		Path:    path,
		Program: config.ProgramLit,
		Scale:   1,
	}
	if p.opts.Spin {
		entry.Spin = 0.5
	}
	cfg.Scene.Models = []config.ModelEntry{entry}

	if path != p.path {
		p.watch(path)
	}
	p.path = path
	p.scene = viewer.NewScene(p.dev, cfg, map[string]viewer.Program{config.ProgramLit: p.program})
	p.loadErr = p.scene.Load()
	p.fit()
	return p.loadErr
}

// Reload reads the current file again with the current options.
func (p *Preview) Reload() error {
	if p.path == "" {
		return nil
	}
	return p.Load(p.path)
}

// watch follows edits to path and the files beside it. Failure only costs
// live reload.
func (p *Preview) watch(path string) {
	if p.watcher != nil {
		_ = p.watcher.Close()
		p.watcher = nil
	}
	w, err := viewer.NewWatcher([]string{path})
	if err != nil {
		logger.Warn("preview will not live reload", zap.String("path", path), zap.Error(err))
		return
	}
	p.watcher = w
}

// reloadChanged reloads in place when the watcher saw an edit. The camera
// is kept so the view does not jump while editing.
func (p *Preview) reloadChanged() {
	if p.watcher == nil || p.scene == nil {
		return
	}
	for _, path := range p.watcher.Drain() {
		if _, err := p.scene.Reload(path); err != nil {
			p.loadErr = err
			continue
		}
		p.loadErr = nil
	}
}

func (p *Preview) fit() {
	if b, ok := p.scene.Bounds(); ok {
		p.cam.FitToBounds(b.Min, b.Max)
	}
}

// Model returns the loaded model, or nil before the first Load.
func (p *Preview) Model() *model.Model {
	if p.scene == nil {
		return nil
	}
	return p.scene.Entries()[0].Model
}

// Err returns the last load error.
func (p *Preview) Err() error { return p.loadErr }

// Path returns the previewed file.
func (p *Preview) Path() string { return p.path }

// Framebuffer exposes the render target for captures.
func (p *Preview) Framebuffer() *framebuffer.Framebuffer { return p.fb }

// draw renders the scene into the framebuffer and returns its texture.
func (p *Preview) draw() uint32 {
	p.reloadChanged()
	p.fb.Begin()
	if p.scene != nil {
		t := float32(time.Since(p.start).Seconds())
		p.scene.Draw(p.cam.ViewMatrix(), p.cam.Projection(p.fb.Aspect()), p.cam.Position(), t)
	}
	p.fb.End()
	return p.fb.Texture()
}

// Render draws the preview image into the current window, sized to fit
// height and width, and applies mouse drag and wheel while hovered.
func (p *Preview) Render(maxHeight float32) {
	tex := p.draw()

	avail := imgui.ContentRegionAvail()
	size := min(avail.X, maxHeight)
	if size < 16 {
		return
	}
	if size < avail.X {
		imgui.SetCursorPosX(imgui.CursorPosX() + (avail.X-size)/2)
	}

	ref := imgui.NewTextureRefTextureID(imgui.TextureID(tex))
	imgui.ImageWithBgV(*ref,
		imgui.NewVec2(size, size),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.15, 0.15, 0.15, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	mouse := imgui.MousePos()
	if imgui.IsItemHovered() {
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			p.cam.HandleDrag(mouse.X-p.lastMouse.X, mouse.Y-p.lastMouse.Y)
		}
		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			p.cam.HandleZoom(wheel)
		}
	}
	p.lastMouse = mouse
}

// RenderControls draws load options and camera reset.
func (p *Preview) RenderControls() {
	changed := imgui.Checkbox("Flip textures", &p.opts.FlipTextures)
	imgui.SameLine()
	changed = imgui.Checkbox("Generate normals", &p.opts.GenerateNormals) || changed
	imgui.SameLine()
	changed = imgui.Checkbox("Strict textures", &p.opts.Strict) || changed
	imgui.SameLine()
	changed = imgui.Checkbox("Spin", &p.opts.Spin) || changed
	if changed {
		_ = p.Reload()
	}

	if imgui.Button("Reset camera") {
		p.cam = camera.NewOrbitCamera()
		if p.scene != nil {
			p.fit()
		}
	}
}

// RenderInfo draws statistics, the mesh table and the texture list.
func (p *Preview) RenderInfo() {
	m := p.Model()
	if m == nil {
		imgui.TextDisabled("Select a model")
		return
	}

	if p.loadErr != nil {
		imgui.TextColored(imgui.NewVec4(1, 0.3, 0.3, 1), "Load failed")
		imgui.TextWrapped(p.loadErr.Error())
		return
	}

	st := m.Stats()
	if imgui.BeginTable("modelinfo", 2) {
		imgui.TableSetupColumnV("Label", imgui.TableColumnFlagsWidthFixed, 110, 0)
		imgui.TableSetupColumnV("Value", imgui.TableColumnFlagsWidthStretch, 0, 0)
		ui.InfoRow("Meshes:", fmt.Sprint(st.Meshes))
		ui.InfoRow("Vertices:", fmt.Sprint(st.Vertices))
		ui.InfoRow("Triangles:", fmt.Sprint(st.Indices/3))
		ui.InfoRow("Textures:", fmt.Sprintf("%d (%d uploaded)", st.Textures, st.TextureAllocations))
		if b := m.Bounds(); b.Valid() {
			s := b.Size()
			ui.InfoRow("Size:", fmt.Sprintf("%.2f x %.2f x %.2f", s.X(), s.Y(), s.Z()))
			ui.InfoRow("Center:", formatVec(b.Center()))
		}
		imgui.EndTable()
	}

	if terr := m.TextureErrors(); terr != nil {
		imgui.Spacing()
		imgui.TextColored(imgui.NewVec4(1, 0.8, 0.2, 1), "Texture problems")
		imgui.TextWrapped(terr.Error())
	}

	imgui.Spacing()
	if imgui.CollapsingHeaderTreeNodeFlagsV("Meshes", imgui.TreeNodeFlagsDefaultOpen) {
		if imgui.BeginTable("meshes", 4) {
			imgui.TableSetupColumnV("#", imgui.TableColumnFlagsWidthFixed, 30, 0)
			imgui.TableSetupColumnV("Vertices", imgui.TableColumnFlagsWidthFixed, 70, 0)
			imgui.TableSetupColumnV("Indices", imgui.TableColumnFlagsWidthFixed, 70, 0)
			imgui.TableSetupColumnV("Samplers", imgui.TableColumnFlagsWidthStretch, 0, 0)
			imgui.TableHeadersRow()
			for i, ms := range m.Meshes() {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprint(i))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprint(ms.VertexCount()))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprint(ms.IndexCount()))
				imgui.TableNextColumn()
				imgui.Text(samplerSummary(ms.SamplerNames()))
			}
			imgui.EndTable()
		}
	}

	if imgui.CollapsingHeaderTreeNodeFlagsV("Textures", imgui.TreeNodeFlagsNone) {
		for _, t := range m.Textures() {
			imgui.Text(textureLine(t))
		}
	}
}

// Release frees the model, program and render target.
func (p *Preview) Release() {
	if p.watcher != nil {
		_ = p.watcher.Close()
		p.watcher = nil
	}
	if p.scene != nil {
		p.scene.Release()
		p.scene = nil
	}
	p.program.Delete()
	p.fb.Destroy()
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", v.X(), v.Y(), v.Z())
}

func samplerSummary(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func textureLine(t texture.Texture) string {
	if t.Handle == 0 {
		return fmt.Sprintf("[missing] %s (%s)", t.Path, t.Role)
	}
	return fmt.Sprintf("[%d] %s (%s)", t.Handle, t.Path, t.Role)
}
