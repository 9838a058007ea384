// Package app runs the interactive model viewer.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/engine/renderer"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/window"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/viewer"
	"github.com/Faultbox/meshview/internal/viewer/shaders"
)

// App is the viewer instance.
type App struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	dev      gpu.Device
	programs map[string]*shader.Program
	scene    *viewer.Scene
	watcher  *viewer.Watcher
	shots    *debug.Screenshots
	state    *State
	log      *zap.Logger
}

// New opens the window, compiles the programs and loads the scene. Models
// that fail to load are reported and left empty; only window, context and
// shader failures are fatal.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		shots: debug.NewScreenshots(cfg.Capture.Dir, "meshview"),
		log:   logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("models", len(cfg.Scene.Models)),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:        cfg.Window.Title,
		Width:        cfg.Window.Width,
		Height:       cfg.Window.Height,
		Fullscreen:   cfg.Window.Fullscreen,
		VSync:        cfg.Window.VSync,
		CaptureMouse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer initializes GL, so it must come after the context.
	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: cfg.Scene.ClearColor,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.dev = gpu.NewGL()
	if err := a.compilePrograms(); err != nil {
		a.Close()
		return nil, err
	}

	progs := make(map[string]viewer.Program, len(a.programs))
	for name, p := range a.programs {
		progs[name] = p
	}
	a.scene = viewer.NewScene(a.dev, cfg, progs)
	if err := a.scene.Load(); err != nil {
		a.log.Warn("some models failed to load", zap.Error(err))
	}

	a.state = newState(cfg)
	a.fitOrbit()

	if cfg.Watch.Enabled {
		a.watcher, err = viewer.NewWatcher(a.scene.Paths())
		if err != nil {
			a.log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	a.input = input.New()
	a.renderer.CheckError("init")
	a.log.Info("viewer initialized")
	return a, nil
}

func (a *App) compilePrograms() error {
	sources := map[string]string{
		config.ProgramLit:      shaders.LitFragment,
		config.ProgramEmissive: shaders.EmissiveFragment,
	}
	a.programs = make(map[string]*shader.Program, len(sources))
	for name, frag := range sources {
		p, err := shader.Compile(shaders.ModelVertex, frag)
		if err != nil {
			return fmt.Errorf("%s program: %w", name, err)
		}
		a.programs[name] = p
	}
	return nil
}

func (a *App) fitOrbit() {
	if b, ok := a.scene.Bounds(); ok {
		a.state.Orbit.FitToBounds(b.Min, b.Max)
	}
}

// Run runs the loop until the window closes or Escape is pressed.
func (a *App) Run() error {
	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop", zap.Duration("frame_period", a.state.Clock.Period()))

	for a.state.Running {
		a.state.DT = a.state.Clock.Tick()
		a.state.Time = a.state.Clock.Elapsed()

		if a.input.Update() {
			a.state.Running = false
			break
		}
		a.handleEvents()
		a.moveCamera()
		a.reloadChanged()

		a.render()
		if a.state.CaptureRequested {
			a.state.CaptureRequested = false
			a.capture()
		}
		a.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frames), zap.Float32("dt_ms", a.state.DT*1000))
			frames = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := a.window.DrawableSize()
			a.renderer.Resize(w, h)
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT && !a.state.MouseCaptured {
				a.pick(float32(event.MouseX), float32(event.MouseY))
			}
		case input.EventKeyDown:
			if event.Repeat {
				continue
			}
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				a.state.Running = false
			case sdl.SCANCODE_TAB:
				a.window.SetMouseCaptured(!a.window.MouseCaptured())
				a.state.MouseCaptured = a.window.MouseCaptured()
			case sdl.SCANCODE_C:
				a.state.toggleCamera()
			case sdl.SCANCODE_F:
				a.renderer.SetWireframe(!a.renderer.Wireframe())
			case sdl.SCANCODE_F12:
				a.state.CaptureRequested = true
			case sdl.SCANCODE_R:
				if err := a.scene.ReloadAll(); err != nil {
					a.log.Warn("reload failed", zap.Error(err))
				}
				a.fitOrbit()
			}
		}
	}
}

// pick selects the model under the cursor and shows it in the title bar.
func (a *App) pick(x, y float32) {
	w, h := a.window.GetSize()
	if w == 0 || h == 0 {
		return
	}
	cam := a.state.Active
	viewProj := cam.Projection(a.renderer.Aspect()).Mul4(cam.ViewMatrix())
	ray := picking.ScreenToRay(x, y, float32(w), float32(h), viewProj.Inv())

	title := a.cfg.Window.Title
	if e, ok := a.scene.Pick(ray, a.state.Time); ok {
		title += " - " + e.Config.DisplayName()
		a.log.Info("picked", zap.String("model", e.Config.DisplayName()), zap.Any("stats", e.Model.Stats()))
	}
	a.window.SetTitle(title)
}

var flyKeys = []struct {
	key sdl.Scancode
	dir camera.Movement
}{
	{sdl.SCANCODE_W, camera.Forward},
	{sdl.SCANCODE_S, camera.Backward},
	{sdl.SCANCODE_A, camera.Left},
	{sdl.SCANCODE_D, camera.Right},
	{sdl.SCANCODE_SPACE, camera.Up},
	{sdl.SCANCODE_LCTRL, camera.Down},
}

func (a *App) moveCamera() {
	dx, dy := a.input.MouseDelta()
	scroll := a.input.Scroll()

	switch cam := a.state.Active.(type) {
	case *camera.FlyCamera:
		for _, k := range flyKeys {
			if a.input.IsKeyHeld(k.key) {
				cam.ProcessKeyboard(k.dir, a.state.DT)
			}
		}
		if a.state.MouseCaptured && (dx != 0 || dy != 0) {
			// Screen y grows downward.
			cam.ProcessMouseMovement(dx, -dy, true)
		}
		if scroll != 0 {
			cam.ProcessMouseScroll(scroll)
		}

	case *camera.OrbitCamera:
		var forward, right, up float32
		for _, k := range flyKeys {
			if !a.input.IsKeyHeld(k.key) {
				continue
			}
			switch k.dir {
			case camera.Forward:
				forward++
			case camera.Backward:
				forward--
			case camera.Right:
				right++
			case camera.Left:
				right--
			case camera.Up:
				up++
			case camera.Down:
				up--
			}
		}
		if forward != 0 || right != 0 || up != 0 {
			cam.HandleMovement(forward, right, up)
		}
		if a.state.MouseCaptured && (dx != 0 || dy != 0) {
			cam.HandleDrag(dx, dy)
		}
		if scroll != 0 {
			cam.HandleZoom(scroll)
		}
	}
}

// reloadChanged drains the watcher on the context thread.
func (a *App) reloadChanged() {
	if a.watcher == nil {
		return
	}
	for _, path := range a.watcher.Drain() {
		n, err := a.scene.Reload(path)
		if err != nil {
			a.log.Warn("hot reload failed", zap.String("path", path), zap.Error(err))
			continue
		}
		a.log.Info("hot reloaded", zap.String("path", path), zap.Int("entries", n))
	}
}

func (a *App) capture() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.SavePixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) render() {
	a.renderer.Begin()

	cam := a.state.Active
	view := cam.ViewMatrix()
	proj := cam.Projection(a.renderer.Aspect())
	a.scene.Draw(view, proj, cam.Position(), a.state.Time)
}

// Close releases everything New created, in reverse order.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if a.scene != nil {
		a.scene.Release()
	}
	for _, p := range a.programs {
		p.Delete()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
