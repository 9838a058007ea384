package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/engine/ui"
	"github.com/Faultbox/meshview/internal/logger"
)

// App is the model browser: a file tree on the left, the preview on the right.
type App struct {
	backend *ui.Backend
	preview *Preview
	stats   *ui.FrameStats
	shots   *debug.Screenshots
	log     *zap.Logger

	root      string
	tree      *fileNode
	fileCount int
	search    string
	selected  string

	notice   string
	noticeAt time.Time
	lastTick time.Time

	// Dialogs run off the main thread; their result is applied in render.
	mu          sync.Mutex
	pendingFile string
	pendingDir  string
}

// Options are the command-line settings.
type Options struct {
	Root          string
	Model         string
	Font          string
	ScreenshotDir string
	Width, Height int
}

// NewApp creates the window and the preview renderer.
func NewApp(opts Options) (*App, error) {
	backend, err := ui.NewBackend(ui.Config{
		Title:  "meshbrowser",
		Width:  opts.Width,
		Height: opts.Height,
		Font:   opts.Font,
	})
	if err != nil {
		return nil, err
	}

	preview, err := NewPreview()
	if err != nil {
		return nil, err
	}

	app := &App{
		backend:  backend,
		preview:  preview,
		stats:    ui.NewFrameStats(),
		shots:    debug.NewScreenshots(opts.ScreenshotDir, "meshbrowser"),
		log:      logger.Named("browser"),
		lastTick: time.Now(),
	}

	if opts.Root != "" {
		app.openDir(opts.Root)
	}
	if opts.Model != "" {
		app.openModel(opts.Model)
	}
	return app, nil
}

// Run runs the UI loop until the window closes.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// Close releases GPU resources.
func (app *App) Close() {
	if app.preview != nil {
		app.preview.Release()
	}
}

func (app *App) openDir(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		app.showNotification(fmt.Sprintf("Open folder failed: %v", err))
		return
	}
	app.root = abs
	app.search = ""
	app.rebuildTree()
	app.backend.SetWindowTitle("meshbrowser - " + abs)
}

func (app *App) rebuildTree() {
	if app.root == "" {
		return
	}
	tree, n, err := buildTree(app.root, app.search)
	if err != nil {
		app.log.Warn("listing folder failed", zap.String("root", app.root), zap.Error(err))
		app.showNotification(fmt.Sprintf("Listing failed: %v", err))
		return
	}
	app.tree = tree
	app.fileCount = n
}

func (app *App) openModel(path string) {
	app.selected = path
	start := time.Now()
	if err := app.preview.Load(path); err != nil {
		app.log.Warn("preview load failed", zap.String("path", path), zap.Error(err))
		app.showNotification("Load failed: " + filepath.Base(path))
		return
	}
	app.showNotification(fmt.Sprintf("Loaded %s in %s", filepath.Base(path), time.Since(start).Round(time.Millisecond)))
}

// openFileDialog asks for a model file.
func (app *App) openFileDialog() {
	exts := make([]string, 0, len(importer.Extensions()))
	for _, e := range importer.Extensions() {
		exts = append(exts, strings.TrimPrefix(e, "."))
	}
	go func() {
		path, err := dialog.File().
			Filter("Models", exts...).
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				app.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		app.mu.Lock()
		app.pendingFile = path
		app.mu.Unlock()
	}()
}

// openDirDialog asks for a folder to browse.
func (app *App) openDirDialog() {
	go func() {
		dir, err := dialog.Directory().Title("Open Folder").Browse()
		if err != nil {
			if err != dialog.ErrCancelled {
				app.log.Warn("folder dialog failed", zap.Error(err))
			}
			return
		}
		app.mu.Lock()
		app.pendingDir = dir
		app.mu.Unlock()
	}()
}

func (app *App) takePending() (file, dir string) {
	app.mu.Lock()
	defer app.mu.Unlock()
	file, dir = app.pendingFile, app.pendingDir
	app.pendingFile, app.pendingDir = "", ""
	return file, dir
}

func (app *App) captureScreenshot() {
	if app.preview.Model() == nil {
		app.showNotification("Nothing to capture")
		return
	}
	path, err := app.shots.Save(app.preview.Framebuffer().Image())
	if err != nil {
		app.showNotification(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	app.log.Info("screenshot saved", zap.String("path", path))
	app.showNotification("Saved: " + filepath.Base(path))
}

func (app *App) showNotification(msg string) {
	app.notice = msg
	app.noticeAt = time.Now()
}

func (app *App) handleShortcuts() {
	ctrl := imgui.KeyChord(imgui.ModCtrl)
	switch {
	case ui.KeyPressed(ctrl | imgui.KeyChord(imgui.KeyO)):
		app.openFileDialog()
	case ui.KeyPressed(imgui.KeyChord(imgui.KeyF12)):
		app.captureScreenshot()
	case ui.KeyPressed(imgui.KeyChord(imgui.KeyF5)):
		if err := app.preview.Reload(); err != nil {
			app.showNotification("Reload failed")
		}
		app.rebuildTree()
	}
}

func (app *App) render() {
	now := time.Now()
	app.stats.Update(float64(now.Sub(app.lastTick).Microseconds()) / 1000)
	app.lastTick = now

	if file, dir := app.takePending(); dir != "" || file != "" {
		if dir != "" {
			app.openDir(dir)
		}
		if file != "" {
			app.openModel(file)
		}
	}

	app.handleShortcuts()
	app.renderMenuBar()

	pos, size := ui.Viewport()
	leftWidth := float32(320)
	statusHeight := float32(30)
	contentHeight := size.Y - statusHeight
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(pos)
	imgui.SetNextWindowSize(imgui.NewVec2(leftWidth, contentHeight))
	if imgui.BeginV("Files", nil, flags) {
		app.renderSearch()
		imgui.Separator()
		app.renderFileTree()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(pos.X+leftWidth, pos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(size.X-leftWidth, contentHeight))
	if imgui.BeginV("Preview", nil, flags) {
		if app.preview.Model() != nil {
			app.preview.RenderControls()
			imgui.Separator()
			app.preview.Render(imgui.ContentRegionAvail().Y * 0.6)
			imgui.Separator()
		}
		app.preview.RenderInfo()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(pos.X, pos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(size.X, statusHeight))
	if imgui.BeginV("##Status", nil, flags|imgui.WindowFlagsNoTitleBar|imgui.WindowFlagsNoScrollbar) {
		app.renderStatusBar()
	}
	imgui.End()
}

func (app *App) renderMenuBar() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		if imgui.MenuItemBool("Open Model...") {
			app.openFileDialog()
		}
		if imgui.MenuItemBool("Open Folder...") {
			app.openDirDialog()
		}
		if imgui.MenuItemBool("Reload") {
			_ = app.preview.Reload()
			app.rebuildTree()
		}
		if imgui.MenuItemBool("Save Screenshot") {
			app.captureScreenshot()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Exit") {
			app.Close()
			os.Exit(0)
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

func (app *App) renderSearch() {
	imgui.SetNextItemWidth(-1)
	if imgui.InputTextWithHint("##search", "Filter by path", &app.search, 0, nil) {
		app.rebuildTree()
	}
	if app.root != "" {
		imgui.TextDisabled(fmt.Sprintf("%d models", app.fileCount))
	}
}

func (app *App) renderStatusBar() {
	app.stats.Render()
	imgui.SameLine()
	switch {
	case app.notice != "" && time.Since(app.noticeAt) < 4*time.Second:
		imgui.Text("  " + app.notice)
	case app.selected != "":
		imgui.TextDisabled("  " + app.selected)
	}
}
