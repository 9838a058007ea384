// meshbrowser is a desktop tool for browsing folders of model files and
// inspecting how each one loads.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
)

func main() {
	runtime.LockOSThread()

	dir := flag.String("dir", ".", "Folder to browse")
	modelPath := flag.String("model", "", "Model file to open on start")
	font := flag.String("font", "", "TTF font for the UI")
	shots := flag.String("screenshots", filepath.Join(os.TempDir(), "meshbrowser"), "Screenshot directory")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 800, "Window height")
	level := flag.String("log", "info", "Log level")
	flag.Parse()

	if err := logger.Init(*level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(Options{
		Root:          *dir,
		Model:         *modelPath,
		Font:          *font,
		ScreenshotDir: *shots,
		Width:         *width,
		Height:        *height,
	})
	if err != nil {
		logger.Error("failed to start browser", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	app.Run()
}
