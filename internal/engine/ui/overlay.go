package ui

import (
	"fmt"
	"runtime"

	"github.com/AllenDang/cimgui-go/imgui"
)

// FrameStats smooths frame timing for display.
type FrameStats struct {
	fps       float64
	frameTime float64 // ms
	window    float64 // seconds accumulated toward the next FPS sample
	frames    int

	mem        runtime.MemStats
	memElapsed float64
	readMem    func(*runtime.MemStats)
}

// NewFrameStats creates an empty sampler.
func NewFrameStats() *FrameStats {
	return &FrameStats{readMem: runtime.ReadMemStats}
}

// Update records one frame of deltaMs milliseconds.
func (f *FrameStats) Update(deltaMs float64) {
	f.frameTime = deltaMs
	f.frames++
	f.window += deltaMs / 1000

	if f.window >= 0.5 {
		f.fps = float64(f.frames) / f.window
		f.frames = 0
		f.window = 0
	}

	f.memElapsed += deltaMs / 1000
	if f.memElapsed >= 2 {
		f.readMem(&f.mem)
		f.memElapsed = 0
	}
}

// FPS returns the last sampled frame rate.
func (f *FrameStats) FPS() float64 { return f.fps }

// FrameTime returns the last frame's duration in milliseconds.
func (f *FrameStats) FrameTime() float64 { return f.frameTime }

// HeapAlloc returns the last sampled live heap size.
func (f *FrameStats) HeapAlloc() uint64 { return f.mem.Alloc }

// fpsColor is green at 60 and above, yellow from 30, red below.
func fpsColor(fps float64) imgui.Vec4 {
	switch {
	case fps < 30:
		return imgui.NewVec4(1.0, 0.2, 0.2, 1.0)
	case fps < 60:
		return imgui.NewVec4(1.0, 1.0, 0.2, 1.0)
	default:
		return imgui.NewVec4(0.2, 1.0, 0.2, 1.0)
	}
}

// Render draws FPS, frame time and heap size on one line.
func (f *FrameStats) Render() {
	imgui.TextColored(fpsColor(f.fps), fmt.Sprintf("FPS: %.1f", f.fps))
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("(%.2f ms)  heap %s", f.frameTime, FormatBytes(int64(f.mem.Alloc))))
}

// InfoRow adds a label/value row to a two-column table.
func InfoRow(label, value string) {
	imgui.TableNextRow()
	imgui.TableNextColumn()
	imgui.Text(label)
	imgui.TableNextColumn()
	imgui.Text(value)
}

// FormatBytes formats a byte count for display.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
