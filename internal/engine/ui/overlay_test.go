package ui

import (
	"runtime"
	"testing"
)

func TestFrameStatsSamplesEveryHalfSecond(t *testing.T) {
	reads := 0
	f := NewFrameStats()
	f.readMem = func(m *runtime.MemStats) {
		reads++
		m.Alloc = 4096
	}

	for range 3 {
		f.Update(125)
	}
	if f.FPS() != 0 {
		t.Fatalf("FPS() = %v before the first sample, want 0", f.FPS())
	}
	f.Update(125)
	if got := f.FPS(); got != 8 {
		t.Errorf("FPS() = %v, want 8", got)
	}
	if f.FrameTime() != 125 {
		t.Errorf("FrameTime() = %v, want 125", f.FrameTime())
	}
	if reads != 0 {
		t.Errorf("memory read %d times before two seconds", reads)
	}

	for range 12 {
		f.Update(125)
	}
	if reads != 1 {
		t.Errorf("memory read %d times after two seconds, want 1", reads)
	}
	if f.HeapAlloc() != 4096 {
		t.Errorf("HeapAlloc() = %d, want 4096", f.HeapAlloc())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{3 * 1024 * 1024 / 2, "1.50 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
