package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	fresh := filepath.Join(dir, "fresh.PNG")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(other, now.Add(time.Hour), now.Add(time.Hour))

	got, err := FindLatest(dir, ".png", ".jpg")
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if got != fresh {
		t.Errorf("Expected %s, got %s", fresh, got)
	}

	if _, err := FindLatest(dir, ".pdf"); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing  string
		expected string
	}{
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264 libx264 H.264", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestWorkersFor(t *testing.T) {
	const frame = 1280 * 720 * 4
	tests := []struct {
		name      string
		cpus      int
		available uint64
		expected  int
	}{
		{"cpu bound", 8, 16 << 30, 8},
		{"memory bound", 8, 4 * 2 * frame * 3, 3},
		{"at least one", 8, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workersFor(tt.cpus, tt.available, frame); got != tt.expected {
				t.Errorf("Expected %d workers, got %d", tt.expected, got)
			}
		})
	}
	if got := RecommendedWorkers(frame); got < 1 {
		t.Errorf("RecommendedWorkers should be at least 1, got %d", got)
	}
}

func TestFramePool(t *testing.T) {
	pool := NewFramePool()
	rect := image.Rect(0, 0, 16, 8)

	img := pool.Get(rect)
	if img.Rect != rect {
		t.Fatalf("Expected %v, got %v", rect, img.Rect)
	}
	img.Pix[0] = 7
	pool.Put(img)
	pool.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	pool.Put(nil)

	if got := pool.Get(rect); got.Rect != rect {
		t.Errorf("Expected %v from pool, got %v", rect, got.Rect)
	}
}
