package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/stripscroll/internal/config"
	"github.com/ivlev/stripscroll/internal/playback"
	"github.com/ivlev/stripscroll/internal/video"
)

type recordingEncoder struct {
	path   string
	params video.Params
	stream *recordingStream
}

func (e *recordingEncoder) Open(_ context.Context, path string, params video.Params) (video.FrameWriter, error) {
	e.path, e.params = path, params
	e.stream = &recordingStream{}
	return e.stream, nil
}

type recordingStream struct {
	leftRed []uint8
	closed  bool
	failAt  int
}

func (s *recordingStream) WriteFrame(img *image.RGBA) error {
	if s.failAt > 0 && len(s.leftRed) == s.failAt {
		return errors.New("disk full")
	}
	s.leftRed = append(s.leftRed, img.RGBAAt(0, 0).R)
	return nil
}

func (s *recordingStream) Close() error {
	s.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Output = "out.mp4"
	cfg.Width, cfg.Height = 40, 10
	cfg.FPS = 10
	cfg.Workers = 2
	cfg.Scroll.Duration = 1
	cfg.Video.Encoder = "libx264"
	return cfg
}

func testStrip() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(2 * x), A: 255})
		}
	}
	return img
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		total    float64
		fps      int
		expected int
	}{
		{2, 30, 60},
		{0.1 * 3, 10, 3},
		{1.01, 30, 31},
		{0.001, 30, 1},
	}
	for _, tt := range tests {
		got, err := FrameCount(tt.total, tt.fps)
		if err != nil || got != tt.expected {
			t.Errorf("FrameCount(%v, %d): expected %d, got %d (%v)", tt.total, tt.fps, tt.expected, got, err)
		}
	}

	if _, err := FrameCount(math.Inf(1), 30); !errors.Is(err, ErrUnbounded) {
		t.Errorf("Expected ErrUnbounded, got %v", err)
	}
	if _, err := FrameCount(0, 30); err == nil {
		t.Error("Expected error for zero duration")
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		loops    int
		max      float64
		expected float64
		err      error
	}{
		{"bounded", 2, 0, 3, nil},
		{"capped", 2, 2.5, 2.5, nil},
		{"unbounded capped", 0, 4, 4, nil},
		{"unbounded", 0, 0, 0, ErrUnbounded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Loop.Count = tt.loops
			cfg.Video.MaxDuration = tt.max
			plan, err := playback.NewPlan(cfg.Playback())
			if err != nil {
				t.Fatal(err)
			}
			got, err := Duration(cfg, plan)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRunWritesOrderedFrames(t *testing.T) {
	enc := &recordingEncoder{}
	p := &Project{Config: testConfig(), Strip: testStrip(), Encoder: enc}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s := enc.stream
	if !s.closed {
		t.Error("Stream should be closed")
	}
	if len(s.leftRed) != 10 {
		t.Fatalf("Expected 10 frames, got %d", len(s.leftRed))
	}
	if s.leftRed[0] != 0 {
		t.Errorf("First frame should show the strip start, got red %d", s.leftRed[0])
	}
	for i := 1; i < len(s.leftRed); i++ {
		if s.leftRed[i] <= s.leftRed[i-1] {
			t.Errorf("Frames out of order at %d: %v", i, s.leftRed)
			break
		}
	}
	if enc.params.Width != 40 || enc.params.FPS != 10 || enc.path != "out.mp4" {
		t.Errorf("Unexpected stream params %+v for %s", enc.params, enc.path)
	}
}

func TestRunUnbounded(t *testing.T) {
	cfg := testConfig()
	cfg.Loop.Count = 0
	p := &Project{Config: cfg, Strip: testStrip(), Encoder: &recordingEncoder{}}
	if err := p.Run(context.Background()); !errors.Is(err, ErrUnbounded) {
		t.Errorf("Expected ErrUnbounded, got %v", err)
	}

	cfg.Video.MaxDuration = 2.5
	enc := &recordingEncoder{}
	p = &Project{Config: cfg, Strip: testStrip(), Encoder: enc}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(enc.stream.leftRed) != 25 {
		t.Errorf("Expected 25 frames, got %d", len(enc.stream.leftRed))
	}
}

func TestRunWriteError(t *testing.T) {
	enc := &failingEncoder{}
	p := &Project{Config: testConfig(), Strip: testStrip(), Encoder: enc}
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("Expected write error")
	}
	if !enc.stream.closed {
		t.Error("Stream should be closed after a failed write")
	}
}

type failingEncoder struct {
	stream *recordingStream
}

func (e *failingEncoder) Open(context.Context, string, video.Params) (video.FrameWriter, error) {
	e.stream = &recordingStream{failAt: 3}
	return e.stream, nil
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Project{Config: testConfig(), Strip: testStrip(), Encoder: &recordingEncoder{}}
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
