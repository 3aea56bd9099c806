package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
)

// Params describes the output stream.
type Params struct {
	Width   int
	Height  int
	FPS     int
	Encoder string // ffmpeg encoder name, libx264 if empty
	Quality int    // 0 picks DefaultQuality
}

// FrameWriter receives frames in presentation order.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Encoder opens a stream for one output file.
type Encoder interface {
	Open(ctx context.Context, path string, params Params) (FrameWriter, error)
}

// DefaultQuality is the quality used when none is configured. Its unit
// differs per encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // x100 kbit/s
	case "h264_nvenc":
		return 28 // cq
	default:
		return 23 // crf
	}
}

type FFmpegEncoder struct {
	Binary string // defaults to ffmpeg on PATH
}

// Stream is a running ffmpeg process reading raw RGBA frames from stdin.
type Stream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	width  int
	height int
	frames int
	closed bool
}

func (e *FFmpegEncoder) Open(ctx context.Context, path string, params Params) (FrameWriter, error) {
	if params.Width <= 0 || params.Height <= 0 || params.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream params %dx%d@%d", params.Width, params.Height, params.FPS)
	}
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, buildArgs(path, params)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &Stream{cmd: cmd, stdin: stdin, width: params.Width, height: params.Height}, nil
}

func buildArgs(path string, params Params) []string {
	encoder := params.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	quality := params.Quality
	if quality == 0 {
		quality = DefaultQuality(encoder)
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", strconv.Itoa(params.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	switch encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(quality))
	default: // libx264
		args = append(args, "-crf", strconv.Itoa(quality), "-preset", "medium")
	}

	return append(args, path)
}

// WriteFrame writes one frame. Frames that are not tightly packed at the
// origin are copied first.
func (s *Stream) WriteFrame(img *image.RGBA) error {
	if s.closed {
		return errors.New("write to closed stream")
	}
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %d is %v, stream is %dx%d", s.frames, b.Size(), s.width, s.height)
	}
	if img.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		img = packed
	}
	if _, err := s.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}

// Frames is the number of frames written so far.
func (s *Stream) Frames() int {
	return s.frames
}

// Close ends the input and waits for ffmpeg to finish the file.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", err)
	}
	return nil
}
