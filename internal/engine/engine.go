package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/stripscroll/internal/config"
	"github.com/ivlev/stripscroll/internal/playback"
	"github.com/ivlev/stripscroll/internal/renderer"
	"github.com/ivlev/stripscroll/internal/system"
	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/transform"
	"github.com/ivlev/stripscroll/internal/video"
)

// ErrUnbounded is returned for an endless loop setting without a max_duration.
var ErrUnbounded = errors.New("unbounded playback")

// Project renders one strip to a video file.
type Project struct {
	Config  *config.Config
	Strip   image.Image
	Encoder video.Encoder
	Logger  *log.Logger
	Pool    *system.FramePool
}

// FrameCount is the number of frames sampled at i/fps over total seconds.
func FrameCount(total float64, fps int) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("fps must be positive, got %d", fps)
	}
	if math.IsInf(total, 1) {
		return 0, ErrUnbounded
	}
	if math.IsNaN(total) || total <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %v", total)
	}
	// Tolerate float noise so 2s at 30fps is 60 frames, not 61.
	return max(1, int(math.Ceil(total*float64(fps)-1e-6))), nil
}

// Duration is the length of the rendered video: the playback total, capped
// by max_duration.
func Duration(cfg *config.Config, plan *playback.Plan) (float64, error) {
	total, err := plan.TotalDuration()
	if err != nil {
		return 0, err
	}
	limit := cfg.Video.MaxDuration
	if math.IsInf(total, 1) {
		if limit <= 0 {
			return 0, fmt.Errorf("%w: loop count 0 needs video.max_duration", ErrUnbounded)
		}
		return limit, nil
	}
	if limit > 0 {
		return math.Min(total, limit), nil
	}
	return total, nil
}

func (p *Project) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

// Run renders the whole video and closes the encoder stream.
func (p *Project) Run(ctx context.Context) error {
	cfg := p.Config
	logger := p.logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if p.Strip == nil {
		return errors.New("no strip to render")
	}
	plan, err := playback.NewPlan(cfg.Playback())
	if err != nil {
		return err
	}
	total, err := Duration(cfg, plan)
	if err != nil {
		return err
	}
	frames, err := FrameCount(total, cfg.FPS)
	if err != nil {
		return err
	}

	comp, err := renderer.NewCompositor(p.Strip, cfg.Width, cfg.Height, transform.DirectionOf(cfg.Scroll.Reverse))
	if err != nil {
		return err
	}

	encoder := cfg.Video.Encoder
	if encoder == "" {
		encoder = system.GetBestH264Encoder()
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = system.RecommendedWorkers(uint64(cfg.Width * cfg.Height * 4))
	}
	pool := p.Pool
	if pool == nil {
		pool = system.NewFramePool()
	}

	logger.Info("rendering",
		"output", cfg.Output,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"fps", cfg.FPS,
		"frames", frames,
		"duration", timing.FormatSeconds(total),
		"encoder", encoder,
		"workers", workers,
	)
	if plan.Variable() {
		logger.Debug("variable scroll durations", "durations", cfg.Scroll.Durations)
	}

	stream, err := p.Encoder.Open(ctx, cfg.Output, video.Params{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: encoder,
		Quality: cfg.Video.Quality,
	})
	if err != nil {
		return err
	}

	if err := p.renderFrames(ctx, plan, comp, stream, pool, frames, workers); err != nil {
		stream.Close()
		return err
	}
	if err := stream.Close(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("done",
		"output", cfg.Output,
		"frames", frames,
		"elapsed", elapsed.Round(time.Millisecond),
		"fps", fmt.Sprintf("%.1f", float64(frames)/elapsed.Seconds()),
	)
	return nil
}

// renderFrames samples the player in order, rasterizes each batch in
// parallel and writes the batch in order.
func (p *Project) renderFrames(
	ctx context.Context,
	plan *playback.Plan,
	comp *renderer.Compositor,
	out video.FrameWriter,
	pool *system.FramePool,
	frames, workers int,
) error {
	cfg := p.Config
	logger := p.logger()
	rect := image.Rect(0, 0, cfg.Width, cfg.Height)
	fps := float64(cfg.FPS)

	player := playback.NewPlayer(plan)
	player.Start(0)

	batch := workers * 2
	nextReport := 0.1
	for first := 0; first < frames; first += batch {
		n := min(batch, frames-first)
		states := make([]playback.Frame, n)
		for j := range states {
			f, err := player.Tick(float64(first+j) / fps)
			if err != nil {
				return fmt.Errorf("frame %d: %w", first+j, err)
			}
			states[j] = f
		}

		bufs := make([]*image.RGBA, n)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for j := range states {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				buf := pool.Get(rect)
				if err := comp.Render(states[j], buf); err != nil {
					pool.Put(buf)
					return fmt.Errorf("frame %d: %w", first+j, err)
				}
				bufs[j] = buf
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			for _, b := range bufs {
				pool.Put(b)
			}
			return err
		}

		for j, buf := range bufs {
			err := out.WriteFrame(buf)
			pool.Put(buf)
			if err != nil {
				for _, rest := range bufs[j+1:] {
					pool.Put(rest)
				}
				return err
			}
		}

		done := first + n
		if float64(done)/float64(frames) >= nextReport {
			logger.Info("progress", "frames", done, "of", frames, "at", states[n-1].Accounting.String())
			for float64(done)/float64(frames) >= nextReport {
				nextReport += 0.1
			}
		}
	}
	return nil
}
