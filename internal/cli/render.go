package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/stripscroll/internal/config"
	"github.com/ivlev/stripscroll/internal/engine"
	"github.com/ivlev/stripscroll/internal/source"
	"github.com/ivlev/stripscroll/internal/system"
	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/video"
)

const (
	defaultInputDir  = "input"  // searched for the newest strip when --input is empty
	defaultOutputDir = "output" // generated output names go here
)

// renderOpts holds the render flags. Each one overrides the project file
// only when it was set on the command line.
type renderOpts struct {
	input       string
	output      string
	preset      string
	width       int
	height      int
	fps         int
	workers     int
	duration    string
	durations   string
	loops       int
	interval    float64
	reverse     bool
	maxDuration float64
	quality     int
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [config.yaml]",
		Short: "Render the scroll video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			if cfg.Input == "" {
				exts := append([]string{".pdf"}, source.ImageExtensions...)
				latest, err := system.FindLatest(defaultInputDir, exts...)
				if err != nil {
					return fmt.Errorf("%w: put a strip in %s/ or pass --input", err, defaultInputDir)
				}
				cfg.Input = latest
				logger.Info("picked newest input", "path", latest)
			}
			if cfg.Output == "" {
				cfg.Output = outputName(cfg.Input, time.Now())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
				return err
			}

			prog := newProgress(logger)
			src, err := source.Open(cfg.Input)
			if err != nil {
				return err
			}
			defer src.Close()
			strip, err := source.Stitch(ctx, src, cfg.DPI, cfg.Height)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Stitched %d pages into a %dx%d strip", src.PageCount(), strip.Bounds().Dx(), strip.Bounds().Dy()))

			project := &engine.Project{
				Config:  cfg,
				Strip:   strip,
				Encoder: &video.FFmpegEncoder{},
				Logger:  logger,
			}
			if err := project.Run(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Rendered")
			printFile(out, cfg.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "strip image, image directory or PDF (default: newest file in input/)")
	f.StringVarP(&opts.output, "output", "o", "", "output video (default: output/<name>_<timestamp>.mp4)")
	f.StringVar(&opts.preset, "preset", "", "viewport preset: 16:9, 9:16, 4:5")
	f.IntVar(&opts.width, "width", 0, "viewport width")
	f.IntVar(&opts.height, "height", 0, "viewport height")
	f.IntVar(&opts.fps, "fps", 0, "frames per second")
	f.IntVar(&opts.workers, "workers", 0, "render workers (0: from CPU and memory)")
	f.StringVar(&opts.duration, "duration", "", "scroll duration in seconds")
	f.StringVar(&opts.durations, "durations", "", "per-loop scroll durations, e.g. 8,10,12")
	f.IntVar(&opts.loops, "loops", 0, "loop count (0: endless)")
	f.Float64Var(&opts.interval, "interval", 0, "pause between loops in ms")
	f.BoolVar(&opts.reverse, "reverse", false, "scroll right to left")
	f.Float64Var(&opts.maxDuration, "max-duration", 0, "cap the video length in seconds")
	f.IntVar(&opts.quality, "quality", 0, "encoder quality (x264: CRF, VideoToolbox: x100 kbit/s)")
	return cmd
}

func (o *renderOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = o.input
	}
	if changed("output") {
		cfg.Output = o.output
	}
	if changed("preset") {
		w, h, err := presetSize(o.preset)
		if err != nil {
			return err
		}
		cfg.Width, cfg.Height = w, h
	}
	if changed("width") {
		cfg.Width = o.width
	}
	if changed("height") {
		cfg.Height = o.height
	}
	if changed("fps") {
		cfg.FPS = o.fps
	}
	if changed("workers") {
		cfg.Workers = o.workers
	}
	if changed("duration") {
		d, err := timing.ParseDuration(o.duration, config.MinScrollDuration)
		if err != nil {
			return fmt.Errorf("--duration: %w", err)
		}
		cfg.Scroll.Duration = d
	}
	if changed("durations") {
		seq, err := config.ParseSequence(o.durations, config.MinScrollDuration)
		if err != nil {
			return fmt.Errorf("--durations: %w", err)
		}
		cfg.Scroll.Durations = seq
	}
	if changed("loops") {
		cfg.Loop.Count = o.loops
	}
	if changed("interval") {
		cfg.Loop.Interval = o.interval
	}
	if changed("reverse") {
		cfg.Scroll.Reverse = o.reverse
	}
	if changed("max-duration") {
		cfg.Video.MaxDuration = o.maxDuration
	}
	if changed("quality") {
		cfg.Video.Quality = o.quality
	}
	return nil
}

func presetSize(preset string) (int, int, error) {
	switch preset {
	case "16:9":
		return 1280, 720, nil
	case "9:16":
		return 720, 1280, nil
	case "4:5":
		return 1080, 1350, nil
	default:
		return 0, 0, fmt.Errorf("unknown preset %q, valid presets: 16:9, 9:16, 4:5", preset)
	}
}

// outputName derives output/<input name>_<timestamp>.mp4 with spaces
// replaced.
func outputName(input string, now time.Time) string {
	base := filepath.Base(strings.TrimSuffix(input, string(filepath.Separator)))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, " ", "_")
	return filepath.Join(defaultOutputDir, fmt.Sprintf("%s_%s.mp4", name, now.Format("2006-01-02_15-04-05")))
}

// loadConfig reads the optional project file argument.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.Default(), nil
	}
	return config.Load(args[0])
}
