package cli

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/stripscroll/internal/config"
	"github.com/ivlev/stripscroll/internal/playback"
	"github.com/ivlev/stripscroll/internal/timing"
)

func newTimelineCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "timeline [config.yaml]",
		Short: "Print phase, loop and time accounting at sample times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			times, err := parseTimes(at)
			if err != nil {
				return err
			}
			frames, err := sampleTimeline(cfg, times)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render("Timeline"))
			for i, f := range frames {
				fmt.Fprintf(out, "%s %s %s %s\n",
					StyleNumber.Render(fmt.Sprintf("%8s", timing.FormatSeconds(times[i]))),
					stylePhase.Render(string(f.Phase)),
					StyleDim.Render(fmt.Sprintf("loop %d", f.Loop+1)),
					StyleValue.Render(f.Accounting.String()),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "0,1,2,5,10", "comma-separated sample times in seconds")
	return cmd
}

// parseTimes parses finite, non-negative sample times and sorts them, since the
// player only moves forward.
func parseTimes(raw string) ([]float64, error) {
	var times []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid sample time %q", part)
		}
		times = append(times, v)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no sample times in %q", raw)
	}
	slices.Sort(times)
	return times, nil
}

// sampleTimeline plays cfg from 0 and returns the frame at each time.
func sampleTimeline(cfg *config.Config, times []float64) ([]playback.Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan, err := playback.NewPlan(cfg.Playback())
	if err != nil {
		return nil, err
	}
	player := playback.NewPlayer(plan)
	player.Start(0)

	frames := make([]playback.Frame, 0, len(times))
	for _, t := range times {
		f, err := player.Tick(t)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
