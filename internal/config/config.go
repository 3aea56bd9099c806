package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/stripscroll/internal/playback"
	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/transform"
)

// MinScrollDuration is the shortest scroll, in seconds, accepted from user input.
const MinScrollDuration = 0.1

// Config is a stripscroll project file.
type Config struct {
	Input   string                `yaml:"input"`
	Output  string                `yaml:"output"`
	Width   int                   `yaml:"width"`
	Height  int                   `yaml:"height"`
	FPS     int                   `yaml:"fps"`
	DPI     int                   `yaml:"dpi"`
	Workers int                   `yaml:"workers"` // 0 picks from CPU and memory
	Scroll  Scroll                `yaml:"scroll"`
	Loop    Loop                  `yaml:"loop"`
	Entry   timing.EntryAnimation `yaml:"entry"`
	Video   Video                 `yaml:"video"`
}

// Scroll configures the strip movement.
type Scroll struct {
	Duration  float64   `yaml:"duration"`  // seconds
	Durations []float64 `yaml:"durations"` // per-loop seconds, enables variable mode
	Reverse   bool      `yaml:"reverse"`
}

// Loop configures repetition.
type Loop struct {
	Count    int     `yaml:"count"`    // 0 loops forever
	Interval float64 `yaml:"interval"` // ms between loops
}

// Video configures the encoder and output length.
type Video struct {
	Encoder     string  `yaml:"encoder"`      // empty probes ffmpeg
	Quality     int     `yaml:"quality"`      // 0 picks per encoder
	MaxDuration float64 `yaml:"max_duration"` // seconds, caps unbounded runs
}

// Default returns a 720p, single loop, 10 second scroll config.
func Default() *Config {
	return &Config{
		Width:  1280,
		Height: 720,
		FPS:    30,
		DPI:    150,
		Scroll: Scroll{Duration: 10},
		Loop:   Loop{Count: 1, Interval: 1000},
		Entry: timing.EntryAnimation{
			Duration:             600,
			StaggerDelay:         150,
			IntervalBeforeScroll: 500,
		},
	}
}

// Load reads a YAML config on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the config before any rendering starts.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("size must be even for yuv420p, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be within 1..240, got %d", c.FPS))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %d", c.DPI))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Video.Quality < 0 {
		errs = append(errs, fmt.Errorf("quality must be >= 0, got %d", c.Video.Quality))
	}
	if c.Video.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max_duration must be >= 0, got %v", c.Video.MaxDuration))
	}
	errs = append(errs, c.validateScroll()...)
	if c.Entry.Enabled {
		errs = append(errs, c.validateEntry()...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// Remaining duration and loop checks are the ones playback applies.
	_, err := playback.NewPlan(c.Playback())
	return err
}

// validateScroll applies MinScrollDuration to durations read from the file.
// A zero duration is allowed when a sequence supplies the loops.
func (c *Config) validateScroll() []error {
	var errs []error
	if d := c.Scroll.Duration; d != 0 || len(c.Scroll.Durations) == 0 {
		if !(d >= MinScrollDuration) || math.IsInf(d, 0) {
			errs = append(errs, fmt.Errorf("scroll duration must be a finite number >= %v, got %v", MinScrollDuration, d))
		}
	}
	for i, d := range c.Scroll.Durations {
		if !(d >= MinScrollDuration) || math.IsInf(d, 0) {
			errs = append(errs, fmt.Errorf("scroll durations[%d] must be a finite number >= %v, got %v", i, MinScrollDuration, d))
		}
	}
	return errs
}

func (c *Config) validateEntry() []error {
	var errs []error
	cards, err := c.Entry.CardCount()
	if err != nil {
		return []error{err}
	}
	if len(c.Entry.CardAnimations) != cards {
		errs = append(errs, fmt.Errorf("entry: %d cards need %d card_animations, got %d", cards, cards, len(c.Entry.CardAnimations)))
	}
	for i, name := range c.Entry.CardAnimations {
		if !transform.IsValid(name) {
			errs = append(errs, fmt.Errorf("entry: card %d animation %q is not one of: %s", i, name, strings.Join(transform.Names(), ", ")))
		}
	}
	prev := 0.0
	for i := 0; i < cards; i++ {
		left, right := c.Entry.CardSpan(i)
		if left < prev || right <= left || right > float64(c.Width) {
			errs = append(errs, fmt.Errorf("entry: card %d span [%v, %v] must be ascending within 0..%d", i, left, right, c.Width))
		}
		prev = right
	}
	return errs
}

// Playback converts the config into playback settings.
func (c *Config) Playback() playback.Settings {
	return playback.Settings{
		ScrollDuration: c.Scroll.Duration,
		Durations:      c.Scroll.Durations,
		LoopCount:      c.Loop.Count,
		LoopIntervalMs: c.Loop.Interval,
		Entry:          c.Entry,
		Canvas: transform.CanvasGeometry{
			Width:     float64(c.Width),
			Height:    float64(c.Height),
			Direction: transform.DirectionOf(c.Scroll.Reverse),
		},
	}
}

// ParseSequence parses a comma-separated list of per-loop durations such as
// "8, 10,12". Every item must be at least min seconds.
func ParseSequence(raw string, min float64) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	seq := make([]float64, 0, len(parts))
	for i, part := range parts {
		d, err := timing.ParseDuration(part, min)
		if err != nil {
			return nil, fmt.Errorf("duration %d: %w", i+1, err)
		}
		seq = append(seq, d)
	}
	return seq, nil
}
