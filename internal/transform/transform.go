// Package transform turns an animation progress fraction plus card and canvas
// geometry into a Descriptor for the renderer. Each visual effect is a
// Strategy; Registry maps the canonical effect names to strategies.
package transform

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument is wrapped by every input validation failure.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownStrategy is returned for names missing from a Registry.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// CardGeometry is a card's final resting rectangle on the canvas, in pixels.
type CardGeometry struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the rectangle's center point.
func (c CardGeometry) Center() (x, y float64) {
	return c.X + c.Width/2, c.Y + c.Height/2
}

// Direction is the scroll direction. DirectionUnset is rejected by
// direction-aware strategies.
type Direction int

const (
	DirectionUnset Direction = iota
	Forward
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unset"
	}
}

// DirectionOf maps a reverse-scroll flag to a Direction.
func DirectionOf(reverse bool) Direction {
	if reverse {
		return Reverse
	}
	return Forward
}

// CanvasGeometry describes the drawing surface and current scroll direction.
type CanvasGeometry struct {
	Width, Height float64
	Direction     Direction
}

// RenderMode selects the renderer's drawing routine for a Descriptor.
type RenderMode string

const (
	ModeStandard  RenderMode = "standard"
	ModeGlitch    RenderMode = "glitch"
	ModeWaveClip  RenderMode = "wave-clip"
	ModeFragments RenderMode = "fragments"
)

// RenderParams is the mode-specific payload of a Descriptor.
type RenderParams interface {
	renderParams()
}

// GlitchParams accompanies ModeGlitch.
type GlitchParams struct {
	Intensity float64
}

// WaveParams accompanies ModeWaveClip.
type WaveParams struct {
	Progress  float64
	Amplitude float64
	Frequency float64
	Reverse   bool
}

// FragmentParams accompanies ModeFragments. The renderer derives each
// fragment's fly-in origin from Reverse and CanvasWidth.
type FragmentParams struct {
	Progress    float64
	Rows, Cols  int
	Reverse     bool
	CanvasWidth float64
}

func (GlitchParams) renderParams()   {}
func (WaveParams) renderParams()     {}
func (FragmentParams) renderParams() {}

// Descriptor is one card's drawable state for one frame. Rotation is in
// degrees, Blur in pixels; zero means none.
type Descriptor struct {
	X, Y          float64
	Width, Height float64
	Alpha         float64
	Mode          RenderMode
	Rotation      float64
	Blur          float64
	Params        RenderParams
}

// Strategy computes a Descriptor for progress in [0,1].
type Strategy interface {
	Calculate(progress float64, card CardGeometry, canvas CanvasGeometry) (Descriptor, error)
}

// StrategyFunc is a Strategy whose inputs are validated before the function
// runs, so implementations can assume well-formed arguments.
type StrategyFunc func(progress float64, card CardGeometry, canvas CanvasGeometry) Descriptor

// Calculate validates the inputs and applies f.
func (f StrategyFunc) Calculate(progress float64, card CardGeometry, canvas CanvasGeometry) (Descriptor, error) {
	if err := Validate(progress, card, canvas); err != nil {
		return Descriptor{}, err
	}
	return f(progress, card, canvas), nil
}

// DirectionalFunc is a StrategyFunc that also requires an explicit scroll
// direction.
type DirectionalFunc func(progress float64, card CardGeometry, canvas CanvasGeometry) Descriptor

// Calculate validates the inputs and the direction, then applies f.
func (f DirectionalFunc) Calculate(progress float64, card CardGeometry, canvas CanvasGeometry) (Descriptor, error) {
	if err := Validate(progress, card, canvas); err != nil {
		return Descriptor{}, err
	}
	if canvas.Direction != Forward && canvas.Direction != Reverse {
		return Descriptor{}, fmt.Errorf("%w: scroll direction must be forward or reverse, got %s", ErrInvalidArgument, canvas.Direction)
	}
	return f(progress, card, canvas), nil
}

// Validate checks the inputs shared by every strategy.
func Validate(progress float64, card CardGeometry, canvas CanvasGeometry) error {
	if !finite(progress) || progress < 0 || progress > 1 {
		return fmt.Errorf("%w: progress must be within [0,1], got %v", ErrInvalidArgument, progress)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"card x", card.X}, {"card y", card.Y}} {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidArgument, f.name, f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"card width", card.Width},
		{"card height", card.Height},
		{"canvas width", canvas.Width},
		{"canvas height", canvas.Height},
	} {
		if !finite(f.v) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be a finite number > 0, got %v", ErrInvalidArgument, f.name, f.v)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
