// Package playback drives the entry animation and the scroll loops from a
// caller-supplied clock. It holds the only mutable playback state (loop index,
// completed intervals, pause offset); the timing and transform packages it
// calls stay pure.
package playback

import (
	"fmt"

	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/transform"
)

// Settings describes one playback run. Times follow the timing package:
// scroll durations in seconds, entry and interval times in milliseconds.
type Settings struct {
	ScrollDuration float64
	Durations      []float64 // per-loop scroll durations; non-empty selects variable mode
	LoopCount      int       // 0 loops forever
	LoopIntervalMs float64
	Entry          timing.EntryAnimation
	Canvas         transform.CanvasGeometry
	Registry       *transform.Registry // nil uses transform.Default()
}

// Card is one entry-animation card and the strategy that animates it.
type Card struct {
	Index     int
	Rest      transform.CardGeometry
	Animation string
	strategy  transform.Strategy
}

// Plan is the validated, derived form of Settings.
type Plan struct {
	settings Settings
	base     float64 // scroll seconds used for the fixed-mode loop length
	single   float64 // seconds, fixed-mode loop length
	overhead float64 // seconds spent on entry + pre-scroll interval
	entryMs  float64
	cards    []Card
}

// NewPlan validates s and derives loop lengths and card strategies.
func NewPlan(s Settings) (*Plan, error) {
	if s.Registry == nil {
		s.Registry = transform.Default()
	}
	if s.LoopCount < 0 {
		return nil, fmt.Errorf("%w: loop count must be >= 0, got %d", timing.ErrInvalidArgument, s.LoopCount)
	}
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas must have a positive size, got %vx%v", timing.ErrInvalidArgument, s.Canvas.Width, s.Canvas.Height)
	}
	if s.Canvas.Direction == transform.DirectionUnset {
		s.Canvas.Direction = transform.Forward
	}

	base := s.ScrollDuration
	if base <= 0 && len(s.Durations) > 0 {
		base = s.Durations[0]
	}
	// Validates base and every sequence entry.
	for i := 1; i <= max(1, len(s.Durations)); i++ {
		if _, err := timing.LoopDuration(i, base, s.Durations); err != nil {
			return nil, fmt.Errorf("scroll duration: %w", err)
		}
	}

	single, err := timing.SingleLoopDuration(base, s.Entry)
	if err != nil {
		return nil, err
	}
	overhead, err := timing.FixedOverhead(single, base)
	if err != nil {
		return nil, err
	}

	p := &Plan{settings: s, base: base, single: single, overhead: overhead}
	if s.Entry.Enabled {
		if err := p.buildCards(); err != nil {
			return nil, err
		}
	}
	if _, err := p.TotalDuration(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) buildCards() error {
	s := p.settings
	count, err := s.Entry.CardCount()
	if err != nil {
		return err
	}
	if len(s.Entry.CardAnimations) != count {
		return fmt.Errorf("%w: %d cards but %d card animations", timing.ErrInvalidArgument, count, len(s.Entry.CardAnimations))
	}
	if p.entryMs, err = timing.EntryTotalDuration(count, s.Entry.Duration, s.Entry.StaggerDelay); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		left, right := s.Entry.CardSpan(i)
		if right <= left {
			return fmt.Errorf("%w: card %d has right edge %v <= left edge %v", timing.ErrInvalidArgument, i, right, left)
		}
		name := s.Entry.CardAnimations[i]
		strategy, err := s.Registry.Strategy(name)
		if err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}
		p.cards = append(p.cards, Card{
			Index:     i,
			Rest:      transform.CardGeometry{X: left, Y: 0, Width: right - left, Height: s.Canvas.Height},
			Animation: name,
			strategy:  strategy,
		})
	}
	return nil
}

// Canvas returns the drawing surface geometry.
func (p *Plan) Canvas() transform.CanvasGeometry {
	return p.settings.Canvas
}

// Cards returns the entry-animation cards, empty when entry is disabled.
func (p *Plan) Cards() []Card {
	return append([]Card(nil), p.cards...)
}

// Variable reports whether loops take their scroll duration from a sequence.
func (p *Plan) Variable() bool {
	return len(p.settings.Durations) > 0
}

// ScrollDuration returns loop k's (0-based) scroll seconds. Loops past the
// end of the sequence reuse its last entry.
func (p *Plan) ScrollDuration(k int) float64 {
	d, err := timing.LoopDuration(min(k+1, max(1, len(p.settings.Durations))), p.base, p.settings.Durations)
	if err != nil {
		// Sequence entries were validated by NewPlan.
		return p.base
	}
	return d
}

// LoopLength returns loop k's total seconds, entry and hold included.
func (p *Plan) LoopLength(k int) float64 {
	return p.overhead + p.ScrollDuration(k)
}

// Overhead returns the seconds before the scroll starts in each loop.
func (p *Plan) Overhead() float64 {
	return p.overhead
}

func (p *Plan) interval() float64 {
	return p.settings.LoopIntervalMs / 1000
}

// Accounting returns loop accounting for the given playback position.
func (p *Plan) Accounting(loop, completedIntervals int, elapsed float64) (timing.Accounting, error) {
	return timing.TotalTime(timing.TotalTimeInput{
		Elapsed:            elapsed,
		LoopCount:          p.settings.LoopCount,
		CurrentLoopIndex:   loop,
		Variable:           p.Variable(),
		Sequence:           p.settings.Durations,
		SingleDuration:     p.single,
		IntervalMs:         p.settings.LoopIntervalMs,
		FixedOverhead:      p.overhead,
		CompletedIntervals: completedIntervals,
	})
}

// TotalDuration returns the whole run's length in seconds, +Inf when the run
// loops forever.
func (p *Plan) TotalDuration() (float64, error) {
	acc, err := p.Accounting(0, 0, 0)
	if err != nil {
		return 0, err
	}
	return acc.TotalDuration, nil
}
