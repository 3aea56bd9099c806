package playback

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/transform"
)

var canvas = transform.CanvasGeometry{Width: 400, Height: 200, Direction: transform.Forward}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustPlayer(t *testing.T, s Settings) *Player {
	t.Helper()
	plan, err := NewPlan(s)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	return NewPlayer(plan)
}

func mustTick(t *testing.T, p *Player, now float64) Frame {
	t.Helper()
	f, err := p.Tick(now)
	if err != nil {
		t.Fatalf("Tick(%v) failed: %v", now, err)
	}
	return f
}

func TestFixedLoopsWithPause(t *testing.T) {
	p := mustPlayer(t, Settings{
		ScrollDuration: 2,
		LoopCount:      3,
		LoopIntervalMs: 1000,
		Canvas:         canvas,
	})

	f := mustTick(t, p, 0)
	if f.Phase != PhaseIdle || f.Accounting.TotalElapsed != 0 || f.Accounting.TotalDuration != 8 {
		t.Errorf("Idle frame: got %s %+v", f.Phase, f.Accounting)
	}

	p.Start(10)
	steps := []struct {
		now      float64
		phase    Phase
		loop     int
		elapsed  float64
		progress float64
	}{
		{10.5, PhaseScroll, 0, 0.5, 0.25},
		{12.5, PhaseInterval, 0, 2.5, 1},
		{13.5, PhaseScroll, 1, 3.5, 0.25},
	}
	for _, s := range steps {
		f := mustTick(t, p, s.now)
		if f.Phase != s.phase || f.Loop != s.loop {
			t.Errorf("t=%v: expected %s loop %d, got %s loop %d", s.now, s.phase, s.loop, f.Phase, f.Loop)
		}
		if !near(f.Accounting.TotalElapsed, s.elapsed) {
			t.Errorf("t=%v: expected total elapsed %v, got %v", s.now, s.elapsed, f.Accounting.TotalElapsed)
		}
		if !near(f.ScrollProgress, s.progress) {
			t.Errorf("t=%v: expected scroll progress %v, got %v", s.now, s.progress, f.ScrollProgress)
		}
	}

	p.Pause(13.5)
	if p.State() != Paused {
		t.Fatalf("Expected paused state, got %v", p.State())
	}
	f = mustTick(t, p, 20)
	if !near(f.Accounting.TotalElapsed, 3.5) || f.CompletedIntervals != 1 {
		t.Errorf("Paused frame moved: %+v", f)
	}

	p.Resume(20)
	f = mustTick(t, p, 20.5)
	if !near(f.Accounting.TotalElapsed, 4) {
		t.Errorf("After resume: expected 4, got %v", f.Accounting.TotalElapsed)
	}

	f = mustTick(t, p, 100)
	if f.Phase != PhaseDone || p.State() != Finished {
		t.Errorf("Expected done, got %s (state %v)", f.Phase, p.State())
	}
	if f.Loop != 2 || f.CompletedIntervals != 2 {
		t.Errorf("Expected last loop 2 after 2 intervals, got loop %d, intervals %d", f.Loop, f.CompletedIntervals)
	}
	if !near(f.Accounting.TotalElapsed, f.Accounting.TotalDuration) {
		t.Errorf("Finished run should be at its end: %+v", f.Accounting)
	}

	p.Reset()
	f = mustTick(t, p, 200)
	if f.Phase != PhaseIdle || f.Loop != 0 || f.Accounting.TotalElapsed != 0 {
		t.Errorf("Reset did not return to idle: %+v", f)
	}
}

func TestEntryPhases(t *testing.T) {
	p := mustPlayer(t, Settings{
		ScrollDuration: 2,
		LoopCount:      1,
		Canvas:         canvas,
		Entry: timing.EntryAnimation{
			Enabled:              true,
			CardBoundaries:       []float64{0, 100, 100, 200},
			CardAnimations:       []string{transform.Fade, transform.SlideUp},
			Duration:             500,
			StaggerDelay:         100,
			IntervalBeforeScroll: 500,
		},
	})
	p.Start(0)

	f := mustTick(t, p, 0.05)
	if f.Phase != PhaseEntry || len(f.Cards) != 2 {
		t.Fatalf("Expected entry phase with 2 cards, got %s with %d", f.Phase, len(f.Cards))
	}
	if !f.Cards[0].Started || f.Cards[1].Started {
		t.Errorf("At 50ms only card 0 should have started: %+v", f.Cards)
	}

	f = mustTick(t, p, 0.25)
	if !near(f.Cards[0].Progress, 0.5) || !near(f.Cards[1].Progress, 0.3) {
		t.Errorf("Expected progress 0.5/0.3, got %v/%v", f.Cards[0].Progress, f.Cards[1].Progress)
	}
	if !near(f.Cards[0].Descriptor.Alpha, 0.5) {
		t.Errorf("Fade card alpha: expected 0.5, got %v", f.Cards[0].Descriptor.Alpha)
	}
	rest := f.Cards[1].Rest
	if rest.X != 100 || rest.Width != 100 || rest.Height != canvas.Height {
		t.Errorf("Card 1 rest rect: got %+v", rest)
	}
	if f.Cards[1].Descriptor.Y >= 0 {
		t.Errorf("Slide-up card should still be above its rest y, got %v", f.Cards[1].Descriptor.Y)
	}

	if f := mustTick(t, p, 1.3); f.Phase != PhaseHold {
		t.Errorf("t=1.3: expected hold, got %s", f.Phase)
	}

	f = mustTick(t, p, 2.6)
	if f.Phase != PhaseScroll || math.Abs(f.ScrollProgress-0.5) > 1e-9 {
		t.Errorf("t=2.6: expected scroll at 0.5, got %s at %v", f.Phase, f.ScrollProgress)
	}

	f = mustTick(t, p, 5)
	if f.Phase != PhaseDone || math.Abs(f.Accounting.TotalDuration-3.6) > 1e-9 {
		t.Errorf("Expected done with 3.6s total, got %s %+v", f.Phase, f.Accounting)
	}
}

func TestVariableDurations(t *testing.T) {
	p := mustPlayer(t, Settings{
		Durations: []float64{1, 2},
		LoopCount: 3,
		Canvas:    canvas,
	})
	p.Start(0)

	tests := []struct {
		now      float64
		loop     int
		progress float64
		elapsed  float64
	}{
		{0.5, 0, 0.5, 0.5},
		{1.5, 1, 0.25, 1.5},
		{3.5, 2, 0.25, 3.5},
	}
	for _, tt := range tests {
		f := mustTick(t, p, tt.now)
		if f.Loop != tt.loop || !near(f.ScrollProgress, tt.progress) || !near(f.Accounting.TotalElapsed, tt.elapsed) {
			t.Errorf("t=%v: expected loop %d at %v (%vs), got loop %d at %v (%vs)",
				tt.now, tt.loop, tt.progress, tt.elapsed, f.Loop, f.ScrollProgress, f.Accounting.TotalElapsed)
		}
	}

	f := mustTick(t, p, 10)
	if f.Phase != PhaseDone || f.Accounting.TotalDuration != 5 || f.Accounting.TotalElapsed != 5 {
		t.Errorf("Expected done at 5/5, got %s %+v", f.Phase, f.Accounting)
	}
}

func TestUnboundedLoops(t *testing.T) {
	p := mustPlayer(t, Settings{
		ScrollDuration: 1,
		LoopIntervalMs: 500,
		Canvas:         canvas,
	})
	p.Start(0)

	f := mustTick(t, p, 7.75)
	if f.Loop != 5 || f.CompletedIntervals != 5 {
		t.Errorf("Expected loop 5 after 5 intervals, got loop %d, intervals %d", f.Loop, f.CompletedIntervals)
	}
	if !f.Accounting.Unbounded() {
		t.Errorf("Expected unbounded total, got %v", f.Accounting.TotalDuration)
	}
	if !near(f.Accounting.TotalElapsed, 7.75) {
		t.Errorf("Expected 7.75 elapsed, got %v", f.Accounting.TotalElapsed)
	}
	if p.State() != Playing {
		t.Errorf("Unbounded run must keep playing, got %v", p.State())
	}
}

func TestNewPlanInvalid(t *testing.T) {
	entry := timing.EntryAnimation{
		Enabled:        true,
		CardBoundaries: []float64{0, 100},
		CardAnimations: []string{transform.Fade},
		Duration:       500,
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
		target error
	}{
		{"negative loops", func(s *Settings) { s.LoopCount = -1 }, timing.ErrInvalidArgument},
		{"no scroll duration", func(s *Settings) { s.ScrollDuration = 0 }, timing.ErrInvalidArgument},
		{"zero sequence entry", func(s *Settings) { s.Durations = []float64{1, 0} }, timing.ErrInvalidArgument},
		{"zero canvas", func(s *Settings) { s.Canvas = transform.CanvasGeometry{} }, timing.ErrInvalidArgument},
		{"negative interval", func(s *Settings) { s.LoopIntervalMs = -1 }, timing.ErrInvalidArgument},
		{"animation count mismatch", func(s *Settings) { s.Entry.CardAnimations = nil }, timing.ErrInvalidArgument},
		{"inverted card", func(s *Settings) { s.Entry.CardBoundaries = []float64{100, 50} }, timing.ErrInvalidArgument},
		{"unknown animation", func(s *Settings) { s.Entry.CardAnimations = []string{"teleport"} }, transform.ErrUnknownStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{ScrollDuration: 2, LoopCount: 1, Canvas: canvas, Entry: entry}
			s.Entry.CardBoundaries = append([]float64(nil), entry.CardBoundaries...)
			s.Entry.CardAnimations = append([]string(nil), entry.CardAnimations...)
			tt.mutate(&s)
			if _, err := NewPlan(s); !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestDirectionDefaultsToForward(t *testing.T) {
	plan, err := NewPlan(Settings{ScrollDuration: 1, LoopCount: 1, Canvas: transform.CanvasGeometry{Width: 10, Height: 10}})
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if plan.Canvas().Direction != transform.Forward {
		t.Errorf("Expected forward, got %s", plan.Canvas().Direction)
	}
}

func TestTickRejectsNonFinite(t *testing.T) {
	for _, now := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := mustPlayer(t, Settings{ScrollDuration: 2, LoopIntervalMs: 500, Canvas: canvas})
		p.Start(0)
		if _, err := p.Tick(now); !errors.Is(err, timing.ErrInvalidArgument) {
			t.Errorf("Tick(%v): expected ErrInvalidArgument, got %v", now, err)
		}
	}

	p := mustPlayer(t, Settings{ScrollDuration: 2, LoopIntervalMs: 500, Canvas: canvas})
	p.Start(math.NaN())
	if _, err := p.Tick(1); !errors.Is(err, timing.ErrInvalidArgument) {
		t.Errorf("Tick after Start(NaN): expected ErrInvalidArgument, got %v", err)
	}
}

func TestFarFutureTick(t *testing.T) {
	p := mustPlayer(t, Settings{ScrollDuration: 2, LoopIntervalMs: 500, Canvas: canvas})
	p.Start(0)
	f := mustTick(t, p, 1e12)
	if f.Loop != 400_000_000_000 || f.CompletedIntervals != 400_000_000_000 {
		t.Errorf("Expected loop 4e11, got loop %d, intervals %d", f.Loop, f.CompletedIntervals)
	}
	if f.Phase != PhaseScroll || !near(f.LoopElapsed, 0) {
		t.Errorf("Expected the start of a scroll, got %s at %v", f.Phase, f.LoopElapsed)
	}

	bounded := mustPlayer(t, Settings{ScrollDuration: 2, LoopCount: 3, LoopIntervalMs: 500, Canvas: canvas})
	bounded.Start(0)
	f = mustTick(t, bounded, 1e12)
	if f.Phase != PhaseDone || f.Loop != 2 || f.CompletedIntervals != 2 {
		t.Errorf("Expected done in loop 2, got %s loop %d, intervals %d", f.Phase, f.Loop, f.CompletedIntervals)
	}

	variable := mustPlayer(t, Settings{Durations: []float64{1, 2}, LoopIntervalMs: 500, Canvas: canvas})
	variable.Start(0)
	f = mustTick(t, variable, 11.75)
	if f.Loop != 5 || !near(f.LoopElapsed, 0.25) {
		t.Errorf("Expected loop 5 at 0.25s, got loop %d at %v", f.Loop, f.LoopElapsed)
	}

	if _, err := p.Tick(1e300); !errors.Is(err, timing.ErrInvalidArgument) {
		t.Errorf("Tick(1e300): expected ErrInvalidArgument, got %v", err)
	}
}
