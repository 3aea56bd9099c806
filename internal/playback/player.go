package playback

import (
	"fmt"
	"math"

	"github.com/ivlev/stripscroll/internal/timing"
	"github.com/ivlev/stripscroll/internal/transform"
)

// Phase is where in a loop the playback position sits.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseEntry    Phase = "entry"    // cards animating in
	PhaseHold     Phase = "hold"     // static view before the scroll
	PhaseScroll   Phase = "scroll"   // strip moving
	PhaseInterval Phase = "interval" // pause between loops
	PhaseDone     Phase = "done"
)

// State is the player's run state.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

// CardFrame is one card's state in a frame. Cards that have not started are
// not drawn.
type CardFrame struct {
	Index      int
	Rest       transform.CardGeometry
	Started    bool
	Progress   float64
	Descriptor transform.Descriptor
}

// Frame is everything the renderer and the progress display need for one tick.
type Frame struct {
	Phase              Phase
	Loop               int // 0-based
	CompletedIntervals int
	LoopElapsed        float64 // seconds into the current loop
	ScrollProgress     float64
	Cards              []CardFrame
	Accounting         timing.Accounting
}

// Player advances a Plan against a clock supplied by the caller. It never
// reads the wall clock itself, so frames are reproducible for a given
// sequence of calls.
type Player struct {
	plan  *Plan
	state State

	loop               int
	completedIntervals int
	loopStart          float64 // clock time the current loop began, shifted by pauses
	pausedAt           float64
}

// NewPlayer returns an idle player for plan.
func NewPlayer(plan *Plan) *Player {
	return &Player{plan: plan}
}

// State returns the current run state.
func (p *Player) State() State {
	return p.state
}

// Start begins playback at clock time now. Starting a finished player
// restarts it.
func (p *Player) Start(now float64) {
	if p.state == Finished {
		p.Reset()
	}
	if p.state != Idle {
		return
	}
	p.loopStart = now
	p.state = Playing
}

// Pause freezes the playback position at now.
func (p *Player) Pause(now float64) {
	if p.state != Playing {
		return
	}
	p.pausedAt = now
	p.state = Paused
}

// Resume continues from the paused position; the paused span is skipped.
func (p *Player) Resume(now float64) {
	if p.state != Paused {
		return
	}
	if now > p.pausedAt {
		p.loopStart += now - p.pausedAt
	}
	p.state = Playing
}

// Reset returns to the idle state at the start of loop 0.
func (p *Player) Reset() {
	*p = Player{plan: p.plan}
}

// Tick returns the frame for clock time now. Non-finite clock times, here or
// earlier in Start, Pause or Resume, are rejected.
func (p *Player) Tick(now float64) (Frame, error) {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return Frame{}, fmt.Errorf("%w: clock time must be finite, got %v", timing.ErrInvalidArgument, now)
	}
	switch p.state {
	case Idle:
		return p.frame(0, false)
	case Paused:
		now = p.pausedAt
	}

	elapsed := now - p.loopStart
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		return Frame{}, fmt.Errorf("%w: playback position must be finite, got %v", timing.ErrInvalidArgument, elapsed)
	}
	elapsed = max(0, elapsed)
	finished := p.state == Finished
	if !finished {
		var err error
		if elapsed, finished, err = p.advance(elapsed); err != nil {
			return Frame{}, err
		}
	} else {
		elapsed = p.plan.LoopLength(p.loop)
	}
	if finished {
		p.state = Finished
	}
	return p.frame(elapsed, finished)
}

// advance moves past every loop interval that ended before elapsed and
// returns the position within the current loop.
func (p *Player) advance(elapsed float64) (float64, bool, error) {
	count := p.plan.settings.LoopCount
	interval := p.plan.interval()
	for {
		length := p.plan.LoopLength(p.loop)
		if p.constantFrom(p.loop) {
			if err := p.skipLoops(&elapsed, length+interval, count); err != nil {
				return 0, false, err
			}
		}
		if count > 0 && p.loop == count-1 {
			if elapsed >= length {
				return length, true, nil
			}
			return elapsed, false, nil
		}
		if elapsed < length+interval {
			return elapsed, false, nil
		}
		p.loopStart += length + interval
		elapsed -= length + interval
		p.loop++
		p.completedIntervals++
	}
}

// constantFrom reports whether every loop from k on has the same length.
func (p *Player) constantFrom(k int) bool {
	return !p.plan.Variable() || k >= len(p.plan.settings.Durations)-1
}

// maxLoops bounds the loop index; past 2^53 a float64 position can no longer
// tell neighbouring loops apart.
const maxLoops = 1 << 53

// skipLoops jumps over whole loops of equal period in one step, stopping at
// the last loop of a bounded run.
func (p *Player) skipLoops(elapsed *float64, period float64, count int) error {
	n := math.Floor(*elapsed / period)
	if count > 0 {
		n = min(n, float64(count-1-p.loop))
	}
	if n < 1 {
		return nil
	}
	if n+float64(p.loop) > maxLoops {
		return fmt.Errorf("%w: playback position %vs is beyond %d loops", timing.ErrInvalidArgument, *elapsed, int64(maxLoops))
	}
	skip := int(n)
	p.loop += skip
	p.completedIntervals += skip
	p.loopStart += n * period
	*elapsed = max(0, *elapsed-n*period)
	return nil
}

func (p *Player) frame(elapsed float64, finished bool) (Frame, error) {
	acc, err := p.plan.Accounting(p.loop, p.completedIntervals, elapsed)
	if err != nil {
		return Frame{}, err
	}
	f := Frame{
		Loop:               p.loop,
		CompletedIntervals: p.completedIntervals,
		LoopElapsed:        elapsed,
		Accounting:         acc,
	}

	length := p.plan.LoopLength(p.loop)
	entryEnd := p.plan.entryMs / 1000
	switch {
	case p.state == Idle:
		f.Phase = PhaseIdle
	case finished:
		f.Phase = PhaseDone
		f.ScrollProgress = 1
	case elapsed >= length:
		f.Phase = PhaseInterval
		f.ScrollProgress = 1
	case p.plan.settings.Entry.Enabled && elapsed < entryEnd:
		f.Phase = PhaseEntry
		if f.Cards, err = p.cards(elapsed * 1000); err != nil {
			return Frame{}, err
		}
	case elapsed < p.plan.overhead:
		f.Phase = PhaseHold
	default:
		f.Phase = PhaseScroll
		f.ScrollProgress = min(1, (elapsed-p.plan.overhead)/p.plan.ScrollDuration(p.loop))
	}
	return f, nil
}

func (p *Player) cards(elapsedMs float64) ([]CardFrame, error) {
	entry := p.plan.settings.Entry
	canvas := p.plan.settings.Canvas
	frames := make([]CardFrame, len(p.plan.cards))
	for i, c := range p.plan.cards {
		progress, started := entry.CardProgress(i, elapsedMs)
		frames[i] = CardFrame{Index: i, Rest: c.Rest, Started: started, Progress: progress}
		if !started {
			continue
		}
		d, err := c.strategy.Calculate(progress, c.Rest, canvas)
		if err != nil {
			return nil, err
		}
		frames[i].Descriptor = d
	}
	return frames, nil
}
