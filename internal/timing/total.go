package timing

import (
	"fmt"
	"math"
)

// TotalTimeInput is the per-tick playback state needed for loop accounting.
type TotalTimeInput struct {
	Elapsed          float64   // seconds into the current loop, including a running loop interval
	LoopCount        int       // 0 means unbounded
	CurrentLoopIndex int       // 0-based
	Variable         bool      // per-loop durations from Sequence
	Sequence         []float64 // seconds, variable mode only
	SingleDuration   float64   // seconds, fixed mode only
	IntervalMs       float64   // pause between loops
	FixedOverhead    float64   // seconds, variable mode only

	// CompletedIntervals is tracked by the caller. It can lag CurrentLoopIndex
	// when playback stops inside an interval, so it is never derived here.
	CompletedIntervals int
}

// Accounting is the progress-bar view of a run, in seconds.
// TotalDuration is +Inf for unbounded runs; check Unbounded before doing
// arithmetic with it.
type Accounting struct {
	TotalElapsed  float64
	TotalDuration float64
}

// Unbounded reports whether the run loops forever.
func (a Accounting) Unbounded() bool {
	return math.IsInf(a.TotalDuration, 1)
}

// Remaining returns the seconds left, and false for unbounded runs.
func (a Accounting) Remaining() (float64, bool) {
	if a.Unbounded() {
		return 0, false
	}
	return math.Max(0, a.TotalDuration-a.TotalElapsed), true
}

// String formats as "elapsed / total".
func (a Accounting) String() string {
	return FormatSeconds(a.TotalElapsed) + " / " + FormatSeconds(a.TotalDuration)
}

// FormatSeconds renders seconds with two decimals, and +Inf as "∞".
func FormatSeconds(s float64) string {
	if math.IsInf(s, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2fs", s)
}

// TotalTime computes elapsed and total time across all loops.
func TotalTime(in TotalTimeInput) (Accounting, error) {
	if err := requireNonNegative("elapsed", in.Elapsed); err != nil {
		return Accounting{}, err
	}
	if in.LoopCount < 0 {
		return Accounting{}, invalid("loop count must be >= 0, got %d", in.LoopCount)
	}
	if in.CurrentLoopIndex < 0 {
		return Accounting{}, invalid("current loop index must be >= 0, got %d", in.CurrentLoopIndex)
	}
	if in.CompletedIntervals < 0 {
		return Accounting{}, invalid("completed intervals must be >= 0, got %d", in.CompletedIntervals)
	}
	if err := requireNonNegative("interval time", in.IntervalMs); err != nil {
		return Accounting{}, err
	}
	if in.Variable {
		return variableTotalTime(in)
	}
	return fixedTotalTime(in)
}

func fixedTotalTime(in TotalTimeInput) (Accounting, error) {
	if err := requirePositive("single duration", in.SingleDuration); err != nil {
		return Accounting{}, err
	}
	interval := in.IntervalMs / 1000
	acc := Accounting{
		TotalElapsed: float64(in.CurrentLoopIndex)*in.SingleDuration +
			float64(in.CompletedIntervals)*interval +
			in.Elapsed,
	}
	if in.LoopCount == 0 {
		acc.TotalDuration = math.Inf(1)
		return acc, nil
	}
	acc.TotalDuration = float64(in.LoopCount)*in.SingleDuration +
		float64(max(0, in.LoopCount-1))*interval
	return acc, nil
}

func variableTotalTime(in TotalTimeInput) (Accounting, error) {
	if len(in.Sequence) == 0 {
		return Accounting{}, invalid("variable duration mode requires a non-empty sequence")
	}
	if err := validateSequence(in.Sequence); err != nil {
		return Accounting{}, err
	}
	if err := requireNonNegative("fixed overhead", in.FixedOverhead); err != nil {
		return Accounting{}, err
	}
	interval := in.IntervalMs / 1000
	last := len(in.Sequence) - 1

	// Loops past the end of the sequence hold its last value.
	sum := func(n int) float64 {
		var total float64
		for i := 0; i < min(n, last); i++ {
			total += in.FixedOverhead + in.Sequence[i]
		}
		if n > last {
			total += float64(n-last) * (in.FixedOverhead + in.Sequence[last])
		}
		return total
	}

	acc := Accounting{TotalElapsed: sum(in.CurrentLoopIndex) + float64(in.CompletedIntervals)*interval + in.Elapsed}
	if in.LoopCount == 0 {
		acc.TotalDuration = math.Inf(1)
		return acc, nil
	}
	acc.TotalDuration = sum(in.LoopCount)
	acc.TotalDuration += float64(in.LoopCount-1) * interval
	return acc, nil
}
