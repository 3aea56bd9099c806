// Package timing converts loop counts, per-loop durations and caller-tracked
// interval counts into elapsed/total accounting for a scroll animation.
//
// Units follow the playback configuration: scroll durations are seconds,
// entry-animation and interval times are milliseconds. Every function is pure
// and validates its arguments up front; a bad value is reported, never coerced.
package timing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidArgument is wrapped by every argument validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requireNonNegative(name string, v float64) error {
	if !finite(v) || v < 0 {
		return invalid("%s must be a finite number >= 0, got %v", name, v)
	}
	return nil
}

func requirePositive(name string, v float64) error {
	if !finite(v) || v <= 0 {
		return invalid("%s must be a finite number > 0, got %v", name, v)
	}
	return nil
}

func validateSequence(seq []float64) error {
	for i, d := range seq {
		if err := requirePositive(fmt.Sprintf("durations[%d]", i), d); err != nil {
			return err
		}
	}
	return nil
}

// LoopDuration returns the scroll duration of loop loopNumber (1-based).
// An empty sequence means fixed mode and yields baseDuration. Otherwise the
// sequence entry is returned as-is; loopNumber beyond the sequence is an
// error, callers clamp before calling.
func LoopDuration(loopNumber int, baseDuration float64, sequence []float64) (float64, error) {
	if loopNumber < 1 {
		return 0, invalid("loop number must be a positive integer, got %d", loopNumber)
	}
	if err := requirePositive("base duration", baseDuration); err != nil {
		return 0, err
	}
	if len(sequence) == 0 {
		return baseDuration, nil
	}
	if loopNumber > len(sequence) {
		return 0, invalid("loop number %d exceeds duration sequence length %d", loopNumber, len(sequence))
	}
	d := sequence[loopNumber-1]
	if err := requirePositive(fmt.Sprintf("durations[%d]", loopNumber-1), d); err != nil {
		return 0, err
	}
	return d, nil
}

// ParseDuration parses user-typed seconds. It is stricter than
// strconv.ParseFloat: blank input, NaN, infinities and values below min all
// fail.
func ParseDuration(raw string, min float64) (float64, error) {
	if err := requirePositive("minimum duration", min); err != nil {
		return 0, err
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, invalid("duration is empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, invalid("duration %q is not a number", raw)
	}
	if v < min {
		return 0, invalid("duration %v is below the minimum %v", v, min)
	}
	return v, nil
}

// FixedOverhead backs out the entry animation plus pre-scroll interval from a
// known single-loop duration.
func FixedOverhead(singleLoopDuration, scrollDuration float64) (float64, error) {
	if !finite(singleLoopDuration) {
		return 0, invalid("single loop duration must be finite, got %v", singleLoopDuration)
	}
	if !finite(scrollDuration) {
		return 0, invalid("scroll duration must be finite, got %v", scrollDuration)
	}
	return singleLoopDuration - scrollDuration, nil
}

// EntryTotalDuration returns the entry animation length in milliseconds for
// cardCount cards, each animating for durationMs, started staggerMs apart.
func EntryTotalDuration(cardCount int, durationMs, staggerMs float64) (float64, error) {
	if cardCount < 0 {
		return 0, invalid("card count must be >= 0, got %d", cardCount)
	}
	if err := requireNonNegative("entry duration", durationMs); err != nil {
		return 0, err
	}
	if err := requireNonNegative("stagger delay", staggerMs); err != nil {
		return 0, err
	}
	if cardCount == 0 {
		return 0, nil
	}
	n := float64(cardCount)
	return n*durationMs + (n-1)*staggerMs, nil
}

// SingleLoopDuration returns the length of one loop in seconds: the scroll,
// plus the entry animation and pre-scroll interval when entry is enabled.
func SingleLoopDuration(scrollDuration float64, entry EntryAnimation) (float64, error) {
	if err := requireNonNegative("scroll duration", scrollDuration); err != nil {
		return 0, err
	}
	if !entry.Enabled {
		return scrollDuration, nil
	}
	if err := requireNonNegative("interval before scroll", entry.IntervalBeforeScroll); err != nil {
		return 0, err
	}
	cards, err := entry.CardCount()
	if err != nil {
		return 0, err
	}
	entryMs, err := EntryTotalDuration(cards, entry.Duration, entry.StaggerDelay)
	if err != nil {
		return 0, err
	}
	return scrollDuration + entryMs/1000 + entry.IntervalBeforeScroll/1000, nil
}
