package timing

// EntryAnimation configures the card fly-in that precedes each scroll.
// Times are milliseconds. CardBoundaries is a flat [left0, right0, left1, right1, ...]
// list of viewport x positions.
type EntryAnimation struct {
	Enabled              bool      `yaml:"enabled"`
	CardBoundaries       []float64 `yaml:"card_boundaries"`
	CardAnimations       []string  `yaml:"card_animations"`
	Duration             float64   `yaml:"duration"`
	StaggerDelay         float64   `yaml:"stagger_delay"`
	IntervalBeforeScroll float64   `yaml:"interval_before_scroll"`
}

// CardCount returns the number of cards described by CardBoundaries.
func (e EntryAnimation) CardCount() (int, error) {
	if len(e.CardBoundaries)%2 != 0 {
		return 0, invalid("card boundaries must come in left/right pairs, got %d values", len(e.CardBoundaries))
	}
	return len(e.CardBoundaries) / 2, nil
}

// CardStart returns when card i starts animating, in ms from the start of the
// entry animation. Cards overlap: each starts StaggerDelay after the previous
// one started.
func (e EntryAnimation) CardStart(i int) float64 {
	return float64(i) * e.StaggerDelay
}

// CardProgress returns card i's progress at elapsedMs into the entry
// animation, clamped to [0,1], and whether the card has started.
func (e EntryAnimation) CardProgress(i int, elapsedMs float64) (float64, bool) {
	local := elapsedMs - e.CardStart(i)
	if local < 0 {
		return 0, false
	}
	if e.Duration <= 0 || local >= e.Duration {
		return 1, true
	}
	return local / e.Duration, true
}

// CardSpan returns the left and right viewport x of card i.
func (e EntryAnimation) CardSpan(i int) (left, right float64) {
	return e.CardBoundaries[2*i], e.CardBoundaries[2*i+1]
}
