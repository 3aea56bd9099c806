package analyzer

import "image"

// Band is a card's horizontal span in pixels, [Left, Right).
type Band struct {
	Left  int
	Right int
}

func (b Band) Width() int {
	return b.Right - b.Left
}

// Detector finds the cards of a strip viewport
type Detector interface {
	Detect(img image.Image) ([]Band, error)
}

// Boundaries flattens bands into the card_boundaries layout
// [left0, right0, left1, right1, ...].
func Boundaries(bands []Band) []float64 {
	out := make([]float64, 0, 2*len(bands))
	for _, b := range bands {
		out = append(out, float64(b.Left), float64(b.Right))
	}
	return out
}
