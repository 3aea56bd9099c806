package analyzer

import (
	"fmt"
	"image"
)

// EvenDetector splits the viewport into Count equal cards.
type EvenDetector struct {
	Count int
}

func (d *EvenDetector) Detect(img image.Image) ([]Band, error) {
	w := img.Bounds().Dx()
	if d.Count <= 0 {
		return nil, fmt.Errorf("card count must be positive, got %d", d.Count)
	}
	if w < d.Count {
		return nil, fmt.Errorf("%d cards do not fit in %d pixels", d.Count, w)
	}

	bands := make([]Band, d.Count)
	for i := range bands {
		bands[i] = Band{Left: i * w / d.Count, Right: (i + 1) * w / d.Count}
	}
	return bands, nil
}
