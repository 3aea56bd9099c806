package analyzer

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// GapDetector splits a viewport at blank vertical separators
type GapDetector struct {
	MinGap    int     // narrower blank runs stay inside a card
	MinWidth  int     // narrower cards are dropped as noise
	Threshold float64 // column energy at or below this is blank
}

// NewGapDetector creates a gap detector with default settings
func NewGapDetector() *GapDetector {
	return &GapDetector{
		MinGap:    8,
		MinWidth:  16,
		Threshold: 6.0,
	}
}

// Detect returns the content runs between separators, left to right.
func (d *GapDetector) Detect(img image.Image) ([]Band, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	gray := toGrayscale(img)
	energy := columnEnergy(gray, background(gray))

	var bands []Band
	start, gapRun := -1, 0
	for x, e := range energy {
		if e > d.Threshold {
			if start < 0 {
				start = x
			}
			gapRun = 0
			continue
		}
		if start < 0 {
			continue
		}
		gapRun++
		if gapRun >= d.MinGap {
			bands = d.appendBand(bands, start, x-gapRun+1)
			start, gapRun = -1, 0
		}
	}
	if start >= 0 {
		bands = d.appendBand(bands, start, len(energy)-gapRun)
	}
	return bands, nil
}

func (d *GapDetector) appendBand(bands []Band, left, right int) []Band {
	if right-left < d.MinWidth {
		return bands
	}
	return append(bands, Band{Left: left, Right: right})
}

// toGrayscale converts an image to grayscale with its origin at 0,0
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// background is the most common gray level.
func background(gray *image.Gray) uint8 {
	var hist [256]int
	for _, v := range gray.Pix {
		hist[v]++
	}
	best := 0
	for v, n := range hist {
		if n > hist[best] {
			best = v
		}
	}
	return uint8(best)
}

// columnEnergy is, per column, the mean distance from the background plus
// the mean gradient down the column.
func columnEnergy(gray *image.Gray, bg uint8) []float64 {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	energy := make([]float64, w)
	for x := 0; x < w; x++ {
		var sum float64
		prev := float64(gray.GrayAt(x, 0).Y)
		for y := 0; y < h; y++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += math.Abs(v-float64(bg)) + math.Abs(v-prev)
			prev = v
		}
		energy[x] = sum / float64(h)
	}
	return energy
}
