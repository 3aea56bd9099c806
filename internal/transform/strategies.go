package transform

import "math"

const (
	// MinScale keeps scaled cards from collapsing to a zero-size draw.
	MinScale = 0.01

	MaxBlur       = 20.0 // px, zoom-blur at progress 0
	SwingDegrees  = 15.0
	WaveAmplitude = 20.0
	WaveFrequency = 3.0
	FragmentRows  = 6
	FragmentCols  = 8
)

// resting returns the card at its final rectangle.
func resting(card CardGeometry, alpha float64) Descriptor {
	return Descriptor{
		X: card.X, Y: card.Y,
		Width: card.Width, Height: card.Height,
		Alpha: alpha,
		Mode:  ModeStandard,
	}
}

// scaled shrinks the card around its center by s.
func scaled(card CardGeometry, sx, sy, alpha float64) Descriptor {
	cx, cy := card.Center()
	w, h := card.Width*sx, card.Height*sy
	return Descriptor{
		X: cx - w/2, Y: cy - h/2,
		Width: w, Height: h,
		Alpha: alpha,
		Mode:  ModeStandard,
	}
}

func fade(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	return resting(card, p)
}

func slideLeft(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.X = Lerp(-card.Width, card.X, p)
	return d
}

func slideRight(p float64, card CardGeometry, canvas CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.X = Lerp(canvas.Width, card.X, p)
	return d
}

func slideUp(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.Y = Lerp(-card.Height, card.Y, p)
	return d
}

func slideDown(p float64, card CardGeometry, canvas CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.Y = Lerp(canvas.Height, card.Y, p)
	return d
}

func scale(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	s := math.Max(p, MinScale)
	return scaled(card, s, s, p)
}

func rotateScale(p float64, card CardGeometry, canvas CanvasGeometry) Descriptor {
	d := scale(p, card, canvas)
	d.Rotation = Lerp(360, 0, p)
	return d
}

func zoomBlur(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	s := math.Max(Lerp(0.5, 1, p), MinScale)
	d := scaled(card, s, s, p)
	d.Blur = Lerp(MaxBlur, 0, p)
	return d
}

// flipFactor fakes a perspective flip: |cos((1-p)·180°)|.
func flipFactor(p float64) float64 {
	return math.Abs(math.Cos((1 - p) * math.Pi))
}

func flipHorizontal(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	return scaled(card, flipFactor(p), 1, p)
}

func flipVertical(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	return scaled(card, 1, flipFactor(p), p)
}

// bounceIn drops the card from above the canvas onto its resting y.
func bounceIn(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.Y = Lerp(-card.Height, card.Y, EaseOutBounce(p))
	return d
}

// swing makes two decaying pendulum swings.
func swing(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	d := resting(card, p)
	d.Rotation = math.Sin(p*math.Pi*2) * SwingDegrees * (1 - p)
	return d
}

func glitch(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.Mode = ModeGlitch
	d.Params = GlitchParams{Intensity: 1 - p}
	return d
}

func waveReveal(p float64, card CardGeometry, canvas CanvasGeometry) Descriptor {
	d := resting(card, 1)
	d.Mode = ModeWaveClip
	d.Params = WaveParams{
		Progress:  p,
		Amplitude: WaveAmplitude,
		Frequency: WaveFrequency,
		Reverse:   canvas.Direction == Reverse,
	}
	return d
}

// fragmentReassembly snaps to a plain draw at completion so the reassembled
// grid leaves no seams.
func fragmentReassembly(p float64, card CardGeometry, canvas CanvasGeometry) Descriptor {
	d := resting(card, 1)
	if p >= 1 {
		return d
	}
	d.Mode = ModeFragments
	d.Params = FragmentParams{
		Progress:    p,
		Rows:        FragmentRows,
		Cols:        FragmentCols,
		Reverse:     canvas.Direction == Reverse,
		CanvasWidth: canvas.Width,
	}
	return d
}
