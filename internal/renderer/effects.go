package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/stripscroll/internal/transform"
)

// GlitchShift is the channel split, in pixels, at full glitch intensity.
const GlitchShift = 12.0

// drawGlitch splits the red and blue channels sideways by the intensity and
// jitters horizontal slices.
func drawGlitch(dst *image.RGBA, src *image.RGBA, d transform.Descriptor, p transform.GlitchParams) {
	sb := src.Bounds()
	shift := int(math.Round(p.Intensity * GlitchShift))
	origin := image.Pt(int(math.Round(d.X)), int(math.Round(d.Y)))
	slice := max(1, sb.Dy()/8)

	at := func(x, y int) color.RGBA {
		x = min(max(x, sb.Min.X), sb.Max.X-1)
		return src.RGBAAt(x, y)
	}

	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		jitter := 0
		if shift > 0 {
			k := (y - sb.Min.Y) / slice
			jitter = ((k*7)%5 - 2) * shift / 2
		}
		dy := origin.Y + y - sb.Min.Y
		for x := sb.Min.X; x < sb.Max.X; x++ {
			sx := x + jitter
			r, g, b := at(sx+shift, y), at(sx, y), at(sx-shift, y)
			px := color.RGBA{R: r.R, G: g.G, B: b.B, A: max(r.A, g.A, b.A)}
			dst.SetRGBA(origin.X+x-sb.Min.X, dy, px)
		}
	}
}

// waveEdge is how many pixels of a row are revealed. It sweeps from
// -amplitude to width+amplitude so the sine edge clears both sides.
func waveEdge(row, width, height int, p transform.WaveParams) float64 {
	phase := 2 * math.Pi * p.Frequency * float64(row) / float64(height)
	return p.Progress*(float64(width)+2*p.Amplitude) - p.Amplitude + p.Amplitude*math.Sin(phase)
}

// drawWave reveals the card from its leading edge behind a sine boundary.
func drawWave(dst *image.RGBA, src *image.RGBA, d transform.Descriptor, p transform.WaveParams) {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	ox, oy := int(math.Round(d.X)), int(math.Round(d.Y))

	for row := 0; row < h; row++ {
		edge := int(math.Round(waveEdge(row, w, h, p)))
		edge = min(max(edge, 0), w)
		if edge == 0 {
			continue
		}
		lo, hi := 0, edge
		if p.Reverse {
			lo, hi = w-edge, w
		}
		r := image.Rect(ox+lo, oy+row, ox+hi, oy+row+1)
		draw.Draw(dst, r, src, image.Pt(sb.Min.X+lo, sb.Min.Y+row), draw.Over)
	}
}

// drawFragments flies a rows×cols grid of tiles in from the side new
// content scrolls in from. Columns nearer that side land first.
func drawFragments(dst *image.RGBA, src *image.RGBA, d transform.Descriptor, p transform.FragmentParams) {
	sb := src.Bounds()
	rows, cols := max(1, p.Rows), max(1, p.Cols)
	w, h := sb.Dx(), sb.Dy()

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tile := image.Rect(
				sb.Min.X+c*w/cols, sb.Min.Y+r*h/rows,
				sb.Min.X+(c+1)*w/cols, sb.Min.Y+(r+1)*h/rows,
			)
			if tile.Empty() {
				continue
			}

			order := 1.0
			if cols > 1 {
				order = float64(c) / float64(cols-1)
			}
			if !p.Reverse {
				order = 1 - order
			}
			local := transform.EaseOutCubic(math.Min(1, math.Max(0, (p.Progress-0.4*order)/0.6)))
			if local <= 0 {
				continue
			}

			restX := d.X + float64(tile.Min.X-sb.Min.X)
			restY := d.Y + float64(tile.Min.Y-sb.Min.Y)
			startX := p.CanvasWidth + float64(tile.Min.X-sb.Min.X)
			if p.Reverse {
				startX = -float64(w - (tile.Min.X - sb.Min.X))
			}
			startY := restY + (float64(r)-float64(rows-1)/2)*float64(tile.Dy())

			x := int(math.Round(transform.Lerp(startX, restX, local)))
			y := int(math.Round(transform.Lerp(startY, restY, local)))
			at := tile.Sub(tile.Min).Add(image.Pt(x, y))
			draw.DrawMask(dst, at, src, tile.Min, alphaMask(local), image.Point{}, draw.Over)
		}
	}
}
