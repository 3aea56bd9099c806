// Package renderer rasterizes playback frames of a strip into RGBA images.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/stripscroll/internal/playback"
	"github.com/ivlev/stripscroll/internal/transform"
)

// Compositor draws frames of one strip into a fixed-size viewport.
// It holds no per-frame state and is safe for concurrent Render calls.
type Compositor struct {
	strip      *image.RGBA // scaled to the viewport height
	width      int
	height     int
	direction  transform.Direction
	Background color.RGBA
}

// NewCompositor scales strip to the viewport height.
func NewCompositor(strip image.Image, width, height int, dir transform.Direction) (*Compositor, error) {
	b := strip.Bounds()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("viewport must be positive, got %dx%d", width, height)
	}
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("strip is empty")
	}
	if dir == transform.DirectionUnset {
		dir = transform.Forward
	}

	var scaled *image.RGBA
	if rgba, ok := strip.(*image.RGBA); ok && b.Dy() == height && b.Min == (image.Point{}) {
		scaled = rgba
	} else {
		w := int(math.Round(float64(b.Dx()) * float64(height) / float64(b.Dy())))
		scaled = image.NewRGBA(image.Rect(0, 0, max(w, 1), height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), strip, b, draw.Src, nil)
	}

	return &Compositor{
		strip:      scaled,
		width:      width,
		height:     height,
		direction:  dir,
		Background: color.RGBA{A: 255},
	}, nil
}

// Travel is how far, in pixels, the window moves over one scroll.
func (c *Compositor) Travel() int {
	return max(0, c.strip.Bounds().Dx()-c.width)
}

// viewOffset is the strip x shown at the viewport's left edge. A reverse
// scroll starts at the far end of the strip.
func (c *Compositor) viewOffset(progress float64) float64 {
	if c.direction == transform.Reverse {
		progress = 1 - progress
	}
	return progress * float64(c.Travel())
}

// Render draws f into dst, which must match the viewport size.
func (c *Compositor) Render(f playback.Frame, dst *image.RGBA) error {
	if dst.Bounds().Dx() != c.width || dst.Bounds().Dy() != c.height {
		return fmt.Errorf("frame buffer is %v, viewport is %dx%d", dst.Bounds().Size(), c.width, c.height)
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	switch f.Phase {
	case playback.PhaseEntry:
		for _, card := range f.Cards {
			if card.Started {
				c.drawCard(dst, card)
			}
		}
	case playback.PhaseIdle, playback.PhaseHold:
		c.drawView(dst, 0)
	case playback.PhaseInterval, playback.PhaseDone:
		c.drawView(dst, 1)
	case playback.PhaseScroll:
		c.drawView(dst, f.ScrollProgress)
	default:
		return fmt.Errorf("unknown phase %q", f.Phase)
	}
	return nil
}

func (c *Compositor) drawView(dst *image.RGBA, progress float64) {
	off := c.viewOffset(progress)
	whole := math.Round(off)
	if math.Abs(off-whole) < 1e-3 {
		draw.Draw(dst, dst.Bounds(), c.strip, image.Pt(int(whole), 0), draw.Src)
		return
	}
	m := f64.Aff3{1, 0, -off, 0, 1, 0}
	draw.ApproxBiLinear.Transform(dst, m, c.strip, c.strip.Bounds(), draw.Src, nil)
}

// cardSource is the strip region a card shows at rest in the start view.
func (c *Compositor) cardSource(rest transform.CardGeometry) *image.RGBA {
	off := int(math.Round(c.viewOffset(0)))
	r := image.Rect(
		int(math.Round(rest.X))+off, int(math.Round(rest.Y)),
		int(math.Round(rest.X+rest.Width))+off, int(math.Round(rest.Y+rest.Height)),
	)
	return c.strip.SubImage(r.Intersect(c.strip.Bounds())).(*image.RGBA)
}

func (c *Compositor) drawCard(dst *image.RGBA, card playback.CardFrame) {
	src := c.cardSource(card.Rest)
	if src.Bounds().Empty() {
		return
	}
	d := card.Descriptor
	switch p := d.Params.(type) {
	case transform.GlitchParams:
		drawGlitch(dst, src, d, p)
	case transform.WaveParams:
		drawWave(dst, src, d, p)
	case transform.FragmentParams:
		drawFragments(dst, src, d, p)
	default:
		drawStandard(dst, src, d)
	}
}

func alphaMask(alpha float64) *image.Uniform {
	a := math.Round(math.Max(0, math.Min(1, alpha)) * 255)
	return image.NewUniform(color.Alpha{A: uint8(a)})
}

// drawStandard maps src onto the descriptor rectangle, rotated about its
// center.
func drawStandard(dst *image.RGBA, src *image.RGBA, d transform.Descriptor) {
	if d.Alpha <= 0 || d.Width < 0.5 || d.Height < 0.5 {
		return
	}
	mask := alphaMask(d.Alpha)
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())

	if d.Blur > 0 {
		src = blur(src, d.Blur)
	}

	if d.Rotation == 0 && math.Abs(d.Width-sw) < 0.5 && math.Abs(d.Height-sh) < 0.5 {
		at := image.Pt(int(math.Round(d.X)), int(math.Round(d.Y)))
		draw.DrawMask(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, mask, image.Point{}, draw.Over)
		return
	}

	sx, sy := d.Width/sw, d.Height/sh
	theta := d.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	cx, cy := d.X+d.Width/2, d.Y+d.Height/2
	ux := float64(sb.Min.X) + sw/2
	uy := float64(sb.Min.Y) + sh/2

	m := f64.Aff3{
		cos * sx, -sin * sy, cx - cos*sx*ux + sin*sy*uy,
		sin * sx, cos * sy, cy - sin*sx*ux - cos*sy*uy,
	}
	draw.BiLinear.Transform(dst, m, src, sb, draw.Over, &draw.Options{SrcMask: mask})
}

// blur smooths src by scaling it down and back up. The result keeps src's
// bounds.
func blur(src *image.RGBA, radius float64) *image.RGBA {
	sb := src.Bounds()
	k := 1 + radius/2
	small := image.NewRGBA(image.Rect(0, 0,
		max(1, int(float64(sb.Dx())/k)),
		max(1, int(float64(sb.Dy())/k)),
	))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), src, sb, draw.Src, nil)
	out := image.NewRGBA(sb)
	draw.BiLinear.Scale(out, sb, small, small.Bounds(), draw.Src, nil)
	return out
}
