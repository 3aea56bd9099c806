package source

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Stitch renders every page of src, scales it to height and lays the pages
// out left to right into one strip.
func Stitch(ctx context.Context, src Source, dpi, height int) (*image.RGBA, error) {
	if height <= 0 {
		return nil, fmt.Errorf("stitch height must be positive, got %d", height)
	}
	n := src.PageCount()
	if n == 0 {
		return nil, fmt.Errorf("source has no pages")
	}

	pages := make([]image.Image, 0, n)
	widths := make([]int, 0, n)
	total := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := src.RenderPage(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i, err)
		}
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			return nil, fmt.Errorf("page %d is empty", i)
		}
		w := int(math.Round(float64(b.Dx()) * float64(height) / float64(b.Dy())))
		if w < 1 {
			w = 1
		}
		pages = append(pages, img)
		widths = append(widths, w)
		total += w
	}

	strip := image.NewRGBA(image.Rect(0, 0, total, height))
	x := 0
	for i, img := range pages {
		dst := image.Rect(x, 0, x+widths[i], height)
		if img.Bounds().Dy() == height {
			draw.Draw(strip, dst, img, img.Bounds().Min, draw.Src)
		} else {
			draw.CatmullRom.Scale(strip, dst, img, img.Bounds(), draw.Src, nil)
		}
		x += widths[i]
	}
	return strip, nil
}

// ScaleToHeight returns img resized to height, keeping its aspect ratio.
func ScaleToHeight(img image.Image, height int) *image.RGBA {
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * float64(height) / float64(b.Dy())))
	if w < 1 {
		w = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, height))
	draw.BiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
