package challenge

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imageWidth  = 220
	imageHeight = 80
	glyphScale  = 2
	noisePoints = 300
	noiseLines  = 8
	baseX       = 20
	jitter      = 5
	minAdvance  = 15
	maxAdvance  = 25
)

var background = color.RGBA{R: 0x23, G: 0x27, B: 0x2a, A: 0xff}

// PNGRenderer draws an expression as distorted glyphs over colour noise.
type PNGRenderer struct{}

func NewPNGRenderer() PNGRenderer {
	return PNGRenderer{}
}

func (PNGRenderer) Render(expression string, rng *rand.Rand) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	drawGlyphs(canvas, expression, rng)

	for n := 0; n < noisePoints; n++ {
		canvas.Set(rng.IntN(imageWidth), rng.IntN(imageHeight), noiseColor(rng))
	}
	for n := 0; n < noiseLines; n++ {
		drawLine(canvas,
			rng.IntN(imageWidth), rng.IntN(imageHeight),
			rng.IntN(imageWidth), rng.IntN(imageHeight),
			noiseColor(rng))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, blur(canvas)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawGlyphs(dst *image.RGBA, expression string, rng *rand.Rand) {
	face := basicfont.Face7x13
	glyphW := face.Advance
	glyphH := face.Height

	chars := []rune(expression)
	advances := make([]int, len(chars))
	total := 0
	for i := range chars {
		advances[i] = minAdvance + rng.IntN(maxAdvance-minAdvance+1)
		total += advances[i]
	}
	// Shrink the spacing when the string would run off the right edge.
	room := imageWidth - baseX - glyphW*glyphScale
	if total > room {
		for i := range advances {
			advances[i] = advances[i] * room / total
		}
	}

	fg := image.NewUniform(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe6})
	x := baseX
	for i, ch := range chars {
		offset := rng.IntN(2*jitter+1) - jitter

		glyph := image.NewRGBA(image.Rect(0, 0, glyphW, glyphH))
		d := &font.Drawer{
			Dst:  glyph,
			Src:  fg,
			Face: face,
			Dot:  fixed.P(0, face.Ascent),
		}
		d.DrawString(string(ch))

		y := (imageHeight-glyphH*glyphScale)/2 + offset
		target := image.Rect(x, y, x+glyphW*glyphScale, y+glyphH*glyphScale)
		xdraw.NearestNeighbor.Scale(dst, target, glyph, glyph.Bounds(), xdraw.Over, nil)

		x += advances[i]
	}
}

func noiseColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(100 + rng.IntN(156)),
		G: uint8(100 + rng.IntN(156)),
		B: uint8(100 + rng.IntN(156)),
		A: 0xff,
	}
}

func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		dst.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// blur softens edges by scaling down and back up with bilinear filtering.
func blur(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, b.Dx()*3/4, b.Dy()*3/4))
	xdraw.BiLinear.Scale(small, small.Bounds(), src, b, xdraw.Src, nil)

	out := image.NewRGBA(b)
	xdraw.BiLinear.Scale(out, b, small, small.Bounds(), xdraw.Src, nil)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
