package renderer

import (
	"image"
	"image/draw"
)

// PositionFunc gives the top-left corner of an element at phase time t.
type PositionFunc func(t float64) image.Point

// Static pins an element to p.
func Static(p image.Point) PositionFunc {
	return func(float64) image.Point { return p }
}

// Element is a positioned bitmap visible during [Start, Start+Duration).
type Element struct {
	Image    *image.RGBA
	Start    float64
	Duration float64
	Position PositionFunc
}

func (e *Element) Active(t float64) bool {
	return t >= e.Start && t < e.Start+e.Duration
}

// Draw composites the element over dst if it is active at t. Parts that fall
// outside dst are clipped.
func (e *Element) Draw(dst draw.Image, t float64) {
	if e.Image == nil || !e.Active(t) {
		return
	}
	pos := image.Point{}
	if e.Position != nil {
		pos = e.Position(t)
	}
	r := e.Image.Bounds().Sub(e.Image.Bounds().Min).Add(pos)
	draw.Draw(dst, r, e.Image, e.Image.Bounds().Min, draw.Over)
}
