package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ProgressBar is a full-width countdown bar drawn along the top edge.
type ProgressBar struct {
	Width  int
	Height int
	Total  float64
}

// Fill returns the filled length at t, 0 at t<=0 and Width at t>=Total.
func (p ProgressBar) Fill(t float64) int {
	if p.Total <= 0 || t >= p.Total {
		return p.Width
	}
	if t <= 0 {
		return 0
	}
	return int(math.Round(lerp(0, float64(p.Width), t/p.Total)))
}

func (p ProgressBar) Draw(dst draw.Image, t float64, bg, fg color.Color) {
	draw.Draw(dst, image.Rect(0, 0, p.Width, p.Height), image.NewUniform(bg), image.Point{}, draw.Src)
	if w := p.Fill(t); w > 0 {
		draw.Draw(dst, image.Rect(0, 0, w, p.Height), image.NewUniform(fg), image.Point{}, draw.Src)
	}
}
