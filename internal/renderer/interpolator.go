package renderer

import (
	"image"
	"math"
)

// MinWindow keeps an element's validity window non-empty when its start
// delay reaches the end of the phase.
const MinWindow = 1e-3

// SlideIn moves the k-th element in from the left, staggered by Delay per
// index. All fields are copied by value so a captured SlideIn never sees
// later changes to the loop that built it.
type SlideIn struct {
	Index    int
	Rest     image.Point
	Delay    float64
	Duration float64
	Offset   float64
}

// Start is the phase-relative time at which the element begins to move.
func (s SlideIn) Start() float64 {
	return float64(s.Index) * s.Delay
}

// Window returns the validity window of the element inside a phase of the
// given length.
func (s SlideIn) Window(total float64) (start, duration float64) {
	start = s.Start()
	return start, math.Max(MinWindow, total-start)
}

// X returns the horizontal position at phase time t.
func (s SlideIn) X(t float64) float64 {
	rest := float64(s.Rest.X)
	elapsed := t - s.Start()
	switch {
	case elapsed <= 0:
		return rest - s.Offset
	case elapsed >= s.Duration:
		return rest
	}
	return lerp(rest-s.Offset, rest, elapsed/s.Duration)
}

// At is the PositionFunc of the slide-in.
func (s SlideIn) At(t float64) image.Point {
	return image.Pt(int(math.Round(s.X(t))), s.Rest.Y)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
