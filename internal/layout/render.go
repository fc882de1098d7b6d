package layout

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Padding is added around the text block on each side.
type Padding struct {
	X, Y int
}

func Uniform(p int) Padding { return Padding{X: p, Y: p} }

// Style controls how a block of lines is drawn. A nil Background leaves the
// bitmap fully transparent outside the glyphs.
type Style struct {
	Color       color.Color
	Background  color.Color
	Align       Align
	Padding     Padding
	LineSpacing int
}

// LineHeight is ascent + descent of the face in whole pixels.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Size returns the bitmap dimensions Render would produce.
func Size(face font.Face, lines []string, st Style) (int, int) {
	w, h := 0, 0
	if len(lines) > 0 {
		for _, l := range lines {
			if lw := Measure(face, l); lw > w {
				w = lw
			}
		}
		h = len(lines)*LineHeight(face) + (len(lines)-1)*st.LineSpacing
	}
	return w + 2*st.Padding.X, h + 2*st.Padding.Y
}

// Render draws lines into a new bitmap of minimal size. Each pixel keeps its
// own alpha, so the result can be composited over any background.
func Render(face font.Face, lines []string, st Style) *image.RGBA {
	w, h := Size(face, lines, st)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if st.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)
	}
	if len(lines) == 0 {
		return img
	}

	fg := st.Color
	if fg == nil {
		fg = color.White
	}
	ascent := face.Metrics().Ascent.Ceil()
	lh := LineHeight(face)
	inner := w - 2*st.Padding.X

	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	for i, line := range lines {
		x := st.Padding.X
		switch st.Align {
		case AlignCenter:
			x += (inner - Measure(face, line)) / 2
		case AlignRight:
			x += inner - Measure(face, line)
		}
		y := st.Padding.Y + i*(lh+st.LineSpacing) + ascent
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
	return img
}

// Text wraps and renders in one step. maxWidth > 0 wraps by pixels,
// otherwise maxChars > 0 wraps by runes, otherwise the text is kept as is.
func Text(face font.Face, text string, maxWidth, maxChars int, st Style) *image.RGBA {
	var lines []string
	switch {
	case maxWidth > 0:
		lines = WrapPixels(face, text, maxWidth)
	case maxChars > 0:
		lines = WrapChars(text, maxChars)
	default:
		lines = wrap(text, func(string) bool { return true })
	}
	return Render(face, lines, st)
}
