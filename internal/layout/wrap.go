package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// Measure returns the advance width of s in whole pixels, using the face's
// glyph advances and kerning.
func Measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// WrapPixels breaks text into lines no wider than maxWidth pixels.
//
// Words are packed greedily; a word that is wider than maxWidth on its own
// is emitted alone on an overflowing line and never hyphenated. Newlines in
// the input are hard breaks. A non-positive maxWidth disables wrapping.
func WrapPixels(face font.Face, text string, maxWidth int) []string {
	return wrap(text, func(line string) bool {
		return maxWidth <= 0 || Measure(face, line) <= maxWidth
	})
}

// WrapChars breaks text into lines of at most maxChars runes, on word
// boundaries, with the same overflow rule as WrapPixels.
func WrapChars(text string, maxChars int) []string {
	return wrap(text, func(line string) bool {
		return maxChars <= 0 || utf8.RuneCountInString(line) <= maxChars
	})
}

func wrap(text string, fits func(string) bool) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if fits(candidate) {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}
