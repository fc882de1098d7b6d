// Package source loads the still images placed behind every frame.
package source

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Decode reads a PNG or JPEG file.
func Decode(path string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
	default:
		return nil, fmt.Errorf("unsupported backdrop %s (use .png or .jpg)", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Backdrop returns a width x height frame filled with bg. When path is set
// the image is scaled to cover the frame and centred; overflow is cropped.
func Backdrop(width, height int, bg color.Color, path string) (*image.RGBA, error) {
	canvas := image.Rect(0, 0, width, height)
	dst := image.NewRGBA(canvas)
	xdraw.Draw(dst, canvas, image.NewUniform(bg), image.Point{}, xdraw.Src)
	if path == "" {
		return dst, nil
	}

	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	xdraw.CatmullRom.Scale(dst, Cover(canvas, img.Bounds().Size()), img, img.Bounds(), xdraw.Over, nil)
	return dst, nil
}

// Cover is the rectangle, centred on canvas, that an image of size src
// occupies when scaled uniformly to fill the whole canvas.
func Cover(canvas image.Rectangle, src image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return canvas
	}
	cw, ch := canvas.Dx(), canvas.Dy()
	scale := max(float64(cw)/float64(src.X), float64(ch)/float64(src.Y))
	w := int(float64(src.X)*scale + 0.5)
	h := int(float64(src.Y)*scale + 0.5)
	at := canvas.Min.Add(image.Pt((cw-w)/2, (ch-h)/2))
	return image.Rectangle{Min: at, Max: at.Add(image.Pt(w, h))}
}
