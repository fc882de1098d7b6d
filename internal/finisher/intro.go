package finisher

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/layout"
	"github.com/ivlev/quizreel/internal/media"
	"github.com/ivlev/quizreel/internal/renderer"
	"github.com/ivlev/quizreel/internal/source"
	"github.com/ivlev/quizreel/internal/video"
)

const qrMargin = 40

// Countdown is the intro card sequence: one number per second, counting
// down to 1, over a background that may carry a QR code.
type Countdown struct {
	base    *image.RGBA
	numbers []renderer.Element
	fps     int
}

// BuildCountdown renders the intro cards with the bold font.
func BuildCountdown(cfg *config.Config, bold *layout.Font) (*Countdown, error) {
	face, err := bold.Face(cfg.Intro.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	base, err := source.Backdrop(cfg.Width, cfg.Height, cfg.Palette.Background.RGBA(), cfg.Backdrop)
	if err != nil {
		return nil, fmt.Errorf("backdrop: %w", err)
	}
	if cfg.Intro.QRURL != "" {
		if err := drawQR(base, cfg); err != nil {
			return nil, err
		}
	}

	c := &Countdown{base: base, fps: cfg.FPS}
	st := layout.Style{Color: cfg.Palette.Question.RGBA(), Align: layout.AlignCenter}
	for n := cfg.Intro.Seconds; n >= 1; n-- {
		img := layout.Render(face, []string{strconv.Itoa(n)}, st)
		at := image.Pt((cfg.Width-img.Bounds().Dx())/2, (cfg.Height-img.Bounds().Dy())/2)
		c.numbers = append(c.numbers, renderer.Element{
			Image:    img,
			Start:    float64(cfg.Intro.Seconds - n),
			Duration: 1,
			Position: renderer.Static(at),
		})
	}
	return c, nil
}

func drawQR(dst *image.RGBA, cfg *config.Config) error {
	q, err := qrcode.New(cfg.Intro.QRURL, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	q.BackgroundColor = cfg.Palette.Background.RGBA()
	q.ForegroundColor = cfg.Palette.Question.RGBA()
	img := q.Image(cfg.Intro.QRSize)

	b := img.Bounds()
	at := image.Pt(cfg.Width-b.Dx()-qrMargin, cfg.Height-b.Dy()-qrMargin)
	draw.Draw(dst, b.Sub(b.Min).Add(at), img, b.Min, draw.Src)
	return nil
}

// Seconds is the clip length.
func (c *Countdown) Seconds() float64 { return float64(len(c.numbers)) }

func (c *Countdown) RenderFrame(dst *image.RGBA, t float64) {
	copy(dst.Pix, c.base.Pix)
	for i := range c.numbers {
		c.numbers[i].Draw(dst, t)
	}
}

func (c *Countdown) WriteFrames(ctx context.Context, w io.Writer, n int) error {
	frame := image.NewRGBA(c.base.Rect)
	for i := 0; i < n; i++ {
		if i%c.fps == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Кадр меняется раз в секунду.
			c.RenderFrame(frame, float64(i)/float64(c.fps))
		}
		if err := video.WriteRawRGBA(w, frame); err != nil {
			return err
		}
	}
	return nil
}

// EnsureIntro returns the intro clip in dir, rendering it only when it does
// not exist yet.
func (f *Finisher) EnsureIntro(ctx context.Context, dir string) (string, error) {
	path := filepath.Join(dir, f.cfg.Output.IntroName)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("[*] Интро уже существует, пропускаем: %s\n", path)
		return path, nil
	}

	fmt.Println("[*] Рендеринг интро с обратным отсчётом...")
	bold, err := layout.LoadFont(f.cfg.Fonts.Bold)
	if err != nil {
		return "", err
	}
	countdown, err := BuildCountdown(f.cfg, bold)
	if err != nil {
		return "", err
	}

	audio, err := media.Open(ctx, f.cfg, f.prober)
	if err != nil {
		return "", fmt.Errorf("intro audio: %w", err)
	}
	defer audio.Close()

	spec := video.StreamSpec{
		Params: f.cfg.EncodeParams(countdown.Seconds()),
		Audio:  audio.IntroTracks(),
	}
	err = video.EncodeToFile(ctx, f.enc, spec, path, func(w io.Writer) error {
		return countdown.WriteFrames(ctx, w, spec.FrameCount())
	})
	if err != nil {
		return "", fmt.Errorf("intro: %w", err)
	}
	fmt.Printf("[+++] Интро сохранено: %s\n", path)
	return path, nil
}
