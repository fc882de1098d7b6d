package composer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/font"

	"github.com/ivlev/quizreel/internal/bank"
	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/layout"
	"github.com/ivlev/quizreel/internal/renderer"
	"github.com/ivlev/quizreel/internal/source"
	"github.com/ivlev/quizreel/internal/system"
	"github.com/ivlev/quizreel/internal/video"
)

// ErrLayoutOverflow means the option grid runs past the bottom of the canvas.
var ErrLayoutOverflow = errors.New("question does not fit the canvas")

// Fonts are the two weights of the template.
type Fonts struct {
	Regular *layout.Font
	Bold    *layout.Font
}

func LoadFonts(f config.Fonts) (Fonts, error) {
	regular, err := layout.LoadFont(f.Regular)
	if err != nil {
		return Fonts{}, err
	}
	bold, err := layout.LoadFont(f.Bold)
	if err != nil {
		return Fonts{}, err
	}
	return Fonts{Regular: regular, Bold: bold}, nil
}

// Scene holds everything needed to draw any frame of one question clip.
// Static layers are pre-composited; only the sliding options and the
// progress bar are drawn per frame.
type Scene struct {
	Timeline Timeline

	// Options are the guess-phase slide-in elements in declaration order.
	Options []renderer.Element
	// Slides are the animation parameters behind Options.
	Slides []renderer.SlideIn
	// Reveal holds the static reveal-phase option elements.
	Reveal       []renderer.Element
	CorrectIndex int
	// QuestionHeight is the rendered height of the wrapped question.
	QuestionHeight int

	Bar renderer.ProgressBar

	lead      *image.RGBA
	guessBase *image.RGBA
	revealed  *image.RGBA

	barBG, barFG color.Color
}

// BuildScene lays out the question and its options on the template.
func BuildScene(cfg *config.Config, fonts Fonts, q bank.Question) (*Scene, error) {
	lay, pal := cfg.Layout, cfg.Palette
	if len(lay.OptionColumns) == 0 {
		return nil, fmt.Errorf("no option columns configured")
	}

	qFace, err := fonts.Regular.Face(lay.QuestionFontSize)
	if err != nil {
		return nil, err
	}
	defer qFace.Close()
	optFace, err := fonts.Regular.Face(lay.OptionFontSize)
	if err != nil {
		return nil, err
	}
	defer optFace.Close()
	correctFace, err := fonts.Bold.Face(lay.CorrectFontSize)
	if err != nil {
		return nil, err
	}
	defer correctFace.Close()

	tl := NewTimeline(cfg.Timing)
	s := &Scene{
		Timeline:     tl,
		CorrectIndex: q.CorrectIndex(),
		Bar:          renderer.ProgressBar{Width: cfg.Width, Height: lay.BarHeight, Total: tl.Guess},
		barBG:        pal.BarBG.RGBA(),
		barFG:        pal.BarFG.RGBA(),
	}

	s.lead, err = source.Backdrop(cfg.Width, cfg.Height, pal.Background.RGBA(), cfg.Backdrop)
	if err != nil {
		return nil, fmt.Errorf("backdrop: %w", err)
	}

	question := &renderer.Element{
		Image: layout.Render(qFace,
			layout.WrapPixels(qFace, q.Title(), lay.QuestionWidth),
			layout.Style{Color: pal.Question.RGBA(), LineSpacing: lay.LineSpacing}),
		Duration: tl.Total(),
		Position: renderer.Static(image.Pt(lay.QuestionX, lay.QuestionTop)),
	}
	s.QuestionHeight = question.Image.Bounds().Dy()

	s.guessBase = cloneRGBA(s.lead)
	question.Draw(s.guessBase, 0)

	startY := lay.QuestionTop + s.QuestionHeight + lay.OptionTopGap
	cols := len(lay.OptionColumns)
	optStyle := layout.Style{Color: pal.Option.RGBA(), LineSpacing: lay.LineSpacing}
	correctStyle := layout.Style{Color: pal.Correct.RGBA(), LineSpacing: lay.LineSpacing}

	for idx, opt := range q.Options {
		row, col := idx/cols, idx%cols
		rest := image.Pt(lay.OptionColumns[col], startY+row*lay.OptionRowGap)
		label := fmt.Sprintf("%d. %s", idx+1, opt.Text)

		slide := renderer.SlideIn{
			Index:    idx,
			Rest:     rest,
			Delay:    cfg.Timing.SlideDelay,
			Duration: cfg.Timing.SlideDur,
			Offset:   lay.SlideOffset,
		}
		start, dur := slide.Window(tl.Guess)
		s.Slides = append(s.Slides, slide)
		s.Options = append(s.Options, renderer.Element{
			Image:    optionImage(optFace, label, lay.OptionWrapChars, optStyle),
			Start:    start,
			Duration: dur,
			Position: slide.At,
		})

		face, st := optFace, optStyle
		if opt.Correct {
			face, st = correctFace, correctStyle
		}
		s.Reveal = append(s.Reveal, renderer.Element{
			Image:    optionImage(face, label, lay.OptionWrapChars, st),
			Duration: tl.Reveal,
			Position: renderer.Static(rest),
		})
	}

	if bottom := s.optionsBottom(); bottom > cfg.Height {
		return nil, fmt.Errorf("%w: options end at y=%d, canvas height is %d",
			ErrLayoutOverflow, bottom, cfg.Height)
	}

	s.revealed = cloneRGBA(s.guessBase)
	for i := range s.Reveal {
		s.Reveal[i].Draw(s.revealed, 0)
	}
	return s, nil
}

// optionsBottom is the lowest pixel row any option reaches in either phase.
func (s *Scene) optionsBottom() int {
	bottom := 0
	for i, slide := range s.Slides {
		h := max(s.Options[i].Image.Bounds().Dy(), s.Reveal[i].Image.Bounds().Dy())
		bottom = max(bottom, slide.Rest.Y+h)
	}
	return bottom
}

func optionImage(face font.Face, label string, wrapChars int, st layout.Style) *image.RGBA {
	return layout.Render(face, layout.WrapChars(label, wrapChars), st)
}

// RenderFrame draws the clip at time t into dst, which must match the
// canvas size.
func (s *Scene) RenderFrame(dst *image.RGBA, t float64) {
	phase, local := s.Timeline.PhaseAt(t)
	switch phase {
	case LeadIn:
		copy(dst.Pix, s.lead.Pix)
	case Guess:
		copy(dst.Pix, s.guessBase.Pix)
		for i := range s.Options {
			s.Options[i].Draw(dst, local)
		}
		s.Bar.Draw(dst, local, s.barBG, s.barFG)
	default:
		copy(dst.Pix, s.revealed.Pix)
	}
}

// WriteFrames renders n frames at fps and writes them as raw RGBA.
func (s *Scene) WriteFrames(ctx context.Context, w io.Writer, n, fps int, pool *system.ImagePool) error {
	frame := pool.Get(s.lead.Rect)
	defer pool.Put(frame)

	for i := 0; i < n; i++ {
		if i%fps == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s.RenderFrame(frame, float64(i)/float64(fps))
		if err := video.WriteRawRGBA(w, frame); err != nil {
			return err
		}
	}
	return nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
