// Package composer turns one question into a finished video clip.
package composer

import (
	"context"
	"fmt"
	"io"

	"github.com/ivlev/quizreel/internal/bank"
	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/media"
	"github.com/ivlev/quizreel/internal/system"
	"github.com/ivlev/quizreel/internal/video"
)

// Composer renders question clips. It is safe for concurrent use: every
// Compose call opens its own fonts, audio and ffmpeg process.
type Composer struct {
	cfg    *config.Config
	enc    video.Encoder
	prober video.Prober
	frames *system.ImagePool
}

func New(cfg *config.Config, enc video.Encoder, prober video.Prober) *Composer {
	return &Composer{
		cfg:    cfg,
		enc:    enc,
		prober: prober,
		frames: system.NewImagePool(),
	}
}

// Compose renders q to outPath. Nothing is left at outPath on failure.
func (c *Composer) Compose(ctx context.Context, q bank.Question, outPath string) error {
	fonts, err := LoadFonts(c.cfg.Fonts)
	if err != nil {
		return err
	}

	audio, err := media.Open(ctx, c.cfg, c.prober)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer audio.Close()

	scene, err := BuildScene(c.cfg, fonts, q)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	spec := video.StreamSpec{
		Params: c.cfg.EncodeParams(scene.Timeline.Total()),
		Audio:  audio.QuestionTracks(),
	}
	err = video.EncodeToFile(ctx, c.enc, spec, outPath, func(w io.Writer) error {
		return scene.WriteFrames(ctx, w, spec.FrameCount(), c.cfg.FPS, c.frames)
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
