// Package finisher assembles the final video: intro clip, concat manifest
// and the lossless join.
package finisher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/video"
)

var ErrNoClips = errors.New("no quiz videos to concatenate")

// Joiner concatenates the clips of a manifest without re-encoding.
type Joiner interface {
	Concatenate(ctx context.Context, manifest, finalPath string) error
}

type Finisher struct {
	cfg    *config.Config
	enc    video.Encoder
	prober video.Prober
	joiner Joiner
}

func New(cfg *config.Config, enc video.Encoder, prober video.Prober, joiner Joiner) *Finisher {
	return &Finisher{cfg: cfg, enc: enc, prober: prober, joiner: joiner}
}

// WriteManifest lists the intro followed by clips, in that order.
func (f *Finisher) WriteManifest(dir, intro string, clips []string) (string, error) {
	path := filepath.Join(dir, f.cfg.Output.ManifestName)
	all := append([]string{intro}, clips...)
	if err := video.WriteConcatList(path, all); err != nil {
		return "", err
	}
	return path, nil
}

// Finish builds (or reuses) the intro, writes the manifest and joins
// everything into final. clips must already be in playback order. A
// relative final is placed inside dir.
func (f *Finisher) Finish(ctx context.Context, dir, final string, clips []string) (string, error) {
	if len(clips) == 0 {
		return "", ErrNoClips
	}

	intro, err := f.EnsureIntro(ctx, dir)
	if err != nil {
		return "", err
	}
	manifest, err := f.WriteManifest(dir, intro, clips)
	if err != nil {
		return "", err
	}

	finalPath := final
	if !filepath.IsAbs(finalPath) {
		finalPath = filepath.Join(dir, final)
	}
	fmt.Printf("[*] Сборка финального видео: %d клипов -> %s\n", len(clips)+1, finalPath)
	if err := f.joiner.Concatenate(ctx, manifest, finalPath); err != nil {
		return "", fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	fmt.Printf("[+++] Успех! Видео сохранено: %s\n", finalPath)
	return finalPath, nil
}
