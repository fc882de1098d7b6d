// Package media owns the audio sources used by one render task.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/video"
)

var ErrCorruptAudio = errors.New("audio source has no duration")

// Source is an opened, probed audio file.
type Source struct {
	Path     string
	Duration float64
	f        *os.File
}

// AudioResources holds the tick and ding sources of one task. It is never
// shared between tasks; Close releases it and is safe to call more than once.
type AudioResources struct {
	Tick *Source
	Ding *Source

	cfg *config.Config
}

// Open checks and probes the configured sounds. An empty path disables that
// sound; a configured path that is missing or unreadable is an error.
func Open(ctx context.Context, cfg *config.Config, prober video.Prober) (*AudioResources, error) {
	r := &AudioResources{cfg: cfg}

	var err error
	if r.Tick, err = openSource(ctx, cfg.Audio.Tick, prober); err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	if r.Ding, err = openSource(ctx, cfg.Audio.Ding, prober); err != nil {
		r.Close()
		return nil, fmt.Errorf("ding: %w", err)
	}
	return r, nil
}

func openSource(ctx context.Context, path string, prober video.Prober) (*Source, error) {
	if path == "" {
		return nil, nil
	}
	// Этот же дескриптор получает ffmpeg (см. video.AudioTrack.File).
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	d, err := prober.ProbeDuration(ctx, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	if d <= 0 {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrCorruptAudio)
	}
	return &Source{Path: path, Duration: d, f: f}, nil
}

func (r *AudioResources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, s := range []*Source{r.Tick, r.Ding} {
		if s != nil && s.f != nil {
			errs = append(errs, s.f.Close())
			s.f = nil
		}
	}
	return errors.Join(errs...)
}

// QuestionTracks places the tick under the guess and reveal phases and the
// ding at the guess/reveal boundary.
func (r *AudioResources) QuestionTracks() []video.AudioTrack {
	t := r.cfg.Timing
	var tracks []video.AudioTrack
	if r.Tick != nil {
		tracks = append(tracks, video.AudioTrack{
			Path:   r.Tick.Path,
			File:   r.Tick.f,
			Offset: t.LeadIn,
			Trim:   t.Guess + t.Reveal,
		})
	}
	if r.Ding != nil {
		tracks = append(tracks, video.AudioTrack{
			Path:   r.Ding.Path,
			File:   r.Ding.f,
			Offset: t.LeadIn + t.Guess,
			Trim:   t.Reveal,
			Volume: r.cfg.Audio.DingVolume,
		})
	}
	return tracks
}

// IntroTracks plays the tick under the countdown.
func (r *AudioResources) IntroTracks() []video.AudioTrack {
	if r.Tick == nil {
		return nil
	}
	return []video.AudioTrack{{
		Path: r.Tick.Path,
		File: r.Tick.f,
		Trim: float64(r.cfg.Intro.Seconds),
	}}
}
