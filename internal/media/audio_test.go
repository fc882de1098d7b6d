package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/quizreel/internal/config"
)

type fakeProber map[string]float64

func (f fakeProber) ProbeDuration(_ context.Context, path string) (float64, error) {
	d, ok := f[path]
	if !ok {
		return 0, errors.New("probe failed")
	}
	return d, nil
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func testConfig(t *testing.T) (*config.Config, fakeProber) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Audio.Tick = writeFile(t, dir, "tick.mp3")
	cfg.Audio.Ding = writeFile(t, dir, "ding.mp3")
	return cfg, fakeProber{cfg.Audio.Tick: 10, cfg.Audio.Ding: 1.2}
}

func TestQuestionTracks(t *testing.T) {
	cfg, prober := testConfig(t)
	res, err := Open(context.Background(), cfg, prober)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer res.Close()

	tracks := res.QuestionTracks()
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	tick, ding := tracks[0], tracks[1]
	if tick.Offset != 1 || tick.Trim != 13 {
		t.Errorf("tick = %+v", tick)
	}
	if ding.Offset != 11 || ding.Volume != 0.05 {
		t.Errorf("ding should start at the reveal boundary: %+v", ding)
	}
	if res.Tick.Duration != 10 {
		t.Errorf("tick duration = %v", res.Tick.Duration)
	}
}

func TestTracksCarryOpenFiles(t *testing.T) {
	cfg, prober := testConfig(t)
	res, err := Open(context.Background(), cfg, prober)
	if err != nil {
		t.Fatal(err)
	}

	tracks := res.QuestionTracks()
	for i, want := range []string{cfg.Audio.Tick, cfg.Audio.Ding} {
		if tracks[i].File == nil || tracks[i].File.Name() != want {
			t.Fatalf("track %d file = %v, want open %s", i, tracks[i].File, want)
		}
	}
	if intro := res.IntroTracks(); intro[0].File != tracks[0].File {
		t.Error("intro tick should reuse the open tick file")
	}

	tick := tracks[0].File
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := tick.Stat(); err == nil {
		t.Error("Close should release the tick descriptor")
	}
	if after := res.QuestionTracks(); after[0].File != nil {
		t.Error("closed resources must not hand out descriptors")
	}
}

func TestIntroTracks(t *testing.T) {
	cfg, prober := testConfig(t)
	res, err := Open(context.Background(), cfg, prober)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	tracks := res.IntroTracks()
	if len(tracks) != 1 || tracks[0].Trim != 10 || tracks[0].Offset != 0 {
		t.Errorf("intro tracks = %+v", tracks)
	}
}

func TestOpenErrors(t *testing.T) {
	cfg, prober := testConfig(t)

	missing := *cfg
	missing.Audio.Ding = filepath.Join(t.TempDir(), "nope.mp3")
	if _, err := Open(context.Background(), &missing, prober); err == nil {
		t.Error("missing ding should fail")
	}

	prober[cfg.Audio.Tick] = 0
	if _, err := Open(context.Background(), cfg, prober); !errors.Is(err, ErrCorruptAudio) {
		t.Errorf("zero duration: err = %v, want ErrCorruptAudio", err)
	}
}

func TestOpenWithoutSounds(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Tick, cfg.Audio.Ding = "", ""
	res, err := Open(context.Background(), cfg, fakeProber{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.QuestionTracks()) != 0 || res.IntroTracks() != nil {
		t.Error("no tracks expected")
	}
	if err := res.Close(); err != nil {
		t.Error(err)
	}
	if err := res.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
