package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivlev/quizreel/internal/bank"
	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/system"
)

type fakeRenderer struct {
	mu       sync.Mutex
	rendered []string
	fail     map[string]error
	running  atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeRenderer) Compose(ctx context.Context, q bank.Question, outPath string) error {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.fail[q.ID]; err != nil {
		return err
	}
	f.mu.Lock()
	f.rendered = append(f.rendered, q.ID)
	f.mu.Unlock()
	return os.WriteFile(outPath, []byte("rendered "+q.ID), 0o644)
}

func (f *fakeRenderer) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.rendered...)
	sort.Strings(out)
	return out
}

func questions(ids ...string) []bank.Question {
	qs := make([]bank.Question, len(ids))
	for i, id := range ids {
		qs[i] = bank.Question{ID: id, Prompt: "q" + id, Options: []bank.Option{{Text: "a", Correct: true}}}
	}
	return qs
}

func newTestProject(t *testing.T, r Renderer, opts Options) (*Project, *[]time.Duration) {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	p := NewProject(config.Default(), r, opts)
	p.Thermal = nil
	var slept []time.Duration
	var mu sync.Mutex
	p.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		slept = append(slept, d)
		mu.Unlock()
		return ctx.Err()
	}
	return p, &slept
}

func TestRunSkipsExistingArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	existing := map[string]string{}
	for _, id := range []string{"2", "4"} {
		path := ArtifactPath(dir, cfg.Output, id)
		content := "original " + id
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		existing[path] = content
	}

	r := &fakeRenderer{}
	p, _ := newTestProject(t, r, Options{OutputDir: dir, Workers: 2, SkipExisting: true})
	results, err := p.Run(context.Background(), questions("1", "2", "3", "4", "5"))
	if err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(r.ids()); got != "[1 3 5]" {
		t.Errorf("rendered %s, want [1 3 5]", got)
	}
	for path, want := range existing {
		b, err := os.ReadFile(path)
		if err != nil || string(b) != want {
			t.Errorf("%s changed: %q %v", path, b, err)
		}
	}
	wantStatus := []Status{StatusRendered, StatusExisting, StatusRendered, StatusExisting, StatusRendered}
	for i, res := range results {
		if res.Status != wantStatus[i] {
			t.Errorf("result %s: %v, want %v", res.ID, res.Status, wantStatus[i])
		}
	}
}

func TestRunForceOverridesSkip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	for _, id := range []string{"1", "2"} {
		os.WriteFile(ArtifactPath(dir, cfg.Output, id), []byte("old"), 0o644)
	}

	r := &fakeRenderer{}
	p, _ := newTestProject(t, r, Options{OutputDir: dir, SkipExisting: true, Force: []string{"2"}})
	if _, err := p.Run(context.Background(), questions("1", "2")); err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(r.ids()); got != "[2]" {
		t.Errorf("rendered %s, want [2]", got)
	}
}

func TestRunWithoutSkipRendersAll(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(ArtifactPath(dir, config.Default().Output, "1"), []byte("old"), 0o644)

	r := &fakeRenderer{}
	p, _ := newTestProject(t, r, Options{OutputDir: dir})
	if _, err := p.Run(context.Background(), questions("1", "2")); err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(r.ids()); got != "[1 2]" {
		t.Errorf("rendered %s", got)
	}
}

func TestRunFailureDoesNotAbortBatch(t *testing.T) {
	boom := errors.New("missing font")
	r := &fakeRenderer{fail: map[string]error{"2": boom}}
	p, _ := newTestProject(t, r, Options{Workers: 1, BatchSize: 2})

	results, err := p.Run(context.Background(), questions("1", "2", "3"))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if results[1].Status != StatusFailed || !errors.Is(results[1].Err, boom) {
		t.Errorf("result 2 = %+v", results[1])
	}
	if results[0].Status != StatusRendered || results[2].Status != StatusRendered {
		t.Errorf("other questions not rendered: %+v", results)
	}
	if _, err := os.Stat(results[1].Path); !os.IsNotExist(err) {
		t.Error("failed question must not leave an artifact")
	}
	if err := Failed(results); !errors.Is(err, boom) {
		t.Errorf("Failed() = %v", err)
	}
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	r := &fakeRenderer{delay: 20 * time.Millisecond}
	p, _ := newTestProject(t, r, Options{Workers: 2})
	if _, err := p.Run(context.Background(), questions("1", "2", "3", "4", "5", "6")); err != nil {
		t.Fatal(err)
	}
	if peak := r.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency %d, limit 2", peak)
	}

	r = &fakeRenderer{delay: 5 * time.Millisecond}
	p, _ = newTestProject(t, r, Options{Workers: 8, Sequential: true})
	p.Run(context.Background(), questions("1", "2", "3"))
	if peak := r.peak.Load(); peak != 1 {
		t.Errorf("sequential peak %d", peak)
	}
}

func TestRunCooldownBetweenBatches(t *testing.T) {
	r := &fakeRenderer{}
	p, slept := newTestProject(t, r, Options{BatchSize: 2, Cooldown: 3 * time.Second})
	if _, err := p.Run(context.Background(), questions("1", "2", "3", "4", "5")); err != nil {
		t.Fatal(err)
	}
	// Three batches, two gaps.
	if len(*slept) != 2 || (*slept)[0] != 3*time.Second {
		t.Errorf("sleeps = %v", *slept)
	}
}

func TestRunThermalPauses(t *testing.T) {
	r := &fakeRenderer{}
	p, slept := newTestProject(t, r, Options{BatchSize: 1})
	p.Config.Thermal.CoolSeconds = 7
	p.Config.Thermal.MaxCoolRounds = 3

	var calls int
	p.Thermal = func(context.Context) (system.ThermalReading, error) {
		calls++
		if calls == 1 {
			return system.ThermalReading{MaxTempC: 95}, nil
		}
		return system.ThermalReading{MaxTempC: 50}, nil
	}
	if _, err := p.Run(context.Background(), questions("1", "2")); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 1 || (*slept)[0] != 7*time.Second {
		t.Errorf("sleeps = %v", *slept)
	}

	// A machine that never cools down is bounded by MaxCoolRounds.
	*slept = nil
	p.Thermal = func(context.Context) (system.ThermalReading, error) {
		return system.ThermalReading{LoadPerCPU: 10}, nil
	}
	os.RemoveAll(p.Options.OutputDir)
	if _, err := p.Run(context.Background(), questions("1", "2")); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 3 {
		t.Errorf("expected 3 cooling rounds, got %v", *slept)
	}
}

func TestRunPauseControl(t *testing.T) {
	r := &fakeRenderer{}
	p, slept := newTestProject(t, r, Options{Workers: 1})
	p.Config.Thermal.PauseSeconds = 2

	if !p.Pause.Toggle() {
		t.Fatal("first toggle should pause")
	}
	if _, err := p.Run(context.Background(), questions("1", "2")); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 2 || (*slept)[0] != 2*time.Second {
		t.Errorf("paused run sleeps = %v", *slept)
	}

	if p.Pause.Toggle() {
		t.Fatal("second toggle should resume")
	}
	*slept = nil
	p.Options.OutputDir = t.TempDir()
	p.Run(context.Background(), questions("1"))
	if len(*slept) != 0 {
		t.Errorf("resumed run slept %v", *slept)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRenderer{}
	p, _ := newTestProject(t, r, Options{Workers: 1})

	results, err := p.Run(ctx, questions("1", "2"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(r.ids()) != 0 {
		t.Errorf("rendered after cancel: %v", r.ids())
	}
	for _, res := range results {
		if res.Status != StatusCancelled || res.OK() {
			t.Errorf("result %s = %v", res.ID, res.Status)
		}
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep ignored cancellation")
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Error(err)
	}
}

func TestArtifactsSorted(t *testing.T) {
	out := config.Default().Output
	dir := t.TempDir()
	results := []Result{
		{ID: "10", Path: ArtifactPath(dir, out, "10"), Status: StatusRendered},
		{ID: "2", Path: ArtifactPath(dir, out, "2"), Status: StatusExisting},
		{ID: "3", Path: ArtifactPath(dir, out, "3"), Status: StatusFailed},
	}
	got := Artifacts(results, out)
	want := []string{filepath.Join(dir, "quiz_2.mp4"), filepath.Join(dir, "quiz_10.mp4")}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Artifacts = %v, want %v", got, want)
	}
}
