package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/quizreel/internal/bank"
	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/system"
)

// Renderer produces the artifact for one question at outPath.
type Renderer interface {
	Compose(ctx context.Context, q bank.Question, outPath string) error
}

// ThermalProbe reports current machine load; see system.ReadThermal.
type ThermalProbe func(ctx context.Context) (system.ThermalReading, error)

type Options struct {
	OutputDir    string
	Workers      int
	BatchSize    int
	Cooldown     time.Duration
	Sequential   bool
	SkipExisting bool
	// Force lists question IDs that are rendered even when their artifact
	// already exists.
	Force []string

	ShowStats    bool
	StatsLog     string
	BuildVersion string
}

type Status int

const (
	StatusRendered Status = iota
	StatusExisting
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRendered:
		return "rendered"
	case StatusExisting:
		return "existing"
	case StatusFailed:
		return "failed"
	}
	return "cancelled"
}

type Result struct {
	ID      string
	Path    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// OK reports whether the artifact exists after the run.
func (r Result) OK() bool {
	return r.Status == StatusRendered || r.Status == StatusExisting
}

type Project struct {
	// RunID tags the performance report and benchmark.log line.
	RunID    string
	Config   *config.Config
	Renderer Renderer
	Options  Options
	Pause    *PauseControl
	Thermal  ThermalProbe

	sleep func(ctx context.Context, d time.Duration) error
}

func NewProject(cfg *config.Config, r Renderer, opts Options) *Project {
	return &Project{
		RunID:    uuid.NewString(),
		Config:   cfg,
		Renderer: r,
		Options:  opts,
		Pause:    &PauseControl{},
		Thermal:  system.ReadThermal,
		sleep:    Sleep,
	}
}

// Run renders every question whose artifact is missing (or forced). A
// failing question is logged and reported in its Result; only cancellation
// stops the run early. Results follow the order of questions.
func (p *Project) Run(ctx context.Context, questions []bank.Question) ([]Result, error) {
	startTime := time.Now()
	opts := p.Options

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	force := make(map[string]bool, len(opts.Force))
	for _, id := range opts.Force {
		force[id] = true
	}

	results := make([]Result, len(questions))
	var pending []int
	for i, q := range questions {
		path := ArtifactPath(opts.OutputDir, p.Config.Output, q.ID)
		// Статус по умолчанию: до задачи дело не дошло.
		results[i] = Result{ID: q.ID, Path: path, Status: StatusCancelled}
		if opts.SkipExisting && !force[q.ID] && fileExists(path) {
			results[i].Status = StatusExisting
			continue
		}
		pending = append(pending, i)
	}

	workers := p.workers()
	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > len(pending) {
		batchSize = len(pending)
	}

	fmt.Println("--- [PROJECT: QUIZ RENDER] ---")
	fmt.Printf("[*] Вопросов: %d | Уже готово: %d | К рендерингу: %d\n", len(questions), len(questions)-len(pending), len(pending))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Воркеров: %d | Пачка: %d\n", p.Config.Width, p.Config.Height, p.Config.FPS, workers, batchSize)
	fmt.Println("-----------------------------")

	var done atomic.Int32
	var runErr error
	for b := 0; b*batchSize < len(pending); b++ {
		if b > 0 {
			if err := p.coolDown(ctx); err != nil {
				runErr = err
				break
			}
		}
		end := min((b+1)*batchSize, len(pending))
		batch := pending[b*batchSize : end]

		var g errgroup.Group
		g.SetLimit(workers)
		for _, i := range batch {
			i := i
			g.Go(func() error {
				res := &results[i]
				if err := p.checkPause(ctx); err != nil {
					res.Status, res.Err = StatusCancelled, err
					return err
				}

				start := time.Now()
				err := p.Renderer.Compose(ctx, questions[i], res.Path)
				res.Elapsed = time.Since(start)
				switch {
				case err == nil:
					res.Status = StatusRendered
					fmt.Printf("[>] Ready: %d/%d (quiz %s, %.1fs)\n", done.Add(1), len(pending), res.ID, res.Elapsed.Seconds())
				case ctx.Err() != nil:
					res.Status, res.Err = StatusCancelled, ctx.Err()
					return ctx.Err()
				default:
					res.Status, res.Err = StatusFailed, err
					log.Printf("[!] Error rendering question %s: %v", res.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			runErr = err
			break
		}
	}

	if runErr != nil {
		for _, i := range pending {
			if results[i].Status == StatusCancelled && results[i].Err == nil {
				results[i].Err = runErr
			}
		}
	}

	if opts.ShowStats {
		p.report(results, time.Since(startTime))
	}
	return results, runErr
}

func (p *Project) workers() int {
	if p.Options.Sequential {
		return 1
	}
	if p.Options.Workers > 0 {
		return p.Options.Workers
	}
	return runtime.NumCPU()
}

// checkPause inserts the configured pause before a unit of work when the
// operator asked for one.
func (p *Project) checkPause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Pause == nil || !p.Pause.Paused() {
		return nil
	}
	d := seconds(p.Config.Thermal.PauseSeconds)
	fmt.Printf("[*] Пауза по сигналу: %s\n", d)
	return p.sleep(ctx, d)
}

// coolDown runs between batches: the fixed cooldown first, then extra
// rounds while the machine stays hot.
func (p *Project) coolDown(ctx context.Context) error {
	if d := p.Options.Cooldown; d > 0 {
		fmt.Printf("[*] Охлаждение между пачками: %s\n", d)
		if err := p.sleep(ctx, d); err != nil {
			return err
		}
	}
	if p.Thermal == nil {
		return nil
	}

	th := p.Config.Thermal
	for round := 1; round <= th.MaxCoolRounds; round++ {
		reading, err := p.Thermal(ctx)
		if err != nil {
			log.Printf("[!] Не удалось прочитать датчики: %v", err)
			return nil
		}
		if !reading.Hot(th.MaxTempC, th.MaxLoad) {
			return nil
		}
		d := seconds(th.CoolSeconds)
		fmt.Printf("[!] Перегрев (%s): дополнительная пауза %s (%d/%d)\n", reading, d, round, th.MaxCoolRounds)
		if err := p.sleep(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) report(results []Result, total time.Duration) {
	var rendered, existing, failed int
	var renderTime time.Duration
	for _, r := range results {
		switch r.Status {
		case StatusRendered:
			rendered++
			renderTime += r.Elapsed
		case StatusExisting:
			existing++
		case StatusFailed:
			failed++
		}
	}
	avg := 0.0
	if rendered > 0 {
		avg = renderTime.Seconds() / float64(rendered)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Run: %s\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendered: %d | Existing: %d | Failed: %d\n"+
			"Avg per question: %.2fs\n"+
			"----------------------------\n",
		p.RunID, p.Options.BuildVersion, total.Seconds(), rendered, existing, failed, avg,
	)
	fmt.Print(report)

	if p.Options.StatsLog == "" {
		return
	}
	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Run: %s | Build: %s | Output: %s | Rendered: %d | Failed: %d | Total: %.2fs | Avg: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.RunID,
		p.Options.BuildVersion,
		filepath.Base(p.Options.OutputDir),
		rendered,
		failed,
		total.Seconds(),
		avg,
	)
	f, err := os.OpenFile(p.Options.StatsLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать %s: %v\n", p.Options.StatsLog, err)
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Failed collects the errors of failed results.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("question %s: %w", r.ID, r.Err))
		}
	}
	return errors.Join(errs...)
}
