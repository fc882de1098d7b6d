package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/quizreel/internal/bank"
	"github.com/ivlev/quizreel/internal/composer"
	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/engine"
	"github.com/ivlev/quizreel/internal/finisher"
	"github.com/ivlev/quizreel/internal/publish"
	"github.com/ivlev/quizreel/internal/system"
	"github.com/ivlev/quizreel/internal/video"
)

type renderOptions struct {
	bank          string
	output        string
	final         string
	jobs          int
	batchSize     int
	cooldown      float64
	sequential    bool
	skipExisting  bool
	force         []string
	skipRendering bool
	nice          int
	publish       string
	region        string
	stats         bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every question, then join them with the intro into one video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRender(runCtx, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.bank, "bank", "data/questions.json", "Question bank (.json, .yaml or .yml)")
	f.StringVarP(&opts.output, "output", "o", "output", "Output directory for videos")
	f.StringVarP(&opts.final, "final", "f", "quiz_final.mp4", "Final output video filename")
	f.IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "Number of questions rendered in parallel")
	f.IntVar(&opts.batchSize, "batch-size", 0, "Questions per batch (0 = one batch)")
	f.Float64Var(&opts.cooldown, "cooldown", 0, "Seconds to pause between batches")
	f.BoolVar(&opts.sequential, "sequential", false, "Render one question at a time")
	f.BoolVar(&opts.skipExisting, "skip-existing", true, "Do not re-render questions whose video already exists")
	f.StringSliceVar(&opts.force, "force", nil, "Question IDs to re-render even if their video exists")
	f.BoolVar(&opts.skipRendering, "skip-rendering", false, "Only concatenate videos already in the output directory")
	f.IntVar(&opts.nice, "nice", 0, "Lower process priority to this niceness (0 = unchanged)")
	f.StringVar(&opts.publish, "publish", "", "Upload the final video to s3://bucket/prefix")
	f.StringVar(&opts.region, "region", "", "AWS region for --publish")
	f.BoolVar(&opts.stats, "stats", false, "Print a performance report and append it to benchmark.log")

	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, opts *renderOptions) error {
	// Цель публикации проверяем до долгого рендеринга.
	var target publish.Target
	if opts.publish != "" {
		t, err := publish.ParseTarget(opts.publish)
		if err != nil {
			return err
		}
		target = t
	}

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()
	if err := system.LowerPriority(opts.nice); err != nil {
		log.Printf("[!] Не удалось понизить приоритет: %v", err)
	}

	lock, err := system.AcquireRunLock(opts.output)
	if err != nil {
		return err
	}
	defer lock.Release()

	if strings.EqualFold(cfg.Encoding.Encoder, "auto") {
		cfg.Encoding.Encoder = system.GetBestH264Encoder(ctx, cfg.Tools.FFmpeg)
		if cfg.Encoding.Encoder != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.Encoding.Encoder)
		}
	}

	enc := video.NewFFmpegEncoder(cfg.Tools)

	var clips []string
	if !opts.skipRendering {
		questions, err := bank.Load(opts.bank)
		if err != nil {
			return err
		}
		if err := bank.Validate(questions, cfg.Layout.MaxOptions); err != nil {
			return fmt.Errorf("question bank %s: %w", opts.bank, err)
		}

		project := engine.NewProject(cfg, composer.New(cfg, enc, enc), engine.Options{
			OutputDir:    opts.output,
			Workers:      opts.jobs,
			BatchSize:    opts.batchSize,
			Cooldown:     time.Duration(opts.cooldown * float64(time.Second)),
			Sequential:   opts.sequential,
			SkipExisting: opts.skipExisting,
			Force:        opts.force,
			ShowStats:    opts.stats,
			StatsLog:     statsLog(opts.stats),
			BuildVersion: buildVersion,
		})
		stopWatch := watchPauseSignal(project.Pause, cfg.Thermal.PauseSeconds)
		results, err := project.Run(ctx, questions)
		stopWatch()
		printSummary(results)
		if err != nil {
			return err
		}
		if failed := engine.Failed(results); failed != nil {
			log.Printf("[!] Часть вопросов не отрендерена, они не попадут в итоговое видео:\n%v", failed)
		}
		clips = engine.Artifacts(results, cfg.Output)
	} else {
		fmt.Println("[*] Поиск готовых видео вопросов...")
		clips, err = engine.Discover(opts.output, cfg.Output, opts.final)
		if err != nil {
			return fmt.Errorf("discover videos: %w", err)
		}
	}
	if len(clips) == 0 {
		return fmt.Errorf("%w in %s", finisher.ErrNoClips, opts.output)
	}

	final, err := finisher.New(cfg, enc, enc, enc).Finish(ctx, opts.output, opts.final, clips)
	if err != nil {
		return err
	}

	if opts.publish != "" {
		pub, err := publish.NewS3(ctx, opts.region)
		if err != nil {
			return err
		}
		url, err := pub.Upload(ctx, target, final)
		if err != nil {
			return err
		}
		fmt.Printf("[+++] Опубликовано: %s\n", url)
	}
	return nil
}

func statsLog(enabled bool) string {
	if !enabled {
		return ""
	}
	return "benchmark.log"
}
