package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/tickecs/ecs"
	"github.com/plus3/tickecs/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	duration       time.Duration
	entityCount    int
	systemCount    int
	workers        int
	seed           uint64
	writeRatio     float64
	churn          float64
	dumpSchedule   bool
	profileMode    string
	gcPauseMetrics bool
}

func main() {
	var opts options
	flag.DurationVar(&opts.duration, "duration", 10*time.Second, "The total duration the test should run for.")
	flag.IntVar(&opts.entityCount, "entities", 10000, "The initial number of entities to create.")
	flag.IntVar(&opts.systemCount, "systems", 50, "The number of generated systems.")
	flag.IntVar(&opts.workers, "workers", -1, "Systems of one batch running at once. Negative keeps ECS_WORKERS.")
	flag.Uint64Var(&opts.seed, "seed", 1, "Seed for entity population and system generation.")
	flag.Float64Var(&opts.writeRatio, "write-ratio", 0.3, "Chance that a system writes its primary component.")
	flag.Float64Var(&opts.churn, "churn", 0.01, "Per-tick chance that a system replaces one of its entities.")
	flag.BoolVar(&opts.dumpSchedule, "dump-schedule", false, "Print the built schedule as JSON and exit.")
	flag.StringVar(&opts.profileMode, "profile", "", "Write a profile to the working directory: cpu or mem.")
	flag.BoolVar(&opts.gcPauseMetrics, "gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("stress test failed")
	}
}

// run holds every deferred cleanup. Only main exits the process.
func run(opts options) error {
	cfg, err := ecs.LoadSchedulerConfig()
	if err != nil {
		return eris.Wrap(err, "failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if opts.workers >= 0 {
		cfg.Workers = opts.workers
	}

	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, cfg.StatsdTags); err != nil {
			return eris.Wrap(err, "failed to init statsd")
		}
		defer statsd.Close()
	}

	switch opts.profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return eris.Errorf("unknown profile mode %q", opts.profileMode)
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	world := ecs.NewWorld(registry)
	scheduler := ecs.NewScheduler(world, cfg.Options(log.Logger)...)
	registerSystems(scheduler, rng, opts.systemCount, opts.writeRatio, opts.churn)

	schedule, err := scheduler.Build()
	if err != nil {
		return eris.Wrap(err, "failed to build schedule")
	}

	if opts.dumpSchedule {
		out, err := schedule.View().JSON()
		if err != nil {
			return eris.Wrap(err, "failed to encode schedule")
		}
		fmt.Println(string(out))
		return nil
	}

	log.Info().Int("entities", opts.entityCount).Msg("populating world")
	for range opts.entityCount {
		if _, err := world.SpawnWith(randomComponents(rng, 5)...); err != nil {
			return eris.Wrap(err, "failed to spawn")
		}
	}

	report := &Report{
		Duration:       opts.duration,
		Entities:       opts.entityCount,
		Components:     len(kinds),
		Systems:        opts.systemCount,
		Seed:           opts.seed,
		Batches:        schedule.Batches(),
		GCPauseMetrics: opts.gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info().Dur("duration", opts.duration).Int("batches", schedule.Len()).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

	for ctx.Err() == nil {
		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		tick, err := scheduler.RunTick(ctx, deltaTime.Seconds())
		if err != nil && !eris.Is(err, ecs.ErrTickAborted) {
			return eris.Wrap(err, "tick failed")
		}

		report.UpdateTime.Samples = append(report.UpdateTime.Samples, tick.Duration)
		report.Failures += len(tick.Failures)
		report.CommandErrors += len(tick.CommandErrors)
		report.TotalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.FinalEntities = world.Len()
	report.Slowest = slowestSystems(scheduler.GetStats(), 5)
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info().Int64("updates", report.TotalUpdates).Msg("simulation finished")

	if err := report.Generate(os.Stdout); err != nil {
		return eris.Wrap(err, "failed to generate report")
	}
	return nil
}
