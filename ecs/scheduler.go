package ecs

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/plus3/tickecs/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type schedulerOptions struct {
	workers  int
	failFast bool
	logger   zerolog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerOptions)

// WithWorkers bounds how many systems of one batch run at the same time.
// Zero or less means runtime.GOMAXPROCS(0).
func WithWorkers(n int) SchedulerOption {
	return func(o *schedulerOptions) { o.workers = n }
}

// WithFailFast stops a tick after the first batch in which a system failed.
// The failing batch itself always runs to completion.
func WithFailFast(enabled bool) SchedulerOption {
	return func(o *schedulerOptions) { o.failFast = enabled }
}

// WithLogger sets the logger used for schedule builds, system failures and the loggers
// handed to systems.
func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(o *schedulerOptions) { o.logger = logger }
}

// Scheduler owns the registered systems and turns them into a Schedule.
// It starts Unbuilt; Build moves it to Built, and any Register or Unregister moves it back.
// A Scheduler and its World must be driven from one goroutine.
type Scheduler struct {
	world    *World
	systems  []*registeredSystem
	schedule *Schedule
	options  schedulerOptions
	ticks    uint64
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(world *World, opts ...SchedulerOption) *Scheduler {
	options := schedulerOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	return &Scheduler{
		world:   world,
		systems: make([]*registeredSystem, 0),
		options: options,
	}
}

// World returns the world the scheduler runs against.
func (s *Scheduler) World() *World {
	return s.world
}

// Register adds a system. Validation is deferred to Build, so Register never fails;
// duplicate names and bad descriptors surface as configuration errors there.
func (s *Scheduler) Register(name string, descriptor QueryDescriptor, fn SystemFunc, opts ...SystemOption) {
	config := systemConfig{stage: Update}
	for _, opt := range opts {
		opt(&config)
	}

	s.systems = append(s.systems, &registeredSystem{
		name:       name,
		descriptor: descriptor,
		fn:         fn,
		config:     config,
		stats:      newSystemStats(),
	})
	s.schedule = nil
}

// Unregister removes every system with the given name. Returns false if none was registered.
func (s *Scheduler) Unregister(name string) bool {
	kept := s.systems[:0]
	removed := false
	for _, sys := range s.systems {
		if sys.name == name {
			removed = true
			continue
		}
		kept = append(kept, sys)
	}
	clear(s.systems[len(kept):])
	s.systems = kept

	if removed {
		s.schedule = nil
	}
	return removed
}

// AddPlugins lets each plugin register its systems, in order.
func (s *Scheduler) AddPlugins(plugins ...Plugin) {
	for _, p := range plugins {
		p.Build(s)
	}
}

// Built reports whether the current schedule is up to date with the registered systems.
func (s *Scheduler) Built() bool {
	return s.schedule != nil
}

// Schedule returns the current schedule, or nil while Unbuilt.
func (s *Scheduler) Schedule() *Schedule {
	return s.schedule
}

// Build validates every registered system and produces a Schedule.
// Any configuration error fails the whole build and leaves the scheduler Unbuilt.
func (s *Scheduler) Build() (*Schedule, error) {
	names := make(map[string]struct{}, len(s.systems))
	queries := make([]*Query, len(s.systems))

	for i, sys := range s.systems {
		if sys.name == "" {
			return nil, eris.Wrapf(ErrConfiguration, "system #%d has no name", i)
		}
		if _, dup := names[sys.name]; dup {
			return nil, eris.Wrapf(ErrDuplicateSystem, "%q", sys.name)
		}
		names[sys.name] = struct{}{}

		if sys.fn == nil {
			return nil, eris.Wrapf(ErrConfiguration, "system %q has no body", sys.name)
		}
		if sys.config.stage >= stageCount {
			return nil, eris.Wrapf(ErrConfiguration, "system %q has invalid stage %d", sys.name, sys.config.stage)
		}

		query, err := NewQuery(s.world, sys.descriptor)
		if err != nil {
			return nil, eris.Wrapf(err, "system %q", sys.name)
		}
		queries[i] = query
	}

	systems := make([]*registeredSystem, len(s.systems))
	copy(systems, s.systems)
	for i, sys := range systems {
		sys.query = queries[i]
		if sys.commands == nil {
			sys.commands = newCommands()
		}
		sys.logger = s.options.logger.With().Str("system", sys.name).Logger()
	}

	s.schedule = buildSchedule(systems)

	s.options.logger.Debug().
		Int("systems", len(systems)).
		Int("batches", s.schedule.Len()).
		Msg("schedule built")

	return s.schedule, nil
}

// TickReport summarises one call to RunTick.
type TickReport struct {
	Tick          uint64
	Batches       int
	Executed      int
	Skipped       []string
	Failures      []SystemFailure
	CommandErrors []error
	Duration      time.Duration
}

// SystemFailure records one system that returned an error or panicked.
type SystemFailure struct {
	System string
	Batch  int
	Err    error
}

// Failed reports whether any system failed during the tick.
func (r TickReport) Failed() bool {
	return len(r.Failures) > 0
}

// Err folds the tick's system failures into one error matching ErrSystemFailed,
// or returns nil.
func (r TickReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	names := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		names[i] = f.System
	}
	return eris.Wrapf(ErrSystemFailed, "tick %d: %s", r.Tick, strings.Join(names, ", "))
}

// Once runs a single tick that cannot be cancelled.
func (s *Scheduler) Once(dt float64) (TickReport, error) {
	return s.RunTick(context.Background(), dt)
}

// RunTick executes every batch of the schedule in order, building it first if needed.
// The context is checked before each batch: a cancelled tick stops between batches, never
// inside one. System failures are isolated, logged and reported in the TickReport; the
// returned error is reserved for configuration errors, cancellation and fail-fast stops.
// Command buffers are flushed after the last batch that ran, in registration order.
func (s *Scheduler) RunTick(ctx context.Context, dt float64) (TickReport, error) {
	if s.schedule == nil {
		if _, err := s.Build(); err != nil {
			return TickReport{}, err
		}
	}

	s.ticks++
	start := time.Now()
	report := TickReport{Tick: s.ticks}

	var tickErr error
	for i, b := range s.schedule.batches {
		if err := ctx.Err(); err != nil {
			tickErr = eris.Wrapf(ErrTickAborted, "tick %d before batch %d: %v", s.ticks, i, err)
			break
		}

		if b.stage == Startup && s.startupDone(b) {
			continue
		}

		report.Batches++
		if failures := s.runBatch(i, b, dt, &report); failures > 0 && s.options.failFast {
			tickErr = eris.Wrapf(ErrFailFast, "tick %d batch %d", s.ticks, i)
			break
		}
	}

	report.CommandErrors = s.flushCommands()
	report.Duration = time.Since(start)
	statsd.EmitTickTiming(start)

	return report, tickErr
}

// startupDone reports whether every member of a Startup batch has already run once.
func (s *Scheduler) startupDone(b batch) bool {
	for _, member := range b.members {
		if !s.schedule.systems[member].started {
			return false
		}
	}
	return true
}

// runBatch runs every eligible member of the batch concurrently and waits for all of them.
// Returns the number of failed systems.
func (s *Scheduler) runBatch(index int, b batch, dt float64, report *TickReport) int {
	active := make([]*registeredSystem, 0, len(b.members))
	for _, member := range b.members {
		sys := s.schedule.systems[member]
		if sys.started {
			continue
		}
		if sys.config.runIf != nil && !sys.config.runIf(s.world) {
			report.Skipped = append(report.Skipped, sys.name)
			continue
		}
		if b.stage == Startup {
			sys.started = true
		}
		active = append(active, sys)
	}

	results := make([]error, len(active))
	if len(active) == 1 {
		results[0] = s.execute(active[0], dt, report.Tick)
	} else {
		g := new(errgroup.Group)
		g.SetLimit(s.workers())
		for i, sys := range active {
			g.Go(func() error {
				results[i] = s.execute(sys, dt, report.Tick)
				return nil
			})
		}
		_ = g.Wait()
	}
	report.Executed += len(active)

	failures := 0
	for i, err := range results {
		if err == nil {
			continue
		}
		failures++
		report.Failures = append(report.Failures, SystemFailure{System: active[i].name, Batch: index, Err: err})
		s.options.logger.Error().
			Err(err).
			Str("system", active[i].name).
			Int("batch", index).
			Uint64("tick", report.Tick).
			Msg("system failed")
	}

	return failures
}

// execute runs one system body, converting a panic into an error so the rest of the batch
// is unaffected.
func (s *Scheduler) execute(sys *registeredSystem, dt float64, tick uint64) (err error) {
	frame := &UpdateFrame{
		DeltaTime: dt,
		Tick:      tick,
		Query:     sys.query,
		Commands:  sys.commands,
		Logger:    sys.logger,
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("system %q panicked: %v", sys.name, r)
		}
		sys.stats.record(time.Since(start), err != nil)
		statsd.EmitSystemTiming(start, sys.name)
	}()

	if runErr := sys.fn(frame); runErr != nil {
		return eris.Wrapf(runErr, "system %q failed", sys.name)
	}
	return nil
}

func (s *Scheduler) flushCommands() []error {
	var errs []error
	for _, sys := range s.schedule.systems {
		if sys.commands.Len() == 0 {
			continue
		}
		for _, err := range sys.commands.Flush(s.world) {
			s.options.logger.Warn().Err(err).Str("system", sys.name).Msg("deferred command failed")
			errs = append(errs, eris.Wrapf(err, "system %q", sys.name))
		}
	}
	return errs
}

func (s *Scheduler) workers() int {
	if s.options.workers > 0 {
		return s.options.workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run executes ticks at the given interval until the context is cancelled.
// It returns nil on cancellation, or the first error that is not a system failure.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if _, err := s.RunTick(ctx, dt); err != nil {
				if eris.Is(err, ErrTickAborted) {
					return nil
				}
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Ticks:       s.ticks,
		Systems:     make([]SystemStats, len(s.systems)),
	}
	if s.schedule != nil {
		stats.BatchCount = s.schedule.Len()
	}

	for i, sys := range s.systems {
		internal := sys.stats
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		batch := -1
		if s.schedule != nil {
			batch = s.schedule.BatchOf(sys.name)
		}

		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Stage:          sys.config.stage,
			Batch:          batch,
			ExecutionCount: internal.executionCount,
			FailureCount:   internal.failureCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
		stats.TotalFailures += internal.failureCount
	}

	return stats
}
