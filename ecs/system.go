package ecs

import "github.com/rs/zerolog"

// SystemFunc is the body of a system. It is invoked once per tick with the system's
// resolved query. A returned error is reported for this system only; other systems in the
// batch keep running.
type SystemFunc func(frame *UpdateFrame) error

// Stage is a coarse ordering bucket. Every batch of an earlier stage completes before any
// batch of a later stage starts, regardless of access sets.
type Stage uint8

const (
	// Startup systems run once, on the first tick they are part of the schedule. A Startup
	// system gated by RunIf runs on the first tick its condition holds.
	Startup Stage = iota
	// PreUpdate runs first on every tick. Use for input snapshots and setup other systems
	// depend on.
	PreUpdate
	// Update runs the main simulation.
	Update
	// PostUpdate runs last. Use for cleanup and bookkeeping.
	PostUpdate

	stageCount
)

func (s Stage) String() string {
	switch s {
	case Startup:
		return "Startup"
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	default:
		return "Unknown"
	}
}

type systemConfig struct {
	stage Stage
	runIf func(w *World) bool
}

// SystemOption configures a system at registration.
type SystemOption func(*systemConfig)

// InStage places the system in the given stage. Systems default to Update.
func InStage(stage Stage) SystemOption {
	return func(cfg *systemConfig) { cfg.stage = stage }
}

// RunIf makes the system conditional. The condition is evaluated against the world right
// before the system's batch starts, while no system is running.
func RunIf(condition func(w *World) bool) SystemOption {
	return func(cfg *systemConfig) { cfg.runIf = condition }
}

// Plugin bundles related registrations so they can be added in one call.
type Plugin interface {
	Build(s *Scheduler)
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc func(s *Scheduler)

// Build calls f(s).
func (f PluginFunc) Build(s *Scheduler) { f(s) }

// registeredSystem pairs one descriptor with one body. The query, logger and command buffer
// are bound when a schedule is built.
type registeredSystem struct {
	name       string
	descriptor QueryDescriptor
	fn         SystemFunc
	config     systemConfig
	stats      *systemStatsInternal

	query    *Query
	commands *Commands
	logger   zerolog.Logger
	started  bool
}
