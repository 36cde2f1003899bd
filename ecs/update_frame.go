package ecs

import (
	"iter"

	"github.com/rs/zerolog"
)

// UpdateFrame is what a system body receives each tick.
type UpdateFrame struct {
	DeltaTime float64
	Tick      uint64
	Query     *Query
	Commands  *Commands
	Logger    zerolog.Logger
}

// Iter is shorthand for frame.Query.Iter().
func (f *UpdateFrame) Iter() iter.Seq[Row] {
	return f.Query.Iter()
}
