package ecs

import (
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	BatchCount      int
	Ticks           uint64
	TotalExecutions int64
	TotalFailures   int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          Stage
	Batch          int
	ExecutionCount int64
	FailureCount   int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// systemStatsInternal is written only by the goroutine running its system, and read
// between ticks.
type systemStatsInternal struct {
	executionCount int64
	failureCount   int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newSystemStats() *systemStatsInternal {
	return &systemStatsInternal{minDuration: time.Duration(1<<63 - 1)}
}

func (s *systemStatsInternal) record(duration time.Duration, failed bool) {
	s.executionCount++
	if failed {
		s.failureCount++
	}
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// WorldStats is a snapshot of entity and store occupancy.
type WorldStats struct {
	EntityCount   int
	ResourceCount int
	Stores        []StoreStats
}

// StoreStats describes one component store.
type StoreStats struct {
	Id    ComponentId
	Type  reflect.Type
	Count int
}

// CollectStats gathers per-store counts for every registered component type.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:   w.Len(),
		ResourceCount: len(w.resources),
		Stores:        make([]StoreStats, 0, w.registry.Len()),
	}

	for i, t := range w.registry.Types() {
		count := 0
		if i < len(w.stores) && w.stores[i] != nil {
			count = w.stores[i].Len()
		}
		stats.Stores = append(stats.Stores, StoreStats{
			Id:    ComponentId(i),
			Type:  t,
			Count: count,
		})
	}

	return stats
}
