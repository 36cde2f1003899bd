package debugui

import (
	"reflect"

	"github.com/plus3/tickecs/ecs"
)

type StoreBrowserComponent struct {
	cache              *StoreBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	filterType         reflect.Type
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selectedEntityId ecs.EntityId
}

type ScheduleViewerComponent struct {
	selectedBatch int
}

type SystemStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	sortColumn    int
	sortAscending bool
}

type QueryDebuggerComponent struct {
	selected map[reflect.Type]ecs.AccessMode
	cache    *QueryDebuggerCache
}
