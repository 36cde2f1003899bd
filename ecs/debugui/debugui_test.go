package debugui

import (
	"reflect"
	"testing"
	"time"

	"github.com/plus3/tickecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Pos struct{ X, Y float32 }
type Label struct{ Text string }
type Hidden struct{}

type Inner struct {
	Level int
}

type Nested struct {
	Name  string
	Inner Inner
	Ptr   *Inner
	Tags  []string
	count int
}

func newDebugWorld(t *testing.T) *ecs.World {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Pos](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Hidden](registry)
	RegisterDebugUIComponents(registry)
	return ecs.NewWorld(registry)
}

func TestScheduleRows(t *testing.T) {
	world := newDebugWorld(t)
	scheduler := ecs.NewScheduler(world)
	noop := func(*ecs.UpdateFrame) error { return nil }

	scheduler.Register("Move", ecs.Describe(ecs.Writes[Pos]()), noop)
	scheduler.Register("Name", ecs.Describe(ecs.Writes[Label]()), noop)
	scheduler.Register("Draw", ecs.Describe(ecs.Reads[Pos](), ecs.Reads[Label]()), noop)
	scheduler.AddPlugins(Plugin)

	schedule, err := scheduler.Build()
	require.NoError(t, err)

	rows := scheduleRows(schedule.View())
	require.Len(t, rows, 4)

	assert.Equal(t, ScheduleRow{Batch: 0, Stage: "Update", System: "Move", Access: "write debugui.Pos", BatchSize: 2}, rows[0])
	assert.Equal(t, "Name", rows[1].System)
	assert.Equal(t, ScheduleRow{Batch: 1, Stage: "Update", System: "Draw", Access: "read debugui.Pos, read debugui.Label", BatchSize: 1}, rows[2])
	assert.Equal(t, SystemName, rows[3].System)
	assert.Equal(t, "PostUpdate", rows[3].Stage)
	assert.Equal(t, 2, rows[3].Batch)
}

func TestSystemRows(t *testing.T) {
	stats := &ecs.SchedulerStats{
		Systems: []ecs.SystemStats{
			{Name: "b", Batch: 1, ExecutionCount: 3, AvgDuration: 2 * time.Millisecond},
			{Name: "a", Batch: 0, ExecutionCount: 1, AvgDuration: 5 * time.Millisecond},
			{Name: "c", Batch: 0, ExecutionCount: 2, AvgDuration: 1 * time.Millisecond, FailureCount: 2, Stage: ecs.PreUpdate},
		},
	}

	names := func(rows []SystemRow) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.Name
		}
		return out
	}

	t.Run("slowest first by default", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, names(systemRows(stats, 5, false)))
	})

	t.Run("by name ascending", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, names(systemRows(stats, 0, true)))
	})

	t.Run("by batch keeps registration order for ties", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c", "b"}, names(systemRows(stats, 1, true)))
		assert.Equal(t, []string{"b", "a", "c"}, names(systemRows(stats, 1, false)))
	})

	t.Run("carries stage and failures", func(t *testing.T) {
		rows := systemRows(stats, 3, false)
		assert.Equal(t, "c", rows[0].Name)
		assert.Equal(t, int64(2), rows[0].Failures)
		assert.Equal(t, "PreUpdate", rows[0].Stage)
	})
}

func TestStoreBrowserHelpers(t *testing.T) {
	world := newDebugWorld(t)

	a, err := world.SpawnWith(Pos{X: 1}, Label{Text: "alpha"})
	require.NoError(t, err)
	b, err := world.SpawnWith(Pos{X: 2})
	require.NoError(t, err)
	c, err := world.SpawnWith(Label{Text: "gamma"}, Hidden{})
	require.NoError(t, err)

	entities := collectEntities(world)
	require.Len(t, entities, 3)
	assert.Equal(t, a, entities[0].ID)
	assert.Equal(t, []string{"debugui.Pos", "debugui.Label"}, entities[0].ComponentNames)

	t.Run("filter by owned type", func(t *testing.T) {
		filtered := filterEntities(entities, "", reflect.TypeFor[Pos]())
		require.Len(t, filtered, 2)
		assert.Equal(t, a, filtered[0].ID)
		assert.Equal(t, b, filtered[1].ID)
	})

	t.Run("filter by text is case insensitive", func(t *testing.T) {
		filtered := filterEntities(entities, "HIDDEN", nil)
		require.Len(t, filtered, 1)
		assert.Equal(t, c, filtered[0].ID)
	})

	t.Run("filter by id", func(t *testing.T) {
		filtered := filterEntities(entities, b.String(), nil)
		require.Len(t, filtered, 1)
		assert.Equal(t, b, filtered[0].ID)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		assert.Len(t, filterEntities(entities, "", nil), 3)
	})

	t.Run("sort by component count descending", func(t *testing.T) {
		sorted := append([]EntityInfo(nil), entities...)
		sortEntities(sorted, 2, false)
		assert.Equal(t, b, sorted[2].ID)
	})

	t.Run("despawned entities drop out", func(t *testing.T) {
		world.Despawn(a)
		assert.Len(t, collectEntities(world), 2)
	})
}

func TestBuildDescriptor(t *testing.T) {
	world := newDebugWorld(t)
	world.SpawnWith(Pos{}, Label{})
	world.SpawnWith(Pos{}, Hidden{})
	world.SpawnWith(Label{})

	selected := map[reflect.Type]ecs.AccessMode{
		reflect.TypeFor[Pos]():    ecs.ModeRead,
		reflect.TypeFor[Hidden](): ecs.ModeExclude,
		reflect.TypeFor[Label]():  0,
	}

	descriptor := buildDescriptor(selected)
	assert.Equal(t, "{exclude debugui.Hidden, read debugui.Pos}", descriptor.String())

	query, err := ecs.NewQuery(world, descriptor)
	require.NoError(t, err)
	assert.Equal(t, 1, query.Count())

	t.Run("modes cycle back to unselected", func(t *testing.T) {
		mode := ecs.AccessMode(0)
		seen := []ecs.AccessMode{}
		for range len(modeChoices) {
			mode = nextMode(mode)
			seen = append(seen, mode)
		}
		assert.Equal(t, []ecs.AccessMode{ecs.ModeRead, ecs.ModeOptionalRead, ecs.ModeExclude, 0}, seen)
	})
}

func TestFieldRows(t *testing.T) {
	value := &Nested{Name: "root", Inner: Inner{Level: 3}, Tags: []string{"a", "b"}, count: 9}

	rows := globalReflectionCache.fieldRows("", reflect.ValueOf(value))

	require.Len(t, rows, 4)
	assert.Equal(t, FieldRow{Path: "Name", Kind: reflect.String, Value: "root"}, rows[0])
	assert.Equal(t, FieldRow{Path: "Inner.Level", Kind: reflect.Int, Value: "3"}, rows[1])
	assert.Equal(t, FieldRow{Path: "Ptr", Kind: reflect.Pointer, Value: "nil"}, rows[2])
	assert.Equal(t, FieldRow{Path: "Tags", Kind: reflect.Slice, Value: "[2 items]"}, rows[3])

	t.Run("non-nil pointers are followed", func(t *testing.T) {
		value.Ptr = &Inner{Level: 7}
		rows := globalReflectionCache.fieldRows("", reflect.ValueOf(value))
		assert.Equal(t, FieldRow{Path: "Ptr.Level", Kind: reflect.Int, Value: "7"}, rows[2])
	})

	t.Run("fields are cached per type", func(t *testing.T) {
		first := globalReflectionCache.GetFields(reflect.TypeFor[Nested]())
		second := globalReflectionCache.GetFields(reflect.TypeFor[Nested]())
		assert.Len(t, first, 4)
		assert.Same(t, &first[0], &second[0])
	})
}
