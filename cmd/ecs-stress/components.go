package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"

	"github.com/plus3/tickecs/ecs"
	"github.com/rotisserie/eris"
)

type (
	C0  float64
	C1  float64
	C2  float64
	C3  float64
	C4  float64
	C5  float64
	C6  float64
	C7  float64
	C8  float64
	C9  float64
	C10 float64
	C11 float64
)

// componentKind erases one synthetic component type so systems can be generated at runtime.
type componentKind struct {
	typ      reflect.Type
	register func(*ecs.ComponentRegistry)
	value    func(v float64) any
	touch    func(row ecs.Row, mode ecs.AccessMode) float64
}

func kindOf[T ~float64]() componentKind {
	return componentKind{
		typ:      reflect.TypeFor[T](),
		register: func(r *ecs.ComponentRegistry) { ecs.RegisterComponent[T](r) },
		value:    func(v float64) any { return T(v) },
		touch: func(row ecs.Row, mode ecs.AccessMode) float64 {
			switch mode {
			case ecs.ModeWrite, ecs.ModeOptionalWrite:
				if p, ok := ecs.Write[T](row); ok {
					*p += 1
					return float64(*p)
				}
			case ecs.ModeRead, ecs.ModeOptionalRead:
				if v, ok := ecs.Read[T](row); ok {
					return float64(v)
				}
			}
			return 0
		},
	}
}

var kinds = []componentKind{
	kindOf[C0](), kindOf[C1](), kindOf[C2](), kindOf[C3](),
	kindOf[C4](), kindOf[C5](), kindOf[C6](), kindOf[C7](),
	kindOf[C8](), kindOf[C9](), kindOf[C10](), kindOf[C11](),
}

func registerComponents(registry *ecs.ComponentRegistry) {
	for _, k := range kinds {
		k.register(registry)
	}
}

// randomComponents returns between 1 and limit distinct component values.
func randomComponents(rng *rand.Rand, limit int) []any {
	n := rng.IntN(limit) + 1
	components := make([]any, 0, n)
	for _, i := range rng.Perm(len(kinds))[:n] {
		components = append(components, kinds[i].value(rng.Float64()))
	}
	return components
}

type generatedAccess struct {
	kind componentKind
	mode ecs.AccessMode
}

// secondaryModes are the modes used after a system's first, required, access.
var secondaryModes = []ecs.AccessMode{
	ecs.ModeRead, ecs.ModeRead, ecs.ModeWrite,
	ecs.ModeOptionalRead, ecs.ModeOptionalWrite, ecs.ModeExclude,
}

// randomAccesses picks up to three distinct component types. The first is always required so
// every system has a bounded scan.
func randomAccesses(rng *rand.Rand, writeRatio float64) []generatedAccess {
	n := rng.IntN(3) + 1
	accesses := make([]generatedAccess, 0, n)
	for i, k := range rng.Perm(len(kinds))[:n] {
		mode := secondaryModes[rng.IntN(len(secondaryModes))]
		if i == 0 {
			mode = ecs.ModeRead
			if rng.Float64() < writeRatio {
				mode = ecs.ModeWrite
			}
		}
		accesses = append(accesses, generatedAccess{kind: kinds[k], mode: mode})
	}
	return accesses
}

func describe(accesses []generatedAccess) ecs.QueryDescriptor {
	list := make([]ecs.Access, len(accesses))
	for i, a := range accesses {
		list[i] = ecs.Access{Type: a.kind.typ, Mode: a.mode}
	}
	return ecs.Describe(list...)
}

// generatedSystem touches every declared column of every matched row. With probability churn
// per tick it also despawns one matched entity and spawns a replacement through its commands.
func generatedSystem(accesses []generatedAccess, seed uint64, churn float64) ecs.SystemFunc {
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	return func(frame *ecs.UpdateFrame) error {
		var sum float64
		var victim ecs.EntityId
		for row := range frame.Iter() {
			for _, a := range accesses {
				sum += a.kind.touch(row, a.mode)
			}
			victim = row.Entity
		}

		if victim != 0 && rng.Float64() < churn {
			frame.Commands.Despawn(victim)
			frame.Commands.Spawn(randomComponents(rng, 5)...)
		}

		if math.IsNaN(sum) {
			return eris.Errorf("NaN accumulated at tick %d", frame.Tick)
		}
		return nil
	}
}

func registerSystems(scheduler *ecs.Scheduler, rng *rand.Rand, count int, writeRatio, churn float64) {
	for i := range count {
		accesses := randomAccesses(rng, writeRatio)
		scheduler.Register(
			fmt.Sprintf("system-%03d", i),
			describe(accesses),
			generatedSystem(accesses, rng.Uint64(), churn),
		)
	}
}
