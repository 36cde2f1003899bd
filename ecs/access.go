package ecs

import (
	"reflect"
	"strings"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// AccessMode is how a system touches one component type.
type AccessMode uint8

const (
	// ModeRead requires the component and grants read access.
	ModeRead AccessMode = iota + 1
	// ModeWrite requires the component and grants read/write access.
	ModeWrite
	// ModeOptionalRead grants read access when the component is present.
	ModeOptionalRead
	// ModeOptionalWrite grants read/write access when the component is present.
	ModeOptionalWrite
	// ModeExclude skips entities that have the component.
	ModeExclude
	// ModeResourceRead grants read access to a world resource.
	ModeResourceRead
	// ModeResourceWrite grants read/write access to a world resource.
	ModeResourceWrite
)

func (m AccessMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeOptionalRead:
		return "optional-read"
	case ModeOptionalWrite:
		return "optional-write"
	case ModeExclude:
		return "exclude"
	case ModeResourceRead:
		return "resource-read"
	case ModeResourceWrite:
		return "resource-write"
	default:
		return "unknown"
	}
}

func (m AccessMode) required() bool {
	return m == ModeRead || m == ModeWrite
}

func (m AccessMode) writes() bool {
	return m == ModeWrite || m == ModeOptionalWrite || m == ModeResourceWrite
}

func (m AccessMode) reads() bool {
	return m != ModeExclude
}

func (m AccessMode) resource() bool {
	return m == ModeResourceRead || m == ModeResourceWrite
}

// Access pairs a component type with the mode a system uses it in.
type Access struct {
	Type reflect.Type
	Mode AccessMode
}

func (a Access) String() string {
	return a.Mode.String() + " " + a.Type.String()
}

// Reads declares required read access to T.
func Reads[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeRead} }

// Writes declares required write access to T.
func Writes[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeWrite} }

// OptionalReads declares read access to T without requiring it.
func OptionalReads[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeOptionalRead} }

// OptionalWrites declares write access to T without requiring it.
func OptionalWrites[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeOptionalWrite} }

// Without excludes entities that have T.
func Without[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeExclude} }

// ReadsResource declares read access to the world resource T.
func ReadsResource[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeResourceRead} }

// WritesResource declares write access to the world resource T.
func WritesResource[T any]() Access { return Access{Type: reflect.TypeFor[T](), Mode: ModeResourceWrite} }

// QueryDescriptor is the declared data-access set of a system: an ordered list of
// per-type access modes. It is a value; build one with Describe.
type QueryDescriptor struct {
	accesses []Access
}

// Describe builds a QueryDescriptor from the given accesses, in order.
func Describe(accesses ...Access) QueryDescriptor {
	copied := make([]Access, len(accesses))
	copy(copied, accesses)
	return QueryDescriptor{accesses: copied}
}

// Accesses returns a copy of the declared accesses.
func (d QueryDescriptor) Accesses() []Access {
	accesses := make([]Access, len(d.accesses))
	copy(accesses, d.accesses)
	return accesses
}

func (d QueryDescriptor) String() string {
	parts := make([]string, len(d.accesses))
	for i, a := range d.accesses {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// accessSet is a resolved descriptor: every type mapped to its component id, duplicates
// folded, and the read/write sets used by the conflict rule. Resources live in their own key
// space, so T as a component and T as a resource never collide.
type accessSet struct {
	entries []resolvedAccess
	reads   bitmap.Bitmap
	writes  bitmap.Bitmap

	resourceReads  bitmap.Bitmap
	resourceWrites bitmap.Bitmap
}

type resolvedAccess struct {
	id   ComponentId
	typ  reflect.Type
	mode AccessMode
}

type accessKey struct {
	id       ComponentId
	resource bool
}

// resolve validates the descriptor against the registry. A type may be listed more than
// once only with the same read-only mode; every other repetition is a conflict.
func (d QueryDescriptor) resolve(registry *ComponentRegistry) (accessSet, error) {
	set := accessSet{entries: make([]resolvedAccess, 0, len(d.accesses))}
	seen := make(map[accessKey]AccessMode, len(d.accesses))

	for _, access := range d.accesses {
		if access.Type == nil || access.Mode < ModeRead || access.Mode > ModeResourceWrite {
			return accessSet{}, eris.Wrapf(ErrConflictingAccess, "invalid access %v", access)
		}

		id, ok := registry.Lookup(access.Type)
		if !ok {
			return accessSet{}, eris.Wrapf(ErrUnregisteredComponent, "%s", access.Type)
		}

		key := accessKey{id: id, resource: access.Mode.resource()}
		if prev, dup := seen[key]; dup {
			if prev == access.Mode && !access.Mode.writes() && access.Mode != ModeExclude {
				continue
			}
			return accessSet{}, eris.Wrapf(ErrConflictingAccess, "%s declared as %s and %s", access.Type, prev, access.Mode)
		}
		seen[key] = access.Mode

		set.entries = append(set.entries, resolvedAccess{id: id, typ: access.Type, mode: access.Mode})
		switch {
		case access.Mode == ModeResourceWrite:
			set.resourceWrites.Set(uint32(id))
		case access.Mode == ModeResourceRead:
			set.resourceReads.Set(uint32(id))
		case access.Mode.writes():
			set.writes.Set(uint32(id))
		case access.Mode.reads():
			set.reads.Set(uint32(id))
		}
	}

	return set, nil
}

// conflicts reports whether two access sets touch a common type with at least one writer.
func (a *accessSet) conflicts(b *accessSet) bool {
	return intersects(a.writes, b.writes) || intersects(a.writes, b.reads) || intersects(a.reads, b.writes) ||
		intersects(a.resourceWrites, b.resourceWrites) ||
		intersects(a.resourceWrites, b.resourceReads) ||
		intersects(a.resourceReads, b.resourceWrites)
}

func intersects(a, b bitmap.Bitmap) bool {
	found := false
	a.Range(func(x uint32) {
		if !found && b.Contains(x) {
			found = true
		}
	})
	return found
}
