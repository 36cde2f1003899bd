package ecs

import "github.com/rotisserie/eris"

var (
	// ErrConfiguration is the root of every registration mistake detected while building a
	// schedule. Builds that return it must be fixed by the caller before retrying.
	ErrConfiguration = eris.New("configuration error")

	// ErrUnregisteredComponent is returned when a component type is used before
	// RegisterComponent was called for it.
	ErrUnregisteredComponent = eris.Wrap(ErrConfiguration, "component type not registered")

	// ErrConflictingAccess is returned when one query descriptor lists a type with
	// incompatible access modes.
	ErrConflictingAccess = eris.Wrap(ErrConfiguration, "conflicting access modes")

	// ErrDuplicateSystem is returned when two systems share a name.
	ErrDuplicateSystem = eris.Wrap(ErrConfiguration, "duplicate system")

	// ErrNotFound is returned when a lookup or removal targets an absent entity or component.
	ErrNotFound = eris.New("not found")

	// ErrStaleEntity is returned for ids whose generation no longer matches the world.
	// It matches ErrNotFound under eris.Is.
	ErrStaleEntity = eris.Wrap(ErrNotFound, "stale entity")

	// ErrSystemFailed wraps an error returned (or a panic raised) by a system body.
	ErrSystemFailed = eris.New("system failed")

	// ErrTickAborted is returned when a tick's context is cancelled between batches.
	ErrTickAborted = eris.New("tick aborted")

	// ErrFailFast is returned when a tick stops after a failing batch because the
	// scheduler was configured with WithFailFast.
	ErrFailFast = eris.New("tick stopped after system failure")
)
