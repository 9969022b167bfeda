package core

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted guards against re-submitting a completed change:
	// no second notification is sent and no delta is re-applied.
	ErrAlreadyCompleted = errors.New("ip change already completed")

	// ErrDispatchFailed means the mail transport refused the notification.
	// The completion aborts with no entity mutated.
	ErrDispatchFailed = errors.New("notification dispatch failed")

	// ErrNoActions is returned when a change has no range action at all.
	ErrNoActions = errors.New("select at least one ip range action")

	// ErrRegistrarNotSelectable is returned when a change selects a
	// registrar that is unknown or disabled. Disabled registrars stay
	// attached to existing ranges but cannot join new changes.
	ErrRegistrarNotSelectable = errors.New("registrar not selectable")

	// ErrRegistrarInUse is returned when deleting a registrar that ranges
	// or changes still reference. Disable it instead.
	ErrRegistrarInUse = errors.New("registrar still referenced")
)
