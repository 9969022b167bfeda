package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitex/ipregister/internal/model"
)

func deltaFor(t *testing.T, deltas []RegistrarDelta, rangeID string) RegistrarDelta {
	t.Helper()
	for _, d := range deltas {
		if d.RangeID == rangeID {
			return d
		}
	}
	t.Fatalf("no delta for range %s", rangeID)
	return RegistrarDelta{}
}

func TestApplyRegistrarDelta_UnionOnAdd(t *testing.T) {
	change := &model.IpChange{
		ConfirmRangeIDs: []string{"r1"},
		RegistrarIDs:    []string{"R2", "R3"},
	}
	existing := map[string][]string{"r1": {"R1", "R2"}}

	deltas := ApplyRegistrarDelta(change, existing)

	require.Len(t, deltas, 1)
	assert.Equal(t, []string{"R1", "R2", "R3"}, deltaFor(t, deltas, "r1").RegistrarIDs)
}

func TestApplyRegistrarDelta_DifferenceOnRemove(t *testing.T) {
	change := &model.IpChange{
		RemoveRangeIDs: []string{"r1"},
		RegistrarIDs:   []string{"R2", "R3"},
	}
	existing := map[string][]string{"r1": {"R1", "R2"}}

	deltas := ApplyRegistrarDelta(change, existing)

	require.Len(t, deltas, 1)
	assert.Equal(t, []string{"R1"}, deltaFor(t, deltas, "r1").RegistrarIDs)
}

func TestApplyRegistrarDelta_RemoveKeepsUnmentionedRegistrars(t *testing.T) {
	// Removal subtracts only the registrars selected on this change; it is
	// not a full clear.
	change := &model.IpChange{
		RemoveRangeIDs: []string{"r1"},
		RegistrarIDs:   []string{"R1"},
	}
	existing := map[string][]string{"r1": {"R1", "R2", "R3"}}

	deltas := ApplyRegistrarDelta(change, existing)

	assert.Equal(t, []string{"R2", "R3"}, deltaFor(t, deltas, "r1").RegistrarIDs)
}

func TestApplyRegistrarDelta_NewRangesJoinTheUnion(t *testing.T) {
	change := &model.IpChange{
		ConfirmRangeIDs: []string{"r1"},
		NewRangeIDs:     []string{"r2"},
		RegistrarIDs:    []string{"RB"},
	}
	existing := map[string][]string{"r1": {"RA"}, "r2": nil}

	deltas := ApplyRegistrarDelta(change, existing)

	require.Len(t, deltas, 2)
	assert.Equal(t, []string{"RA", "RB"}, deltaFor(t, deltas, "r1").RegistrarIDs)
	assert.Equal(t, []string{"RB"}, deltaFor(t, deltas, "r2").RegistrarIDs)
}

func TestApplyRegistrarDelta_Idempotent(t *testing.T) {
	change := &model.IpChange{
		ConfirmRangeIDs: []string{"r1"},
		RemoveRangeIDs:  []string{"r2"},
		RegistrarIDs:    []string{"R2", "R3"},
	}
	existing := map[string][]string{"r1": {"R1"}, "r2": {"R2", "R4"}}

	once := ApplyRegistrarDelta(change, existing)

	applied := make(map[string][]string)
	for _, d := range once {
		applied[d.RangeID] = d.RegistrarIDs
	}
	twice := ApplyRegistrarDelta(change, applied)

	assert.Equal(t, once, twice)
}

func TestApplyRegistrarDelta_AddAndRemoveNetsToRemoval(t *testing.T) {
	// A range marked both add and remove is processed add-first, so the
	// remove wins: documented policy, not an accident.
	change := &model.IpChange{
		ConfirmRangeIDs: []string{"r1"},
		RemoveRangeIDs:  []string{"r1"},
		RegistrarIDs:    []string{"R2"},
	}
	existing := map[string][]string{"r1": {"R1", "R2"}}

	deltas := ApplyRegistrarDelta(change, existing)

	require.Len(t, deltas, 1)
	assert.Equal(t, []string{"R1"}, deltaFor(t, deltas, "r1").RegistrarIDs)
}

func TestApplyRegistrarDelta_DuplicateSelectionsCollapse(t *testing.T) {
	change := &model.IpChange{
		ConfirmRangeIDs: []string{"r1", "r1"},
		RegistrarIDs:    []string{"R1", "R1", "R2"},
	}
	existing := map[string][]string{"r1": {"R1"}}

	deltas := ApplyRegistrarDelta(change, existing)

	require.Len(t, deltas, 1)
	assert.Equal(t, []string{"R1", "R2"}, deltaFor(t, deltas, "r1").RegistrarIDs)
}
