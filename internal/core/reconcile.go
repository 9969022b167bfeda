package core

import (
	"slices"

	"github.com/minitex/ipregister/internal/model"
)

// RegistrarDelta is the computed registrar set for one affected range.
type RegistrarDelta struct {
	RangeID      string
	RegistrarIDs []string
}

// ApplyRegistrarDelta computes the registrar set every affected range ends
// up with: union with the change's notify selection for confirmed and new
// ranges, set difference for removed ranges. Only the registrars selected
// on this change are subtracted — a removed range stays notified to vendors
// the change does not mention.
//
// The function is pure; persistence is the caller's concern, which lets the
// completion flow apply it only after notification succeeds. It is
// idempotent: re-running it over its own output changes nothing. Adds are
// processed before removes, so a range sitting in both sets nets out with
// the registrars removed.
func ApplyRegistrarDelta(change *model.IpChange, existing map[string][]string) []RegistrarDelta {
	notify := dedup(change.RegistrarIDs)

	results := make(map[string][]string)
	var order []string

	record := func(rangeID string, ids []string) {
		if _, seen := results[rangeID]; !seen {
			order = append(order, rangeID)
		}
		results[rangeID] = ids
	}

	for _, rangeID := range dedup(slices.Concat(change.ConfirmRangeIDs, change.NewRangeIDs)) {
		record(rangeID, union(existing[rangeID], notify))
	}
	for _, rangeID := range dedup(change.RemoveRangeIDs) {
		record(rangeID, difference(existing[rangeID], notify))
	}

	deltas := make([]RegistrarDelta, 0, len(order))
	for _, rangeID := range order {
		deltas = append(deltas, RegistrarDelta{RangeID: rangeID, RegistrarIDs: results[rangeID]})
	}
	return deltas
}

func union(a, b []string) []string {
	out := dedup(slices.Concat(a, b))
	slices.Sort(out)
	return out
}

func difference(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, id := range dedup(a) {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
