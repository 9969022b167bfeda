package core

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/minitex/ipregister/internal/model"
)

// Exporter mirrors completed changes into an external access-list format.
// Export runs best-effort after completion; failures are logged, never
// rolled back into the change.
type Exporter interface {
	Export(ctx context.Context, change *model.IpChange) error
}

// Complete finalizes a change as one logical unit:
//
//  1. refuse if already completed,
//  2. dispatch the vendor notification — any transport failure aborts here
//     with every persisted entity untouched,
//  3. claim the change by flipping completed via compare-and-swap, so a
//     racing second submission can neither re-send nor re-apply,
//  4. apply the registrar delta to every affected range and persist each,
//  5. hard-delete the removed ranges (delta first, so the operation order
//     stays well-defined even though the record is about to go),
//  6. best-effort export to the external access-list mirror.
//
// Range mutations are independent per range: a range that vanished between
// draft and completion is skipped without rolling back ranges already
// committed.
func (s *ChangeService) Complete(ctx context.Context, id string, actor model.Actor) (*model.IpChange, error) {
	logger := zerolog.Ctx(ctx)

	change, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.Completed {
		return nil, fmt.Errorf("ip change %s: %w", id, ErrAlreadyCompleted)
	}

	if err := s.Send(ctx, change); err != nil {
		return nil, err
	}

	tag, err := s.db.Exec(ctx,
		"UPDATE ip_changes SET completed = true, updated_at = now() WHERE id = $1 AND NOT completed", id)
	if err != nil {
		return nil, fmt.Errorf("mark ip change %s completed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("ip change %s: %w", id, ErrAlreadyCompleted)
	}
	change.Completed = true

	existing := make(map[string][]string)
	for _, rangeID := range dedup(slices.Concat(change.ConfirmRangeIDs, change.NewRangeIDs, change.RemoveRangeIDs)) {
		r, err := s.ranges.GetByID(ctx, rangeID)
		if errors.Is(err, ErrNotFound) {
			logger.Warn().Str("ip_change", id).Str("ip_range", rangeID).
				Msg("referenced ip range no longer exists, skipping delta")
			continue
		}
		if err != nil {
			return nil, err
		}
		existing[r.ID] = r.RegistrarIDs
	}

	for _, delta := range ApplyRegistrarDelta(change, existing) {
		if _, ok := existing[delta.RangeID]; !ok {
			continue
		}
		if err := s.ranges.SaveRegistrars(ctx, delta.RangeID, delta.RegistrarIDs, actor.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				logger.Warn().Str("ip_change", id).Str("ip_range", delta.RangeID).
					Msg("ip range vanished during delta application")
				continue
			}
			return nil, err
		}
	}

	for _, rangeID := range change.RemoveRangeIDs {
		if err := s.ranges.Delete(ctx, rangeID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, change); err != nil {
			logger.Error().Err(err).Str("ip_change", id).
				Msg("access-list export failed, completion stands")
		}
	}

	logger.Info().Str("ip_change", id).Msg("ip change completed")
	return change, nil
}
