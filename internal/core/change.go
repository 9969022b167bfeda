package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/minitex/ipregister/internal/model"
	"github.com/minitex/ipregister/internal/platform"
)

// ChangeService owns the IP change lifecycle: draft creation, the action
// table, registrar-delta reconciliation, notification, and completion.
type ChangeService struct {
	db          DB
	ranges      *RangeService
	registrars  *RegistrarService
	orgs        *OrganizationService
	mailer      Mailer
	exporter    Exporter
	operatorBCC string
}

func NewChangeService(db DB, ranges *RangeService, registrars *RegistrarService, orgs *OrganizationService, mailer Mailer, exporter Exporter, operatorBCC string) *ChangeService {
	return &ChangeService{
		db:          db,
		ranges:      ranges,
		registrars:  registrars,
		orgs:        orgs,
		mailer:      mailer,
		exporter:    exporter,
		operatorBCC: operatorBCC,
	}
}

// CreateDraft opens a new change for the organization with contact fields
// snapshotted from the acting user. An initial registrar selection may be
// carried over from the dashboard link that opened the form.
func (s *ChangeService) CreateDraft(ctx context.Context, orgID string, actor model.Actor, registrarIDs []string) (*model.IpChange, error) {
	registrarIDs = dedup(registrarIDs)
	if err := s.checkSelectable(ctx, registrarIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	change := &model.IpChange{
		ID:             platform.NewID(),
		OrganizationID: orgID,
		RegistrarIDs:   registrarIDs,
		ContactGiven:   actor.GivenName,
		ContactFamily:  actor.FamilyName,
		ContactEmail:   actor.Email,
		ContactPhone:   actor.Phone,
		OwnerID:        actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO ip_changes (id, organization_id, suppress_notification, comment,
		   contact_given, contact_family, contact_email, contact_phone, completed,
		   owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		change.ID, change.OrganizationID, change.SuppressNotification, change.Comment,
		change.ContactGiven, change.ContactFamily, change.ContactEmail, change.ContactPhone,
		change.Completed, change.OwnerID, change.CreatedAt, change.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ip change: %w", err)
	}

	if err := s.saveRegistrarSet(ctx, change.ID, change.RegistrarIDs); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *ChangeService) GetByID(ctx context.Context, id string) (*model.IpChange, error) {
	var c model.IpChange
	err := s.db.QueryRow(ctx,
		`SELECT id, organization_id, suppress_notification, comment,
		   contact_given, contact_family, contact_email, contact_phone, completed,
		   owner_id, created_at, updated_at
		 FROM ip_changes WHERE id = $1`, id,
	).Scan(&c.ID, &c.OrganizationID, &c.SuppressNotification, &c.Comment,
		&c.ContactGiven, &c.ContactFamily, &c.ContactEmail, &c.ContactPhone,
		&c.Completed, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ip change %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ip change %s: %w", id, err)
	}

	if err := s.loadSets(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChangeService) ListByOrganization(ctx context.Context, orgID string) ([]model.IpChange, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, organization_id, suppress_notification, comment,
		   contact_given, contact_family, contact_email, contact_phone, completed,
		   owner_id, created_at, updated_at
		 FROM ip_changes WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list ip changes for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var changes []model.IpChange
	for rows.Next() {
		var c model.IpChange
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.SuppressNotification, &c.Comment,
			&c.ContactGiven, &c.ContactFamily, &c.ContactEmail, &c.ContactPhone,
			&c.Completed, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ip change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ip changes: %w", err)
	}

	for i := range changes {
		if err := s.loadSets(ctx, &changes[i]); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// DraftUpdate carries one save of the change edit form: the action-table
// selections, inline new range expressions, and the notification settings.
type DraftUpdate struct {
	ConfirmRangeIDs      []string
	RemoveRangeIDs       []string
	NewExpressions       []string
	RegistrarIDs         []string
	SuppressNotification bool
	Comment              string
}

// SaveDraft replaces the change's working sets with the submitted
// selections. Inline new range expressions are created immediately (they
// appear on the organization right away, unregistered) and join the
// change's new set; ranges created by earlier saves of the same draft are
// kept. At least one add or remove action must be present.
func (s *ChangeService) SaveDraft(ctx context.Context, id string, upd DraftUpdate, actor model.Actor) (*model.IpChange, error) {
	change, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.Completed {
		return nil, fmt.Errorf("ip change %s: %w", id, ErrAlreadyCompleted)
	}

	registrarIDs := dedup(upd.RegistrarIDs)
	if err := s.checkSelectable(ctx, registrarIDs); err != nil {
		return nil, err
	}

	newIDs := change.NewRangeIDs
	for _, expression := range upd.NewExpressions {
		r, err := s.ranges.Create(ctx, change.OrganizationID, expression, actor.ID)
		if err != nil {
			return nil, err
		}
		newIDs = append(newIDs, r.ID)
	}

	confirmIDs := dedup(upd.ConfirmRangeIDs)
	removeIDs := dedup(upd.RemoveRangeIDs)
	if len(confirmIDs)+len(removeIDs)+len(newIDs) == 0 {
		return nil, ErrNoActions
	}

	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_change_ranges WHERE change_id = $1", id); err != nil {
		return nil, fmt.Errorf("clear range sets for ip change %s: %w", id, err)
	}
	sets := []struct {
		kind string
		ids  []string
	}{
		{model.ChangeRangeConfirm, confirmIDs},
		{model.ChangeRangeNew, newIDs},
		{model.ChangeRangeRemove, removeIDs},
	}
	for _, set := range sets {
		for _, rangeID := range set.ids {
			if _, err := s.db.Exec(ctx,
				"INSERT INTO ip_change_ranges (change_id, range_id, kind) VALUES ($1, $2, $3)",
				id, rangeID, set.kind); err != nil {
				return nil, fmt.Errorf("attach %s range %s to ip change %s: %w", set.kind, rangeID, id, err)
			}
		}
	}

	if err := s.saveRegistrarSet(ctx, id, registrarIDs); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx,
		`UPDATE ip_changes SET suppress_notification = $1, comment = $2, updated_at = now()
		 WHERE id = $3`,
		upd.SuppressNotification, upd.Comment, id)
	if err != nil {
		return nil, fmt.Errorf("update ip change %s: %w", id, err)
	}

	return s.GetByID(ctx, id)
}

// BuildActionTable returns one row per existing range of the change's
// organization, excluding ranges the change itself created (those are
// presented separately as new entries). The action reflects the range's
// membership in the confirm/remove sets; when a range somehow sits in both,
// remove wins for display.
func (s *ChangeService) BuildActionTable(ctx context.Context, change *model.IpChange) ([]model.ActionRow, error) {
	ranges, err := s.ranges.ListByOrganization(ctx, change.OrganizationID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ActionRow, 0, len(ranges))
	for _, r := range ranges {
		if slices.Contains(change.NewRangeIDs, r.ID) {
			continue
		}
		action := model.ActionNone
		if slices.Contains(change.ConfirmRangeIDs, r.ID) {
			action = model.ActionAdd
		}
		if slices.Contains(change.RemoveRangeIDs, r.ID) {
			action = model.ActionRemove
		}
		rows = append(rows, model.ActionRow{Range: r, Action: action})
	}
	return rows, nil
}

// Abandon deletes the change and cascades to the ranges it created as new;
// they have no existence outside the abandoned change. Pre-existing ranges
// in the confirm/remove sets are left untouched.
func (s *ChangeService) Abandon(ctx context.Context, id string) error {
	change, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if change.Completed {
		return fmt.Errorf("ip change %s: %w", id, ErrAlreadyCompleted)
	}

	for _, rangeID := range change.NewRangeIDs {
		if err := s.ranges.Delete(ctx, rangeID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_change_ranges WHERE change_id = $1", id); err != nil {
		return fmt.Errorf("clear range sets for ip change %s: %w", id, err)
	}
	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_change_registrars WHERE change_id = $1", id); err != nil {
		return fmt.Errorf("clear registrars for ip change %s: %w", id, err)
	}
	if _, err := s.db.Exec(ctx, "DELETE FROM ip_changes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete ip change %s: %w", id, err)
	}
	return nil
}

func (s *ChangeService) loadSets(ctx context.Context, change *model.IpChange) error {
	rows, err := s.db.Query(ctx,
		`SELECT range_id, kind FROM ip_change_ranges WHERE change_id = $1 ORDER BY range_id`, change.ID)
	if err != nil {
		return fmt.Errorf("list range sets for ip change %s: %w", change.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rangeID, kind string
		if err := rows.Scan(&rangeID, &kind); err != nil {
			return fmt.Errorf("scan ip change range: %w", err)
		}
		switch kind {
		case model.ChangeRangeConfirm:
			change.ConfirmRangeIDs = append(change.ConfirmRangeIDs, rangeID)
		case model.ChangeRangeNew:
			change.NewRangeIDs = append(change.NewRangeIDs, rangeID)
		case model.ChangeRangeRemove:
			change.RemoveRangeIDs = append(change.RemoveRangeIDs, rangeID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ip change ranges: %w", err)
	}

	regRows, err := s.db.Query(ctx,
		`SELECT registrar_id FROM ip_change_registrars WHERE change_id = $1 ORDER BY registrar_id`, change.ID)
	if err != nil {
		return fmt.Errorf("list registrars for ip change %s: %w", change.ID, err)
	}
	defer regRows.Close()

	for regRows.Next() {
		var registrarID string
		if err := regRows.Scan(&registrarID); err != nil {
			return fmt.Errorf("scan ip change registrar: %w", err)
		}
		change.RegistrarIDs = append(change.RegistrarIDs, registrarID)
	}
	return regRows.Err()
}

// checkSelectable verifies every submitted registrar id names an existing,
// enabled registrar. The form only offers enabled registrars, so a failure
// here is a stale or hand-crafted submission.
func (s *ChangeService) checkSelectable(ctx context.Context, registrarIDs []string) error {
	for _, registrarID := range registrarIDs {
		registrar, err := s.registrars.GetByID(ctx, registrarID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("registrar %s: %w", registrarID, ErrRegistrarNotSelectable)
		}
		if err != nil {
			return err
		}
		if !registrar.Enabled {
			return fmt.Errorf("registrar %s: %w", registrarID, ErrRegistrarNotSelectable)
		}
	}
	return nil
}

func (s *ChangeService) saveRegistrarSet(ctx context.Context, changeID string, registrarIDs []string) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_change_registrars WHERE change_id = $1", changeID); err != nil {
		return fmt.Errorf("clear registrars for ip change %s: %w", changeID, err)
	}
	for _, registrarID := range registrarIDs {
		if _, err := s.db.Exec(ctx,
			"INSERT INTO ip_change_registrars (change_id, registrar_id) VALUES ($1, $2)",
			changeID, registrarID); err != nil {
			return fmt.Errorf("attach registrar %s to ip change %s: %w", registrarID, changeID, err)
		}
	}
	return nil
}

// dedup collapses duplicate ids while keeping first-seen order.
func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
