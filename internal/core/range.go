package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/minitex/ipregister/internal/iprange"
	"github.com/minitex/ipregister/internal/model"
	"github.com/minitex/ipregister/internal/platform"
)

type RangeService struct {
	db DB
}

func NewRangeService(db DB) *RangeService {
	return &RangeService{db: db}
}

// Create parses the range expression, derives the canonical title, and
// inserts the range for the organization.
func (s *RangeService) Create(ctx context.Context, orgID, expression, ownerID string) (*model.IpRange, error) {
	start, end, err := iprange.Parse(expression)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	r := &model.IpRange{
		ID:             platform.NewID(),
		OrganizationID: orgID,
		StartAddr:      iprange.Bytes(start),
		EndAddr:        iprange.Bytes(end),
		Title:          iprange.Title(start, end),
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO ip_ranges (id, organization_id, start_addr, end_addr, title, registered, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.OrganizationID, r.StartAddr, r.EndAddr, r.Title, r.Registered,
		r.OwnerID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ip range: %w", err)
	}
	return r, nil
}

func (s *RangeService) GetByID(ctx context.Context, id string) (*model.IpRange, error) {
	var r model.IpRange
	err := s.db.QueryRow(ctx,
		`SELECT id, organization_id, start_addr, end_addr, title, registered, owner_id, created_at, updated_at
		 FROM ip_ranges WHERE id = $1`, id,
	).Scan(&r.ID, &r.OrganizationID, &r.StartAddr, &r.EndAddr, &r.Title,
		&r.Registered, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ip range %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ip range %s: %w", id, err)
	}

	r.RegistrarIDs, err = s.registrarIDs(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByOrganization returns all ranges on file for the organization,
// ordered by their binary start endpoint, with registrar memberships
// attached.
func (s *RangeService) ListByOrganization(ctx context.Context, orgID string) ([]model.IpRange, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, organization_id, start_addr, end_addr, title, registered, owner_id, created_at, updated_at
		 FROM ip_ranges WHERE organization_id = $1 ORDER BY start_addr, end_addr`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list ip ranges for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var ranges []model.IpRange
	for rows.Next() {
		var r model.IpRange
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.StartAddr, &r.EndAddr, &r.Title,
			&r.Registered, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ip range: %w", err)
		}
		ranges = append(ranges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ip ranges: %w", err)
	}

	for i := range ranges {
		ranges[i].RegistrarIDs, err = s.registrarIDs(ctx, ranges[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return ranges, nil
}

// SaveRegistrars replaces the range's registrar membership and marks the
// range registered when the new set is non-empty.
func (s *RangeService) SaveRegistrars(ctx context.Context, rangeID string, registrarIDs []string, ownerID string) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_range_registrars WHERE range_id = $1", rangeID); err != nil {
		return fmt.Errorf("clear registrars for ip range %s: %w", rangeID, err)
	}
	for _, registrarID := range registrarIDs {
		if _, err := s.db.Exec(ctx,
			"INSERT INTO ip_range_registrars (range_id, registrar_id) VALUES ($1, $2)",
			rangeID, registrarID); err != nil {
			return fmt.Errorf("attach registrar %s to ip range %s: %w", registrarID, rangeID, err)
		}
	}

	tag, err := s.db.Exec(ctx,
		"UPDATE ip_ranges SET registered = $1, owner_id = $2, updated_at = now() WHERE id = $3",
		len(registrarIDs) > 0, ownerID, rangeID)
	if err != nil {
		return fmt.Errorf("update ip range %s: %w", rangeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ip range %s: %w", rangeID, ErrNotFound)
	}
	return nil
}

func (s *RangeService) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM ip_range_registrars WHERE range_id = $1", id); err != nil {
		return fmt.Errorf("clear registrars for ip range %s: %w", id, err)
	}
	tag, err := s.db.Exec(ctx, "DELETE FROM ip_ranges WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete ip range %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ip range %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *RangeService) registrarIDs(ctx context.Context, rangeID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT registrar_id FROM ip_range_registrars WHERE range_id = $1 ORDER BY registrar_id`, rangeID)
	if err != nil {
		return nil, fmt.Errorf("list registrars for ip range %s: %w", rangeID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan registrar id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
