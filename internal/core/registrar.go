package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/minitex/ipregister/internal/model"
)

type RegistrarService struct {
	db DB
}

func NewRegistrarService(db DB) *RegistrarService {
	return &RegistrarService{db: db}
}

func (s *RegistrarService) Create(ctx context.Context, registrar *model.IpRegistrar) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO ip_registrars (id, label, description, email, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		registrar.ID, registrar.Label, registrar.Description, registrar.Email,
		registrar.Enabled, registrar.CreatedAt, registrar.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ip registrar: %w", err)
	}
	return nil
}

func (s *RegistrarService) GetByID(ctx context.Context, id string) (*model.IpRegistrar, error) {
	var r model.IpRegistrar
	err := s.db.QueryRow(ctx,
		`SELECT id, label, description, email, enabled, created_at, updated_at
		 FROM ip_registrars WHERE id = $1`, id,
	).Scan(&r.ID, &r.Label, &r.Description, &r.Email, &r.Enabled, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ip registrar %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ip registrar %s: %w", id, err)
	}
	return &r, nil
}

// List returns all registrars, or only the enabled ones when enabledOnly is
// set. Disabled registrars stay attached to existing ranges; they are just
// not selectable for new changes.
func (s *RegistrarService) List(ctx context.Context, enabledOnly bool) ([]model.IpRegistrar, error) {
	query := `SELECT id, label, description, email, enabled, created_at, updated_at FROM ip_registrars`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY label`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ip registrars: %w", err)
	}
	defer rows.Close()

	var registrars []model.IpRegistrar
	for rows.Next() {
		var r model.IpRegistrar
		if err := rows.Scan(&r.ID, &r.Label, &r.Description, &r.Email, &r.Enabled, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ip registrar: %w", err)
		}
		registrars = append(registrars, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ip registrars: %w", err)
	}
	return registrars, nil
}

func (s *RegistrarService) Update(ctx context.Context, registrar *model.IpRegistrar) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE ip_registrars SET label = $1, description = $2, email = $3, enabled = $4, updated_at = now()
		 WHERE id = $5`,
		registrar.Label, registrar.Description, registrar.Email, registrar.Enabled, registrar.ID,
	)
	if err != nil {
		return fmt.Errorf("update ip registrar %s: %w", registrar.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ip registrar %s: %w", registrar.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a registrar. A registrar still referenced by ranges or
// changes is refused; disable it instead so the attachments stay intact.
func (s *RegistrarService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM ip_registrars WHERE id = $1", id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("ip registrar %s: %w", id, ErrRegistrarInUse)
	}
	if err != nil {
		return fmt.Errorf("delete ip registrar %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ip registrar %s: %w", id, ErrNotFound)
	}
	return nil
}
