package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/minitex/ipregister/internal/model"
)

type OrganizationService struct {
	db DB
}

func NewOrganizationService(db DB) *OrganizationService {
	return &OrganizationService{db: db}
}

func (s *OrganizationService) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	err := s.db.QueryRow(ctx,
		"SELECT id, label FROM organizations WHERE id = $1", id,
	).Scan(&org.ID, &org.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get organization %s: %w", id, err)
	}
	return &org, nil
}
