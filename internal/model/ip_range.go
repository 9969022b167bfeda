package model

import "time"

// IpRange is a contiguous span of IP addresses registered by an organization.
// StartAddr and EndAddr hold the fixed-width binary endpoints (4 bytes for
// IPv4, 16 for IPv6) so range comparisons are byte comparisons. Title is
// always derived from the endpoints; it is never user-editable.
type IpRange struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	StartAddr      []byte    `json:"-" db:"start_addr"`
	EndAddr        []byte    `json:"-" db:"end_addr"`
	Title          string    `json:"title" db:"title"`
	RegistrarIDs   []string  `json:"registrar_ids"`
	Registered     bool      `json:"registered" db:"registered"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
