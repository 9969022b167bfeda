package model

import "time"

// IpRegistrar is a third-party vendor whose access list mirrors the
// registered ranges of participating organizations.
type IpRegistrar struct {
	ID          string    `json:"id" db:"id"`
	Label       string    `json:"label" db:"label"`
	Description string    `json:"description" db:"description"`
	Email       string    `json:"email" db:"email"`
	Enabled     bool      `json:"enabled" db:"enabled"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
