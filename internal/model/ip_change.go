package model

import "time"

// Range reference kinds on an IP change.
const (
	ChangeRangeConfirm = "confirm"
	ChangeRangeNew     = "new"
	ChangeRangeRemove  = "remove"
)

// Actions proposed for an existing range in the change edit table.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionNone   = "none"
)

// IpChange is a batched change request: ranges to confirm, add, and remove
// for one organization, plus the vendors to notify. Contact fields are a
// snapshot of the submitting user taken when the draft was opened, not a
// live link to the user profile. Completed transitions false -> true exactly
// once; a completed change is immutable.
type IpChange struct {
	ID                   string    `json:"id" db:"id"`
	OrganizationID       string    `json:"organization_id" db:"organization_id"`
	ConfirmRangeIDs      []string  `json:"confirm_range_ids"`
	NewRangeIDs          []string  `json:"new_range_ids"`
	RemoveRangeIDs       []string  `json:"remove_range_ids"`
	RegistrarIDs         []string  `json:"registrar_ids"`
	SuppressNotification bool      `json:"suppress_notification" db:"suppress_notification"`
	Comment              string    `json:"comment" db:"comment"`
	ContactGiven         string    `json:"contact_given" db:"contact_given"`
	ContactFamily        string    `json:"contact_family" db:"contact_family"`
	ContactEmail         string    `json:"contact_email" db:"contact_email"`
	ContactPhone         string    `json:"contact_phone" db:"contact_phone"`
	Completed            bool      `json:"completed" db:"completed"`
	OwnerID              string    `json:"owner_id" db:"owner_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// ActionRow is one row of the change edit table: an existing range and the
// action currently selected for it on the change under edit.
type ActionRow struct {
	Range  IpRange `json:"range"`
	Action string  `json:"action"`
}
