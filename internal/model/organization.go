package model

// Organization is an external identity that scopes ranges and changes. Only
// the label is needed here, for display in tables and notification bodies.
type Organization struct {
	ID    string `json:"id" db:"id"`
	Label string `json:"label" db:"label"`
}

// Actor is the authenticated user on whose behalf a request runs. It is
// injected by the boundary layer (SSO proxy headers), never looked up
// globally by the core.
type Actor struct {
	ID         string `json:"id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Operator   bool   `json:"operator"`
}
