package request

// CreateRegistrar holds the request body for creating a registrar.
type CreateRegistrar struct {
	Label       string `json:"label" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
	Email       string `json:"email" validate:"required,email"`
	Enabled     *bool  `json:"enabled"`
}

// UpdateRegistrar holds the request body for updating a registrar.
type UpdateRegistrar struct {
	Label       string `json:"label" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
	Email       string `json:"email" validate:"required,email"`
	Enabled     bool   `json:"enabled"`
}
