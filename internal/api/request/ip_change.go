package request

// CreateIpChange opens a draft change. The registrar selection may be seeded
// from the dashboard link that opened the form.
type CreateIpChange struct {
	RegistrarIDs []string `json:"registrar_ids" validate:"dive,required"`
}

// SaveIpChange holds one save of the change edit form.
type SaveIpChange struct {
	ConfirmRangeIDs      []string `json:"confirm_range_ids" validate:"dive,required"`
	RemoveRangeIDs       []string `json:"remove_range_ids" validate:"dive,required"`
	NewExpressions       []string `json:"new_expressions" validate:"dive,required,max=100"`
	RegistrarIDs         []string `json:"registrar_ids" validate:"dive,required"`
	SuppressNotification bool     `json:"suppress_notification"`
	Comment              string   `json:"comment" validate:"max=2000"`
}
