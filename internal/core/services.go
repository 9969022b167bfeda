package core

// Services bundles the core services for handler wiring.
type Services struct {
	Organization *OrganizationService
	Registrar    *RegistrarService
	Range        *RangeService
	Change       *ChangeService
}

func NewServices(db DB, mailer Mailer, exporter Exporter, operatorBCC string) *Services {
	orgs := NewOrganizationService(db)
	registrars := NewRegistrarService(db)
	ranges := NewRangeService(db)

	return &Services{
		Organization: orgs,
		Registrar:    registrars,
		Range:        ranges,
		Change:       NewChangeService(db, ranges, registrars, orgs, mailer, exporter, operatorBCC),
	}
}
