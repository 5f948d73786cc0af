package balance

// Balancer builds balanced teams with the tables from its model.
type Balancer struct {
	Model Model
}

// New makes a balancer with the default model.
func New() *Balancer {
	return &Balancer{Model: DefaultModel()}
}

// EffectiveLevel returns the level of the player for balancing purposes.
// With a role it is the role-weighted attribute sum, with RoleNone it is the
// overall level. Either is then scaled by the physical state of the
// registration; reg may be nil. The result may exceed 10.
func (b *Balancer) EffectiveLevel(p Player, reg *Registration, role Role) float64 {
	state := StateNormal
	if reg != nil {
		state = reg.PhysicalState
	}
	factor := b.Model.Factor(state)

	if role == RoleNone {
		overall := DefaultAttribute
		if p.Profile != nil {
			overall = orDefault(p.Profile.OverallLevel)
		}
		return overall * factor
	}

	var attrs Attributes
	if p.Profile != nil {
		attrs = p.Profile.Attributes
	}
	return b.Model.weightsFor(role).Apply(attrs) * factor
}
