package balance

// DefaultAttribute is used for any attribute or level that was never set.
const DefaultAttribute = 5.0

// Weights is a per-role weight vector over the six attributes, summing to 1.
type Weights struct {
	Speed, Technique, Stamina, Defense, Attack, Passing float64
}

// Apply returns the weighted sum of the attributes, missing ones count as 5.
func (w Weights) Apply(a Attributes) float64 {
	return w.Speed*orDefault(a.Speed) +
		w.Technique*orDefault(a.Technique) +
		w.Stamina*orDefault(a.Stamina) +
		w.Defense*orDefault(a.Defense) +
		w.Attack*orDefault(a.Attack) +
		w.Passing*orDefault(a.Passing)
}

// Formation is the target number of players per role for one team.
type Formation struct {
	Goalkeepers, Defenders, Midfielders, Forwards int
}

// Target returns the target count for the role.
func (f Formation) Target(r Role) int {
	switch r {
	case RoleGoalkeeper:
		return f.Goalkeepers
	case RoleDefender:
		return f.Defenders
	case RoleMidfielder:
		return f.Midfielders
	case RoleForward:
		return f.Forwards
	}
	return 0
}

// Model holds the tables the balancer works with. The zero value is not
// usable, get one from DefaultModel.
type Model struct {
	Weights   map[Role]Weights
	Factors   map[PhysicalState]float64
	Formation map[int]Formation
	// FallbackSize picks the formation for team sizes missing from Formation.
	FallbackSize int
}

// DefaultModel returns a fresh copy of the default tables, callers may
// modify it without affecting anyone else.
func DefaultModel() Model {
	return Model{
		Weights: map[Role]Weights{
			RoleGoalkeeper: {Speed: 0.10, Technique: 0.20, Stamina: 0.25, Defense: 0.35, Attack: 0, Passing: 0.10},
			RoleDefender:   {Speed: 0.15, Technique: 0.10, Stamina: 0.25, Defense: 0.35, Attack: 0, Passing: 0.15},
			RoleMidfielder: {Speed: 0, Technique: 0.25, Stamina: 0.20, Defense: 0.15, Attack: 0.15, Passing: 0.25},
			RoleForward:    {Speed: 0.25, Technique: 0.20, Stamina: 0.10, Defense: 0, Attack: 0.35, Passing: 0.10},
		},
		Factors: map[PhysicalState]float64{
			StateTired:     0.6,
			StateNormal:    1.0,
			StateExcellent: 1.3,
		},
		Formation: map[int]Formation{
			5:  {1, 1, 2, 1},
			6:  {1, 2, 2, 1},
			7:  {1, 2, 3, 1},
			8:  {1, 3, 3, 1},
			9:  {1, 3, 3, 2},
			11: {1, 4, 4, 2},
		},
		FallbackSize: 7,
	}
}

// FormationFor returns the target formation for the team size.
func (m Model) FormationFor(playersPerTeam int) Formation {
	if f, ok := m.Formation[playersPerTeam]; ok {
		return f
	}
	return m.Formation[m.FallbackSize]
}

// Factor returns the multiplier for the physical state, unknown states
// count as normal.
func (m Model) Factor(s PhysicalState) float64 {
	if f, ok := m.Factors[s]; ok {
		return f
	}
	return m.Factors[StateNormal]
}

// weightsFor returns the weights of the role, midfielder weights for
// anything unknown.
func (m Model) weightsFor(r Role) Weights {
	if w, ok := m.Weights[r]; ok {
		return w
	}
	return m.Weights[RoleMidfielder]
}

func orDefault(v float64) float64 {
	if v == 0 {
		return DefaultAttribute
	}
	return v
}
