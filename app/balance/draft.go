package balance

import "sort"

// candidate is a player waiting to be drafted.
type candidate struct {
	playerID  string
	preferred Role
	level     float64
	order     int // position in the input, the tie breaker
}

// side is a team being filled during the draft.
type side struct {
	team  Team
	picks []Assignment
	total float64
	roles RoleCounts
}

func (s *side) add(c candidate, role Role) {
	s.picks = append(s.picks, Assignment{PlayerID: c.playerID, Team: s.team, Role: role})
	s.total += c.level
	s.roles[role]++
}

// Generate splits the players into two teams of at most playersPerTeam each.
//
// Every player is rated at the preferred role. Goalkeepers are seeded
// first: the best one goes to white, the second best to dark, any further
// goalkeepers join the field players. With a single goalkeeper dark starts
// without one. Field players are then drafted from the strongest down,
// alternating sides and starting with the weaker side, each one taking the
// best role still open in the receiving team. Once a side is full the rest
// go to the other side, and once both are full the remaining players are
// left out, so the result may be shorter than the input.
//
// Players with equal levels keep their input order. Registrations are looked
// up by player id; a player without one is rated in normal condition.
// Duplicate player ids are drafted once.
func (b *Balancer) Generate(players []Player, regs []Registration, playersPerTeam int) []Assignment {
	if playersPerTeam <= 0 {
		return []Assignment{}
	}

	byID := make(map[string]*Registration, len(regs))
	for i := range regs {
		if _, ok := byID[regs[i].PlayerID]; !ok {
			byID[regs[i].PlayerID] = &regs[i]
		}
	}

	seen := make(map[string]bool, len(players))
	var keepers, field []candidate
	for i, p := range players {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		role := PreferredRole(p)
		c := candidate{
			playerID:  p.ID,
			preferred: role,
			level:     b.EffectiveLevel(p, byID[p.ID], role),
			order:     i,
		}
		if role == RoleGoalkeeper {
			keepers = append(keepers, c)
			continue
		}
		field = append(field, c)
	}

	sortByLevel(keepers)

	white := &side{team: TeamWhite, roles: RoleCounts{}}
	dark := &side{team: TeamDark, roles: RoleCounts{}}

	switch {
	case len(keepers) >= 2:
		white.add(keepers[0], RoleGoalkeeper)
		dark.add(keepers[1], RoleGoalkeeper)
		field = append(field, keepers[2:]...)
	case len(keepers) == 1:
		white.add(keepers[0], RoleGoalkeeper)
	}

	sortByLevel(field)

	next := white
	if dark.total < white.total {
		next = dark
	}

	for _, c := range field {
		whiteFull := len(white.picks) >= playersPerTeam
		darkFull := len(dark.picks) >= playersPerTeam
		if whiteFull && darkFull {
			break
		}

		target := next
		switch {
		case whiteFull:
			target, next = dark, dark
		case darkFull:
			target, next = white, white
		case next == white:
			next = dark
		default:
			next = white
		}

		target.add(c, b.BestRole(target.roles, c.preferred, playersPerTeam))
	}

	result := make([]Assignment, 0, len(white.picks)+len(dark.picks))
	result = append(result, white.picks...)
	result = append(result, dark.picks...)
	place(result)
	return result
}

// Unassigned returns the ids of the players that have no assignment,
// in input order.
func Unassigned(players []Player, assignments []Assignment) []string {
	assigned := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		assigned[a.PlayerID] = true
	}

	var res []string
	for _, p := range players {
		if assigned[p.ID] {
			continue
		}
		assigned[p.ID] = true // report duplicates once
		res = append(res, p.ID)
	}
	return res
}

// sortByLevel orders candidates from the strongest down, equal levels keep
// their input order.
func sortByLevel(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].level != cs[j].level {
			return cs[i].level > cs[j].level
		}
		return cs[i].order < cs[j].order
	})
}
