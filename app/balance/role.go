package balance

import "strings"

// RoleCounts is the number of players per role within a team.
type RoleCounts map[Role]int

// positionKeywords maps substrings of a declared position to a role,
// checked in order.
var positionKeywords = [...]struct {
	keyword string
	role    Role
}{
	{"arquero", RoleGoalkeeper},
	{"goalkeeper", RoleGoalkeeper},
	{"keeper", RoleGoalkeeper},
	{"defens", RoleDefender},
	{"defend", RoleDefender},
	{"medio", RoleMidfielder},
	{"midfield", RoleMidfielder},
	{"delant", RoleForward},
	{"forward", RoleForward},
	{"striker", RoleForward},
}

// fallbackOrder is the order in which roles are offered once the preferred
// one is taken.
var fallbackOrder = [...]Role{RoleMidfielder, RoleDefender, RoleForward, RoleGoalkeeper}

// PreferredRole maps the declared preferred position of the player to a role,
// midfielder when the position is missing or not recognized.
func PreferredRole(p Player) Role {
	if p.Profile == nil {
		return RoleMidfielder
	}
	return PositionRole(p.Profile.PreferredPosition)
}

// PositionRole maps a declared position to a role, midfielder when the
// position is not recognized.
func PositionRole(position string) Role {
	pos := strings.ToLower(position)
	for _, kw := range positionKeywords {
		if strings.Contains(pos, kw.keyword) {
			return kw.role
		}
	}
	return RoleMidfielder
}

// BestRole picks a role for a player joining a team that already has the
// given role counts. The preferred role wins while it is under its target,
// then the first role under target in fallback order. When every role is
// at target the preferred role is returned anyway, formation targets are
// soft caps. A team never gets a second goalkeeper.
func (b *Balancer) BestRole(counts RoleCounts, preferred Role, playersPerTeam int) Role {
	f := b.Model.FormationFor(playersPerTeam)
	open := func(r Role) bool {
		if r == RoleGoalkeeper && counts[r] > 0 {
			return false
		}
		return counts[r] < f.Target(r)
	}

	if open(preferred) {
		return preferred
	}
	for _, r := range fallbackOrder {
		if open(r) {
			return r
		}
	}

	if preferred == RoleGoalkeeper && counts[RoleGoalkeeper] > 0 {
		return RoleMidfielder
	}
	return preferred
}
