package balance

// TeamStat summarizes the strength of one team.
type TeamStat struct {
	Players    int
	TotalLevel float64
	AvgLevel   float64
	Roles      RoleCounts
}

// MatchStats holds the stats of both teams.
type MatchStats struct {
	White TeamStat
	Dark  TeamStat
}

// Diff returns the absolute difference between the average levels.
func (m MatchStats) Diff() float64 {
	d := m.White.AvgLevel - m.Dark.AvgLevel
	if d < 0 {
		return -d
	}
	return d
}

// Stats computes the level of each team, rating every player at the role
// they were assigned. Players missing from the map are rated with default
// attributes, assignments to an unknown team are ignored.
func (b *Balancer) Stats(assignments []Assignment, players map[string]Player, regs []Registration) MatchStats {
	byID := make(map[string]*Registration, len(regs))
	for i := range regs {
		if _, ok := byID[regs[i].PlayerID]; !ok {
			byID[regs[i].PlayerID] = &regs[i]
		}
	}

	res := MatchStats{
		White: TeamStat{Roles: RoleCounts{}},
		Dark:  TeamStat{Roles: RoleCounts{}},
	}

	for _, a := range assignments {
		var st *TeamStat
		switch a.Team {
		case TeamWhite:
			st = &res.White
		case TeamDark:
			st = &res.Dark
		default:
			continue
		}

		p, ok := players[a.PlayerID]
		if !ok {
			p = Player{ID: a.PlayerID}
		}

		st.Players++
		st.TotalLevel += b.EffectiveLevel(p, byID[a.PlayerID], a.Role)
		st.Roles[a.Role]++
	}

	for _, st := range []*TeamStat{&res.White, &res.Dark} {
		if st.Players > 0 {
			st.AvgLevel = st.TotalLevel / float64(st.Players)
		}
	}

	return res
}
