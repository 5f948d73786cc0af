package event

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/syohex/go-texttable"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

var roleOrder = map[balance.Role]int{
	balance.RoleGoalkeeper: 0,
	balance.RoleDefender:   1,
	balance.RoleMidfielder: 2,
	balance.RoleForward:    3,
}

// RenderSheet draws the team sheet with the balance of both teams.
func RenderSheet(sh store.Sheet) string {
	as := make([]balance.Assignment, len(sh.Teams.Assignments.V))
	copy(as, sh.Teams.Assignments.V)
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].Team != as[j].Team {
			return as[i].Team == balance.TeamWhite
		}
		if as[i].Role != as[j].Role {
			return roleOrder[as[i].Role] < roleOrder[as[j].Role]
		}
		return as[i].X < as[j].X
	})

	teamName := map[balance.Team]string{
		balance.TeamWhite: orDefault(sh.Teams.WhiteName, "White"),
		balance.TeamDark:  orDefault(sh.Teams.DarkName, "Dark"),
	}

	tbl := &texttable.TextTable{}
	_ = tbl.SetHeader("Team", "Role", "Player", "Position")
	for _, a := range as {
		name := a.PlayerID
		if pl, ok := sh.Players[a.PlayerID]; ok {
			name = displayName(pl)
		}
		_ = tbl.AddRow(teamName[a.Team], string(a.Role), name, fmt.Sprintf("%.0f,%.0f", a.X, a.Y))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %s, version %d\n", sh.Match, sh.Match.Stage, sh.Teams.Version)
	if len(as) > 0 {
		sb.WriteString(tbl.Draw())
		sb.WriteString("\n")
	}
	writeTeamStat(&sb, teamName[balance.TeamWhite], sh.Stats.White)
	writeTeamStat(&sb, teamName[balance.TeamDark], sh.Stats.Dark)
	fmt.Fprintf(&sb, "difference: %.2f", sh.Stats.Diff())

	if len(sh.Waitlisted) > 0 {
		names := make([]string, 0, len(sh.Waitlisted))
		for _, id := range sh.Waitlisted {
			if pl, ok := sh.Players[id]; ok {
				id = displayName(pl)
			}
			names = append(names, id)
		}
		fmt.Fprintf(&sb, "\nwaitlisted: %s", strings.Join(names, ", "))
	}

	return sb.String()
}

func writeTeamStat(sb *strings.Builder, name string, st balance.TeamStat) {
	fmt.Fprintf(sb, "%s: %d players, total %.2f, avg %.2f, gk %d def %d mid %d fwd %d\n",
		name, st.Players, st.TotalLevel, st.AvgLevel,
		st.Roles[balance.RoleGoalkeeper], st.Roles[balance.RoleDefender],
		st.Roles[balance.RoleMidfielder], st.Roles[balance.RoleForward])
}

// RenderRoster draws everyone registered for the match in registration order.
func RenderRoster(r store.Roster) string {
	if len(r.Registrations) == 0 {
		return fmt.Sprintf("%s: nobody registered yet", r.Match)
	}

	tbl := &texttable.TextTable{}
	_ = tbl.SetHeader("#", "Player", "Kind", "State", "Attends")
	for i, reg := range r.Registrations {
		name := reg.PlayerID
		if pl, ok := r.Players[reg.PlayerID]; ok {
			name = displayName(pl)
		}
		_ = tbl.AddRow(strconv.Itoa(i+1), name, string(reg.Kind), string(reg.PhysicalState),
			strconv.FormatBool(reg.WillAttend))
	}

	return fmt.Sprintf("%s, %s\n%s", r.Match, r.Match.Stage, tbl.Draw())
}

// RenderMatches draws the list of matches.
func RenderMatches(matches []store.Match) string {
	if len(matches) == 0 {
		return "no matches scheduled"
	}

	tbl := &texttable.TextTable{}
	_ = tbl.SetHeader("ID", "Name", "Venue", "Starts", "Size", "Stage")
	for _, m := range matches {
		_ = tbl.AddRow(
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.Venue,
			m.StartsAt.UTC().Format(startsAtLayout),
			fmt.Sprintf("%dv%d", m.PlayersPerTeam, m.PlayersPerTeam),
			string(m.Stage),
		)
	}
	return tbl.Draw()
}

func displayName(pl store.Player) string {
	switch {
	case pl.Name != "":
		return pl.Name
	case pl.DiscordID != "":
		return "@" + pl.DiscordID
	default:
		return pl.ID
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func codeBlock(s string) string { return "```\n" + s + "\n```" }
