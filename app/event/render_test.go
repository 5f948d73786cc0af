package event

import (
	"strings"
	"testing"
	"time"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

func TestRenderSheet(t *testing.T) {
	sh := store.Sheet{
		Match: store.Match{ID: 3, Name: "Tuesday", PlayersPerTeam: 2, Stage: store.StageTeamBuilding},
		Players: map[string]store.Player{
			"a": {ID: "a", Name: "Tano"},
			"b": {ID: "b", DiscordID: "42"},
			"w": {ID: "w", Name: "Late"},
		},
		Stats: balance.MatchStats{
			White: balance.TeamStat{Players: 1, TotalLevel: 7, AvgLevel: 7, Roles: balance.RoleCounts{balance.RoleForward: 1}},
			Dark:  balance.TeamStat{Players: 2, TotalLevel: 10, AvgLevel: 5, Roles: balance.RoleCounts{balance.RoleGoalkeeper: 1, balance.RoleDefender: 1}},
		},
		Waitlisted: []string{"w"},
	}
	sh.Teams.WhiteName = "Los Blancos"
	sh.Teams.Version = 2
	sh.Teams.Assignments.V = []balance.Assignment{
		{PlayerID: "b", Team: balance.TeamDark, Role: balance.RoleDefender, X: 20, Y: 85},
		{PlayerID: "a", Team: balance.TeamWhite, Role: balance.RoleForward, X: 30, Y: 37},
		{PlayerID: "ghost", Team: balance.TeamDark, Role: balance.RoleGoalkeeper, X: 50, Y: 92},
	}

	out := RenderSheet(sh)

	for _, want := range []string{
		"#3 Tuesday (2v2), team_building, version 2",
		"Los Blancos: 1 players, total 7.00, avg 7.00, gk 0 def 0 mid 0 fwd 1",
		"Dark: 2 players, total 10.00, avg 5.00, gk 1 def 1 mid 0 fwd 0",
		"difference: 2.00",
		"waitlisted: Late",
		"@42",
		"ghost",
		"50,92",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	// white rows come first, dark goalkeeper before dark defender
	iTano, iGhost, iB := strings.Index(out, "Tano"), strings.Index(out, "ghost"), strings.Index(out, "@42")
	if iTano >= iGhost || iGhost >= iB {
		t.Errorf("unexpected row order in:\n%s", out)
	}

	if len(sh.Teams.Assignments.V) != 3 || sh.Teams.Assignments.V[0].PlayerID != "b" {
		t.Errorf("rendering must not reorder the sheet")
	}
}

func TestRenderRoster(t *testing.T) {
	m := store.Match{ID: 1, Name: "Sunday", PlayersPerTeam: 5, Stage: store.StageRegistration}
	if out := RenderRoster(store.Roster{Match: m}); !strings.Contains(out, "nobody registered yet") {
		t.Fatalf("unexpected empty roster: %s", out)
	}

	out := RenderRoster(store.Roster{
		Match: m,
		Registrations: []store.Registration{
			{PlayerID: "a", Kind: balance.KindPlayer, PhysicalState: balance.StateTired, WillAttend: true},
			{PlayerID: "b", Kind: balance.KindSubstitute, PhysicalState: balance.StateNormal},
		},
		Players: map[string]store.Player{"a": {ID: "a", Name: "Tano"}},
	})
	for _, want := range []string{"#1 Sunday (5v5), registration", "Tano", "tired", "substitute", "false"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderMatches(t *testing.T) {
	if out := RenderMatches(nil); out != "no matches scheduled" {
		t.Fatalf("unexpected output %q", out)
	}

	out := RenderMatches([]store.Match{{
		ID: 4, Name: "Friday", Venue: "Club", PlayersPerTeam: 7, Stage: store.StageReady,
		StartsAt: time.Date(2026, 10, 23, 20, 30, 0, 0, time.UTC),
	}})
	for _, want := range []string{"Friday", "Club", "2026-10-23 20:30", "7v7", "ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
