package balance

import (
	"reflect"
	"testing"
)

func TestStats(t *testing.T) {
	players := map[string]Player{
		"a": rated("a", "Medio", 8),
		"b": rated("b", "Medio", 4),
		"c": rated("c", "Delantero", 6),
	}
	regs := []Registration{
		{PlayerID: "a", PhysicalState: StateExcellent},
		{PlayerID: "c", PhysicalState: StateTired},
	}
	assignments := []Assignment{
		{PlayerID: "a", Team: TeamWhite, Role: RoleMidfielder},
		{PlayerID: "b", Team: TeamWhite, Role: RoleDefender},
		{PlayerID: "c", Team: TeamDark, Role: RoleForward},
		{PlayerID: "ghost", Team: TeamDark, Role: RoleGoalkeeper},
		{PlayerID: "lost", Team: "red", Role: RoleForward},
	}

	st := New().Stats(assignments, players, regs)

	if st.White.Players != 2 || !almostEqual(st.White.TotalLevel, 8*1.3+4) || !almostEqual(st.White.AvgLevel, (8*1.3+4)/2) {
		t.Fatalf("white = %+v", st.White)
	}
	if st.Dark.Players != 2 || !almostEqual(st.Dark.TotalLevel, 6*0.6+5) {
		t.Fatalf("dark = %+v", st.Dark)
	}
	if want := (RoleCounts{RoleForward: 1, RoleGoalkeeper: 1}); !reflect.DeepEqual(st.Dark.Roles, want) {
		t.Fatalf("dark roles = %v, want %v", st.Dark.Roles, want)
	}
	if !almostEqual(st.Diff(), st.White.AvgLevel-st.Dark.AvgLevel) {
		t.Fatalf("Diff() = %v", st.Diff())
	}
}

func TestStatsUsesAssignedRole(t *testing.T) {
	keeper := Player{ID: "k", Profile: &Profile{
		PreferredPosition: "Arquero",
		Attributes:        Attributes{Speed: 2, Technique: 6, Stamina: 8, Defense: 10, Attack: 1, Passing: 4},
	}}
	players := map[string]Player{"k": keeper}
	b := New()

	asKeeper := b.Stats([]Assignment{{PlayerID: "k", Team: TeamWhite, Role: RoleGoalkeeper}}, players, nil)
	asForward := b.Stats([]Assignment{{PlayerID: "k", Team: TeamWhite, Role: RoleForward}}, players, nil)

	if !almostEqual(asKeeper.White.TotalLevel, b.EffectiveLevel(keeper, nil, RoleGoalkeeper)) {
		t.Fatalf("keeper level = %v", asKeeper.White.TotalLevel)
	}
	if asForward.White.TotalLevel >= asKeeper.White.TotalLevel {
		t.Fatalf("defensive player should rate lower as forward: %v >= %v",
			asForward.White.TotalLevel, asKeeper.White.TotalLevel)
	}
}

func TestStatsEmpty(t *testing.T) {
	st := New().Stats(nil, nil, nil)
	if st.White.AvgLevel != 0 || st.Dark.AvgLevel != 0 || st.Diff() != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
}
