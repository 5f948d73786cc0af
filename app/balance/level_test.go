package balance

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

func TestWeightsSumToOne(t *testing.T) {
	for role, w := range DefaultModel().Weights {
		sum := w.Speed + w.Technique + w.Stamina + w.Defense + w.Attack + w.Passing
		if !almostEqual(sum, 1) {
			t.Errorf("weights of %s sum to %v, want 1", role, sum)
		}
	}
}

func TestEffectiveLevel(t *testing.T) {
	b := New()

	striker := Player{ID: "p1", Profile: &Profile{
		PreferredPosition: "Delantero",
		Attributes:        Attributes{Speed: 9, Technique: 8, Stamina: 6, Defense: 2, Attack: 10, Passing: 7},
		OverallLevel:      8,
	}}
	partial := Player{ID: "p2", Profile: &Profile{Attributes: Attributes{Defense: 9}}}

	tbl := []struct {
		name   string
		player Player
		reg    *Registration
		role   Role
		want   float64
	}{
		{"no profile, no role", Player{ID: "x"}, nil, RoleNone, 5},
		{"no profile, with role", Player{ID: "x"}, nil, RoleDefender, 5},
		{"no profile, tired", Player{ID: "x"}, &Registration{PhysicalState: StateTired}, RoleForward, 3},
		{"overall level, excellent", striker, &Registration{PhysicalState: StateExcellent}, RoleNone, 8 * 1.3},
		{"forward weights", striker, nil, RoleForward, 0.25*9 + 0.20*8 + 0.10*6 + 0.35*10 + 0.10*7},
		{"defender weights", striker, &Registration{PhysicalState: StateNormal}, RoleDefender,
			0.15*9 + 0.10*8 + 0.25*6 + 0.35*2 + 0.15*7},
		{"missing attributes default to 5", partial, nil, RoleGoalkeeper,
			0.10*5 + 0.20*5 + 0.25*5 + 0.35*9 + 0.10*5},
		{"missing overall defaults to 5", partial, nil, RoleNone, 5},
		{"unknown state is normal", Player{ID: "x"}, &Registration{PhysicalState: "sleepy"}, RoleMidfielder, 5},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.EffectiveLevel(tt.player, tt.reg, tt.role); !almostEqual(got, tt.want) {
				t.Fatalf("EffectiveLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveLevelNotClamped(t *testing.T) {
	star := Player{ID: "s", Profile: &Profile{
		Attributes:   Attributes{Speed: 10, Technique: 10, Stamina: 10, Defense: 10, Attack: 10, Passing: 10},
		OverallLevel: 10,
	}}
	got := New().EffectiveLevel(star, &Registration{PhysicalState: StateExcellent}, RoleMidfielder)
	if !almostEqual(got, 13) {
		t.Fatalf("EffectiveLevel() = %v, want 13", got)
	}
}

func TestParsePhysicalState(t *testing.T) {
	tbl := map[string]PhysicalState{
		"tired":     StateTired,
		"Cansado":   StateTired,
		"EXCELENTE": StateExcellent,
		"excellent": StateExcellent,
		"normal":    StateNormal,
		"":          StateNormal,
		"whatever":  StateNormal,
	}
	for in, want := range tbl {
		if got := ParsePhysicalState(in); got != want {
			t.Errorf("ParsePhysicalState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModelIsolation(t *testing.T) {
	m := DefaultModel()
	m.Factors[StateTired] = 0.1
	m.Formation[5] = Formation{0, 0, 0, 0}

	fresh := DefaultModel()
	if fresh.Factors[StateTired] != 0.6 {
		t.Fatalf("tired factor leaked between models: %v", fresh.Factors[StateTired])
	}
	if fresh.FormationFor(5) != (Formation{1, 1, 2, 1}) {
		t.Fatalf("formation leaked between models: %+v", fresh.FormationFor(5))
	}
}
