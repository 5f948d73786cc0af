// Package balance splits registered players into two balanced soccer teams.
//
// All functions in this package are pure: they never perform I/O, never
// mutate their inputs and are safe to call from multiple goroutines.
package balance

import (
	"fmt"
	"strings"
	"time"
)

// Role is a position a player takes on the field.
type Role string

// Supported roles.
const (
	RoleNone       Role = ""
	RoleGoalkeeper Role = "goalkeeper"
	RoleDefender   Role = "defender"
	RoleMidfielder Role = "midfielder"
	RoleForward    Role = "forward"
)

// Roles lists every assignable role, goalkeeper first.
var Roles = [4]Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward}

// Valid reports whether the role is one of the four assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward:
		return true
	}
	return false
}

// ParseRole parses an english or spanish role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "goalkeeper", "gk", "keeper", "arquero":
		return RoleGoalkeeper, nil
	case "defender", "def", "defensor":
		return RoleDefender, nil
	case "midfielder", "mid", "medio", "mediocampista":
		return RoleMidfielder, nil
	case "forward", "fwd", "striker", "delantero":
		return RoleForward, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Team is one of the two sides of a match.
type Team string

// Both sides.
const (
	TeamWhite Team = "white"
	TeamDark  Team = "dark"
)

// Valid reports whether the team is white or dark.
func (t Team) Valid() bool { return t == TeamWhite || t == TeamDark }

// Other returns the opposite side.
func (t Team) Other() Team {
	if t == TeamWhite {
		return TeamDark
	}
	return TeamWhite
}

// ParseTeam parses an english or spanish team name.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "blanco", "w":
		return TeamWhite, nil
	case "dark", "oscuro", "d":
		return TeamDark, nil
	}
	return "", fmt.Errorf("unknown team %q", s)
}

// PhysicalState is the condition a player reports when registering for a match.
type PhysicalState string

// Known physical states.
const (
	StateTired     PhysicalState = "tired"
	StateNormal    PhysicalState = "normal"
	StateExcellent PhysicalState = "excellent"
)

// ParsePhysicalState parses an english or spanish physical state,
// anything unrecognized is treated as normal.
func ParsePhysicalState(s string) PhysicalState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tired", "cansado":
		return StateTired
	case "excellent", "excelente":
		return StateExcellent
	}
	return StateNormal
}

// Kind is the kind of registration.
type Kind string

// Registration kinds. Only KindPlayer registrations take part in balancing.
const (
	KindPlayer     Kind = "player"
	KindSubstitute Kind = "substitute"
	KindSpectator  Kind = "spectator"
)

// ParseKind parses an english or spanish registration kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "jugador":
		return KindPlayer, nil
	case "substitute", "sub", "suplente":
		return KindSubstitute, nil
	case "spectator", "hinchada":
		return KindSpectator, nil
	}
	return "", fmt.Errorf("unknown registration kind %q", s)
}

// Attributes are the six skill attributes, each in [1,10].
// A zero value means the attribute was never set.
type Attributes struct {
	Speed     float64 `json:"speed"`
	Technique float64 `json:"technique"`
	Stamina   float64 `json:"stamina"`
	Defense   float64 `json:"defense"`
	Attack    float64 `json:"attack"`
	Passing   float64 `json:"passing"`
}

// Profile is the permanent skill profile of a player.
// SecondaryPositions are informational for organizers moving players around,
// the draft reads PreferredPosition only.
type Profile struct {
	PreferredPosition  string     `json:"preferred_position"`
	SecondaryPositions []string   `json:"secondary_positions,omitempty"`
	Attributes         Attributes `json:"attributes"`
	OverallLevel       float64    `json:"overall_level"`
}

// Player is a member of the roster. Profile is optional.
type Player struct {
	ID      string
	Name    string
	Profile *Profile
}

// Registration links a player to a match.
type Registration struct {
	PlayerID      string
	PhysicalState PhysicalState
	Kind          Kind
	WillAttend    bool
	Timestamp     time.Time
}

// Eligible reports whether the registration takes part in team balancing.
func (r Registration) Eligible() bool {
	return r.WillAttend && r.Kind == KindPlayer
}

// Point is a coordinate on the normalized 100x100 field.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Assignment places a player on a team, in a role, at a point on the field.
type Assignment struct {
	PlayerID string  `json:"player_id"`
	Team     Team    `json:"team"`
	Role     Role    `json:"role"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}
