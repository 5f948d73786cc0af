package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
)

// Player represents a member of the roster.
type Player struct {
	ID        string                 `db:"id"`
	DiscordID string                 `db:"discord_id"` // empty for guests
	Name      string                 `db:"name"`
	Profile   JSON[*balance.Profile] `db:"profile"`
}

// DiscordRef returns the Discord mention of the player, or the name for guests.
func (p Player) DiscordRef() string {
	if p.DiscordID == "" {
		return p.Name
	}
	return fmt.Sprintf("<@%s>", p.DiscordID)
}

// Balance converts the player to the balancer's representation.
func (p Player) Balance() balance.Player {
	return balance.Player{ID: p.ID, Name: p.Name, Profile: p.Profile.V}
}

// Stage is the step a match is in.
type Stage string

// Match stages.
const (
	StageRegistration Stage = "registration"
	StageTeamBuilding Stage = "team_building"
	StageReady        Stage = "ready"
)

// Match represents a scheduled match.
type Match struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	Venue          string    `db:"venue"`
	StartsAt       time.Time `db:"starts_at"`
	PlayersPerTeam int       `db:"players_per_team"`
	Stage          Stage     `db:"stage"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Capacity returns the number of player spots.
func (m Match) Capacity() int { return 2 * m.PlayersPerTeam }

// SubstituteCapacity returns the number of substitute spots.
func (m Match) SubstituteCapacity() int { return m.Capacity() / 2 }

// String returns the match in format "#<id> <name> (<n>v<n>)".
func (m Match) String() string {
	return fmt.Sprintf("#%d %s (%dv%d)", m.ID, m.Name, m.PlayersPerTeam, m.PlayersPerTeam)
}

// Registration represents a player signed up for a match.
type Registration struct {
	MatchID       int64                 `db:"match_id"`
	PlayerID      string                `db:"player_id"`
	PhysicalState balance.PhysicalState `db:"physical_state"`
	Kind          balance.Kind          `db:"kind"`
	WillAttend    bool                  `db:"will_attend"`
	RegisteredAt  time.Time             `db:"registered_at"`
}

// Balance converts the registration to the balancer's representation.
func (r Registration) Balance() balance.Registration {
	return balance.Registration{
		PlayerID:      r.PlayerID,
		PhysicalState: r.PhysicalState,
		Kind:          r.Kind,
		WillAttend:    r.WillAttend,
		Timestamp:     r.RegisteredAt,
	}
}

// TeamConfig is the team sheet of a match. Version grows by one on every save.
type TeamConfig struct {
	MatchID     int64                      `db:"match_id"`
	WhiteName   string                     `db:"white_name"`
	DarkName    string                     `db:"dark_name"`
	Assignments JSON[[]balance.Assignment] `db:"assignments"`
	Version     int                        `db:"version"`
	CreatedAt   time.Time                  `db:"created_at"`
	UpdatedAt   time.Time                  `db:"updated_at"`
}

// JSON stores a value as a JSON text column.
type JSON[T any] struct{ V T }

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src any) error {
	var zero T
	j.V = zero

	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}

	if err := json.Unmarshal(b, &j.V); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
