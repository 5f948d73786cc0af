package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
)

// Service wraps the database store with additional methods.
type Service struct {
	Store    *Store
	Balancer *balance.Balancer // default tables when nil
	Now      func() time.Time  // time.Now when nil
}

// ErrInvalidTeamSize is issued when a match is created with a non-positive team size.
var ErrInvalidTeamSize = errors.New("players per team must be positive")

// ErrNoSpotsLeft is issued when the requested registration kind has no free spots.
var ErrNoSpotsLeft = errors.New("no spots left")

// ErrEmptySheet is issued when a match without anyone on its team sheet is
// marked ready.
var ErrEmptySheet = errors.New("team sheet is empty")

// ErrInvalidProfile is issued when profile attributes are out of range.
var ErrInvalidProfile = errors.New("attributes and level must be between 1 and 10")

// ErrMissing indicates that certain registered players were not found in the
// roster.
type ErrMissing []string

// Error returns the error message.
func (e ErrMissing) Error() string {
	return fmt.Sprintf("registered players are missing from the roster: %s",
		strings.Join(e, ", "))
}

// nameSimilarity is the minimum similarity for a fuzzy name match.
const nameSimilarity = 0.6

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) balancer() *balance.Balancer {
	if s.Balancer == nil {
		return balance.New()
	}
	return s.Balancer
}

// Register creates a player linked to the Discord user, or renames the
// existing one when the name is not empty.
func (s *Service) Register(ctx context.Context, discordID, name string) (Player, error) {
	pl, err := s.Store.GetPlayerByDiscordID(ctx, discordID)
	switch {
	case errors.Is(err, ErrNotFound):
		pl = Player{ID: uuid.NewString(), DiscordID: discordID, Name: name}
		if err := s.Store.CreatePlayer(ctx, pl); err != nil {
			return Player{}, fmt.Errorf("create player: %w", err)
		}
		return pl, nil
	case err != nil:
		return Player{}, fmt.Errorf("get player: %w", err)
	}

	if name == "" || name == pl.Name {
		return pl, nil
	}

	pl.Name = name
	if err := s.Store.UpdatePlayer(ctx, pl); err != nil {
		return Player{}, fmt.Errorf("update player: %w", err)
	}
	return pl, nil
}

// AddGuest creates a player without a Discord account.
func (s *Service) AddGuest(ctx context.Context, name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, errors.New("guest name is required")
	}

	pl := Player{ID: uuid.NewString(), Name: name}
	if err := s.Store.CreatePlayer(ctx, pl); err != nil {
		return Player{}, fmt.Errorf("create player: %w", err)
	}
	return pl, nil
}

// SetProfile replaces the skill profile of the player.
func (s *Service) SetProfile(ctx context.Context, playerID string, profile balance.Profile) (Player, error) {
	a := profile.Attributes
	for _, v := range []float64{a.Speed, a.Technique, a.Stamina, a.Defense, a.Attack, a.Passing, profile.OverallLevel} {
		if v < 1 || v > 10 {
			return Player{}, ErrInvalidProfile
		}
	}

	pl, err := s.Store.GetPlayer(ctx, playerID)
	if err != nil {
		return Player{}, fmt.Errorf("get player: %w", err)
	}

	pl.Profile.V = &profile
	if err := s.Store.UpdatePlayer(ctx, pl); err != nil {
		return Player{}, fmt.Errorf("update player: %w", err)
	}
	return pl, nil
}

// FindPlayer looks a player up by name, case-insensitive, falling back to
// the closest name by edit distance.
func (s *Service) FindPlayer(ctx context.Context, name string) (Player, error) {
	players, err := s.Store.ListPlayers(ctx, nil)
	if err != nil {
		return Player{}, fmt.Errorf("list players: %w", err)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Player{}, ErrNotFound
	}

	best, bestScore := -1, 0.0
	for i, pl := range players {
		candidate := strings.ToLower(pl.Name)
		if candidate == name {
			return pl, nil
		}

		distance := fuzzy.LevenshteinDistance(name, candidate)
		maxLen := float64(max(utf8.RuneCountInString(name), utf8.RuneCountInString(candidate)))
		similarity := 1 - float64(distance)/maxLen

		if similarity > nameSimilarity && similarity > bestScore {
			best, bestScore = i, similarity
		}
	}

	if best < 0 {
		return Player{}, ErrNotFound
	}
	return players[best], nil
}

// CreateMatchRequest is a request to schedule a match.
type CreateMatchRequest struct {
	Name           string
	Venue          string
	StartsAt       time.Time
	PlayersPerTeam int
}

// CreateMatch schedules a new match open for registration.
func (s *Service) CreateMatch(ctx context.Context, req CreateMatchRequest) (Match, error) {
	if req.PlayersPerTeam <= 0 {
		return Match{}, ErrInvalidTeamSize
	}

	m, err := s.Store.CreateMatch(ctx, Match{
		Name:           req.Name,
		Venue:          req.Venue,
		StartsAt:       req.StartsAt,
		PlayersPerTeam: req.PlayersPerTeam,
		Stage:          StageRegistration,
	})
	if err != nil {
		return Match{}, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// MatchUpdate lists the details of a match to change. Nil fields are kept.
type MatchUpdate struct {
	Name     *string
	Venue    *string
	StartsAt *time.Time
}

// UpdateMatch changes the details of the match.
func (s *Service) UpdateMatch(ctx context.Context, matchID int64, upd MatchUpdate) (Match, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		return Match{}, fmt.Errorf("get match: %w", err)
	}

	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Venue != nil {
		m.Venue = *upd.Venue
	}
	if upd.StartsAt != nil {
		m.StartsAt = upd.StartsAt.UTC()
	}

	if err := s.Store.UpdateMatch(ctx, m); err != nil {
		return Match{}, fmt.Errorf("update match: %w", err)
	}
	return m, nil
}

// CancelMatch removes the match along with its registrations and team sheet.
func (s *Service) CancelMatch(ctx context.Context, matchID int64) error {
	if err := s.Store.DeleteMatch(ctx, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	log.Printf("[INFO] match %d cancelled", matchID)
	return nil
}

// JoinRequest is a request to register a player for a match.
type JoinRequest struct {
	MatchID    int64
	PlayerID   string
	State      balance.PhysicalState
	Kind       balance.Kind // picked by free spots when empty
	WillAttend bool
}

// Join registers the player for the match. Without an explicit kind the
// player gets a player spot if there is one, a substitute spot otherwise,
// and ends up a spectator when both are taken. Joining again updates the
// registration and moves the player to the back of the queue.
func (s *Service) Join(ctx context.Context, req JoinRequest) (Registration, error) {
	m, err := s.Store.GetMatch(ctx, req.MatchID)
	if err != nil {
		return Registration{}, fmt.Errorf("get match: %w", err)
	}

	if _, err = s.Store.GetPlayer(ctx, req.PlayerID); err != nil {
		return Registration{}, fmt.Errorf("get player: %w", err)
	}

	regs, err := s.Store.ListRegistrations(ctx, req.MatchID)
	if err != nil {
		return Registration{}, fmt.Errorf("list registrations: %w", err)
	}

	var players, subs int
	for _, r := range regs {
		if r.PlayerID == req.PlayerID {
			continue
		}
		switch r.Kind {
		case balance.KindPlayer:
			players++
		case balance.KindSubstitute:
			subs++
		}
	}

	kind := req.Kind
	switch {
	case kind == "" && players < m.Capacity():
		kind = balance.KindPlayer
	case kind == "" && subs < m.SubstituteCapacity():
		kind = balance.KindSubstitute
	case kind == "":
		kind = balance.KindSpectator
	case kind == balance.KindPlayer && players >= m.Capacity():
		return Registration{}, fmt.Errorf("join as %s: %w", kind, ErrNoSpotsLeft)
	case kind == balance.KindSubstitute && subs >= m.SubstituteCapacity():
		return Registration{}, fmt.Errorf("join as %s: %w", kind, ErrNoSpotsLeft)
	}

	state := req.State
	if state == "" {
		state = balance.StateNormal
	}

	reg := Registration{
		MatchID:       req.MatchID,
		PlayerID:      req.PlayerID,
		PhysicalState: state,
		Kind:          kind,
		WillAttend:    req.WillAttend,
		RegisteredAt:  s.now(),
	}
	if err := s.Store.UpsertRegistration(ctx, reg); err != nil {
		return Registration{}, fmt.Errorf("save registration: %w", err)
	}

	return reg, nil
}

// Leave removes the registration of the player. A freed player spot goes to
// the substitute who registered first, whose id is returned. The player is
// also taken off the team sheet. Nothing changes when any step fails,
// including a team sheet changed concurrently.
func (s *Service) Leave(ctx context.Context, matchID int64, playerID string) (promoted string, err error) {
	err = s.Store.InTx(ctx, func(tx *Store) error {
		regs, err := tx.ListRegistrations(ctx, matchID)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}

		var leaving *Registration
		for i := range regs {
			if regs[i].PlayerID == playerID {
				leaving = &regs[i]
				break
			}
		}
		if leaving == nil {
			return ErrNotFound
		}

		// the sheet is read first, so any save in between is a version conflict
		cfg, err := tx.GetTeams(ctx, matchID)
		hasSheet := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("get teams: %w", err)
		}

		if err := tx.DeleteRegistration(ctx, matchID, playerID); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}

		if leaving.Kind == balance.KindPlayer {
			for _, r := range regs {
				if r.Kind != balance.KindSubstitute {
					continue
				}
				r.Kind = balance.KindPlayer
				if err := tx.UpsertRegistration(ctx, r); err != nil {
					return fmt.Errorf("promote substitute: %w", err)
				}
				promoted = r.PlayerID
				break
			}
		}

		if !hasSheet {
			return nil
		}

		rest, removed := balance.Remove(cfg.Assignments.V, playerID)
		if !removed {
			return nil
		}

		cfg.Assignments.V = rest
		if _, err := tx.SaveTeams(ctx, cfg, cfg.Version); err != nil {
			return fmt.Errorf("save teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return promoted, nil
}

// Roster lists everyone registered for a match.
type Roster struct {
	Match         Match
	Registrations []Registration
	Players       map[string]Player
}

// Roster returns the registrations of the match in registration order.
func (s *Service) Roster(ctx context.Context, matchID int64) (Roster, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		return Roster{}, fmt.Errorf("get match: %w", err)
	}

	regs, err := s.Store.ListRegistrations(ctx, matchID)
	if err != nil {
		return Roster{}, fmt.Errorf("list registrations: %w", err)
	}

	players, err := s.playersByID(ctx, regs)
	if err != nil {
		return Roster{}, err
	}

	return Roster{Match: m, Registrations: regs, Players: players}, nil
}

// Sheet is the team sheet of a match along with everything needed to show it.
type Sheet struct {
	Match   Match
	Teams   TeamConfig
	Players map[string]Player
	Stats   balance.MatchStats
	// Waitlisted are eligible players left out for lack of spots, set only
	// by BuildTeams.
	Waitlisted []string
}

// BuildTeams splits the attending players of the match into two balanced
// teams and saves the result as the new team sheet. Players beyond the
// capacity of the match are reported in Sheet.Waitlisted.
func (s *Service) BuildTeams(ctx context.Context, matchID int64) (Sheet, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		return Sheet{}, fmt.Errorf("get match: %w", err)
	}

	regs, err := s.Store.ListRegistrations(ctx, matchID)
	if err != nil {
		return Sheet{}, fmt.Errorf("list registrations: %w", err)
	}

	var eligible []Registration
	for _, r := range regs {
		if r.Balance().Eligible() {
			eligible = append(eligible, r)
		}
	}

	players, err := s.playersByID(ctx, eligible)
	if err != nil {
		return Sheet{}, err
	}

	// registration order is the tie breaker between equally rated players
	pool := make([]balance.Player, 0, len(eligible))
	bregs := make([]balance.Registration, 0, len(eligible))
	for _, r := range eligible {
		pool = append(pool, players[r.PlayerID].Balance())
		bregs = append(bregs, r.Balance())
	}

	assignments := s.balancer().Generate(pool, bregs, m.PlayersPerTeam)
	waitlisted := balance.Unassigned(pool, assignments)
	if len(waitlisted) > 0 {
		log.Printf("[WARN] match %d: %d eligible players exceed %d spots, waitlisted: %v",
			matchID, len(pool), m.Capacity(), waitlisted)
	}

	// a rebuilt sheet has to be confirmed again, so a ready match goes back
	// to team building
	var cfg TeamConfig
	err = s.Store.InTx(ctx, func(tx *Store) error {
		var err error
		cfg, err = tx.GetTeams(ctx, matchID)
		switch {
		case errors.Is(err, ErrNotFound):
			cfg = TeamConfig{MatchID: matchID, WhiteName: "White", DarkName: "Dark"}
		case err != nil:
			return fmt.Errorf("get teams: %w", err)
		}

		cfg.Assignments.V = assignments
		if cfg, err = tx.SaveTeams(ctx, cfg, cfg.Version); err != nil {
			return fmt.Errorf("save teams: %w", err)
		}

		if m.Stage != StageTeamBuilding {
			if err := tx.SetMatchStage(ctx, matchID, StageTeamBuilding); err != nil {
				return fmt.Errorf("set match stage: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Sheet{}, err
	}
	m.Stage = StageTeamBuilding

	log.Printf("[INFO] match %d: built teams of %d players, version %d", matchID, len(assignments), cfg.Version)

	return Sheet{
		Match:      m,
		Teams:      cfg,
		Players:    players,
		Stats:      s.stats(assignments, players, regs),
		Waitlisted: waitlisted,
	}, nil
}

// Sheet returns the saved team sheet of the match.
func (s *Service) Sheet(ctx context.Context, matchID int64) (Sheet, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		return Sheet{}, fmt.Errorf("get match: %w", err)
	}

	cfg, err := s.Store.GetTeams(ctx, matchID)
	if err != nil {
		return Sheet{}, fmt.Errorf("get teams: %w", err)
	}

	regs, err := s.Store.ListRegistrations(ctx, matchID)
	if err != nil {
		return Sheet{}, fmt.Errorf("list registrations: %w", err)
	}

	players := make(map[string]Player, len(cfg.Assignments.V))
	if len(cfg.Assignments.V) > 0 {
		ids := make([]string, 0, len(cfg.Assignments.V))
		for _, a := range cfg.Assignments.V {
			ids = append(ids, a.PlayerID)
		}
		list, err := s.Store.ListPlayers(ctx, ids)
		if err != nil {
			return Sheet{}, fmt.Errorf("list players: %w", err)
		}
		for _, pl := range list {
			players[pl.ID] = pl
		}
	}

	return Sheet{
		Match:   m,
		Teams:   cfg,
		Players: players,
		Stats:   s.stats(cfg.Assignments.V, players, regs),
	}, nil
}

// Move puts the player on the team in the role, keeping at most one
// goalkeeper per team and the team size of the match.
func (s *Service) Move(ctx context.Context, matchID int64, playerID string, team balance.Team, role balance.Role) error {
	return s.edit(ctx, matchID, func(m Match, cfg *TeamConfig) (err error) {
		cfg.Assignments.V, err = balance.Reassign(cfg.Assignments.V, playerID, team, role, m.PlayersPerTeam)
		return err
	})
}

// Swap exchanges the places of two players on the team sheet.
func (s *Service) Swap(ctx context.Context, matchID int64, a, b string) error {
	return s.edit(ctx, matchID, func(_ Match, cfg *TeamConfig) (err error) {
		cfg.Assignments.V, err = balance.Swap(cfg.Assignments.V, a, b)
		return err
	})
}

// RenameTeams sets the names the teams are shown with. An empty name keeps
// the current one.
func (s *Service) RenameTeams(ctx context.Context, matchID int64, white, dark string) error {
	return s.edit(ctx, matchID, func(_ Match, cfg *TeamConfig) error {
		if white = strings.TrimSpace(white); white != "" {
			cfg.WhiteName = white
		}
		if dark = strings.TrimSpace(dark); dark != "" {
			cfg.DarkName = dark
		}
		return nil
	})
}

// MarkReady confirms the team sheet of the match and moves the match to the
// ready stage.
func (s *Service) MarkReady(ctx context.Context, matchID int64) (Match, error) {
	var m Match
	err := s.Store.InTx(ctx, func(tx *Store) error {
		var err error
		if m, err = tx.GetMatch(ctx, matchID); err != nil {
			return fmt.Errorf("get match: %w", err)
		}

		cfg, err := tx.GetTeams(ctx, matchID)
		if err != nil {
			return fmt.Errorf("get teams: %w", err)
		}
		if len(cfg.Assignments.V) == 0 {
			return ErrEmptySheet
		}
		if err := balance.Validate(cfg.Assignments.V, m.PlayersPerTeam); err != nil {
			return err
		}

		if err := tx.SetMatchStage(ctx, matchID, StageReady); err != nil {
			return fmt.Errorf("set match stage: %w", err)
		}
		m.Stage = StageReady
		return nil
	})
	if err != nil {
		return Match{}, err
	}
	return m, nil
}

// edit applies fn to the saved team sheet and saves the result, failing with
// ErrVersionConflict if the sheet changed in between.
func (s *Service) edit(ctx context.Context, matchID int64, fn func(Match, *TeamConfig) error) error {
	return s.Store.InTx(ctx, func(tx *Store) error {
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("get match: %w", err)
		}

		cfg, err := tx.GetTeams(ctx, matchID)
		if err != nil {
			return fmt.Errorf("get teams: %w", err)
		}

		if err := fn(m, &cfg); err != nil {
			return err
		}
		if err := balance.Validate(cfg.Assignments.V, m.PlayersPerTeam); err != nil {
			return err
		}

		if _, err := tx.SaveTeams(ctx, cfg, cfg.Version); err != nil {
			return fmt.Errorf("save teams: %w", err)
		}
		return nil
	})
}

func (s *Service) stats(as []balance.Assignment, players map[string]Player, regs []Registration) balance.MatchStats {
	bp := make(map[string]balance.Player, len(players))
	for id, pl := range players {
		bp[id] = pl.Balance()
	}
	bregs := make([]balance.Registration, 0, len(regs))
	for _, r := range regs {
		bregs = append(bregs, r.Balance())
	}
	return s.balancer().Stats(as, bp, bregs)
}

// playersByID loads the players of the registrations, failing with
// ErrMissing if any of them is gone.
func (s *Service) playersByID(ctx context.Context, regs []Registration) (map[string]Player, error) {
	res := make(map[string]Player, len(regs))
	if len(regs) == 0 {
		return res, nil
	}

	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.PlayerID)
	}

	list, err := s.Store.ListPlayers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	for _, pl := range list {
		res[pl.ID] = pl
	}

	var missing ErrMissing
	for _, id := range ids {
		if _, ok := res[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	return res, nil
}
