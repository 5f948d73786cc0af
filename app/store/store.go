package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
)

// ErrNotFound indicates that the entity hasn't been found in the database.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict indicates that the team sheet was changed by someone else
// since it was read.
var ErrVersionConflict = errors.New("team sheet was modified concurrently")

// Store provides methods to store/load data.
type Store struct {
	db *sqlx.DB
	q  queryer // db, or the transaction of a store returned to InTx callbacks
}

// queryer is the part of sqlx.DB and sqlx.Tx the store uses.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	Rebind(query string) string
}

// New prepares the database.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite serializes writers anyway, and in-memory databases live per connection
	db.SetMaxOpenConns(1)

	const schema = `
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			discord_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT 'null'
		);
		CREATE UNIQUE INDEX IF NOT EXISTS players_discord_id ON players(discord_id) WHERE discord_id != '';

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			venue TEXT NOT NULL DEFAULT '',
			starts_at DATETIME NOT NULL,
			players_per_team INTEGER NOT NULL,
			stage TEXT NOT NULL DEFAULT 'registration',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS registrations (
			match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL REFERENCES players(id),
			physical_state TEXT NOT NULL DEFAULT 'normal',
			kind TEXT NOT NULL DEFAULT 'player',
			will_attend BOOLEAN NOT NULL DEFAULT TRUE,
			registered_at DATETIME NOT NULL,
			PRIMARY KEY (match_id, player_id)
		);

		CREATE TABLE IF NOT EXISTS team_configurations (
			match_id INTEGER PRIMARY KEY REFERENCES matches(id) ON DELETE CASCADE,
			white_name TEXT NOT NULL DEFAULT '',
			dark_name TEXT NOT NULL DEFAULT '',
			assignments TEXT NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
    `

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// InTx runs fn with a store bound to a single transaction. The transaction
// is committed when fn succeeds and rolled back otherwise. Calls nested in
// fn reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreatePlayer inserts a new player into the storage.
func (s *Store) CreatePlayer(ctx context.Context, pl Player) error {
	const query = `INSERT INTO players (id, discord_id, name, profile)
		VALUES (:id, :discord_id, :name, :profile)`

	if _, err := s.q.NamedExecContext(ctx, query, pl); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}

	return nil
}

// UpdatePlayer updates the mutable fields of the player.
func (s *Store) UpdatePlayer(ctx context.Context, pl Player) error {
	const query = `UPDATE players SET
						discord_id = :discord_id,
						name = :name,
						profile = :profile
					WHERE id = :id`

	res, err := s.q.NamedExecContext(ctx, query, pl)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}

	return expectAffected(res)
}

// GetPlayer returns a player by id.
func (s *Store) GetPlayer(ctx context.Context, id string) (Player, error) {
	return s.getPlayer(ctx, `SELECT * FROM players WHERE id = ?`, id)
}

// GetPlayerByDiscordID returns a player linked to the Discord user.
func (s *Store) GetPlayerByDiscordID(ctx context.Context, discordID string) (Player, error) {
	return s.getPlayer(ctx, `SELECT * FROM players WHERE discord_id = ? AND discord_id != ''`, discordID)
}

func (s *Store) getPlayer(ctx context.Context, query string, arg string) (Player, error) {
	var pl Player
	if err := s.q.GetContext(ctx, &pl, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, ErrNotFound
		}
		return Player{}, fmt.Errorf("get player: %w", err)
	}
	return pl, nil
}

// ListPlayers returns the players with the given ids, all players when no
// ids are given. Unknown ids are skipped.
func (s *Store) ListPlayers(ctx context.Context, ids []string) ([]Player, error) {
	var players []Player

	query, args := `SELECT * FROM players ORDER BY name`, []any{}
	if len(ids) > 0 {
		var err error
		query, args, err = sqlx.In(`SELECT * FROM players WHERE id IN (?) ORDER BY name`, ids)
		if err != nil {
			return nil, fmt.Errorf("build query: %w", err)
		}
		query = s.q.Rebind(query)
	}

	if err := s.q.SelectContext(ctx, &players, query, args...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return players, nil
}

// CreateMatch inserts a new match and returns it with the assigned id.
func (s *Store) CreateMatch(ctx context.Context, m Match) (Match, error) {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.StartsAt = m.StartsAt.UTC()
	if m.Stage == "" {
		m.Stage = StageRegistration
	}

	const query = `INSERT INTO matches (name, venue, starts_at, players_per_team, stage, created_at, updated_at)
		VALUES (:name, :venue, :starts_at, :players_per_team, :stage, :created_at, :updated_at)`

	res, err := s.q.NamedExecContext(ctx, query, m)
	if err != nil {
		return Match{}, fmt.Errorf("insert match: %w", err)
	}

	if m.ID, err = res.LastInsertId(); err != nil {
		return Match{}, fmt.Errorf("get match id: %w", err)
	}

	return m, nil
}

// GetMatch returns a match by id.
func (s *Store) GetMatch(ctx context.Context, id int64) (Match, error) {
	var m Match
	if err := s.q.GetContext(ctx, &m, `SELECT * FROM matches WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// ListMatches returns all matches, newest first.
func (s *Store) ListMatches(ctx context.Context) ([]Match, error) {
	var matches []Match
	if err := s.q.SelectContext(ctx, &matches, `SELECT * FROM matches ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return matches, nil
}

// SetMatchStage moves the match to the given stage.
func (s *Store) SetMatchStage(ctx context.Context, id int64, stage Stage) error {
	res, err := s.q.ExecContext(ctx, `UPDATE matches SET stage = ?, updated_at = ? WHERE id = ?`,
		stage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return expectAffected(res)
}

// UpdateMatch updates the name, venue, start time and stage of the match.
func (s *Store) UpdateMatch(ctx context.Context, m Match) error {
	m.StartsAt = m.StartsAt.UTC()
	m.UpdatedAt = time.Now().UTC()

	const query = `UPDATE matches SET
						name = :name,
						venue = :venue,
						starts_at = :starts_at,
						stage = :stage,
						updated_at = :updated_at
					WHERE id = :id`

	res, err := s.q.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return expectAffected(res)
}

// DeleteMatch removes the match with its registrations and team sheet.
func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	return s.InTx(ctx, func(tx *Store) error {
		for _, query := range []string{
			`DELETE FROM team_configurations WHERE match_id = ?`,
			`DELETE FROM registrations WHERE match_id = ?`,
		} {
			if _, err := tx.q.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("delete match data: %w", err)
			}
		}

		res, err := tx.q.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete match: %w", err)
		}
		return expectAffected(res)
	})
}

// UpsertRegistration creates or replaces the registration of the player for the match.
func (s *Store) UpsertRegistration(ctx context.Context, r Registration) error {
	r.RegisteredAt = r.RegisteredAt.UTC()

	const query = `INSERT INTO registrations (match_id, player_id, physical_state, kind, will_attend, registered_at)
		VALUES (:match_id, :player_id, :physical_state, :kind, :will_attend, :registered_at)
		ON CONFLICT(match_id, player_id) DO UPDATE SET
			physical_state = excluded.physical_state,
			kind = excluded.kind,
			will_attend = excluded.will_attend,
			registered_at = excluded.registered_at`

	if _, err := s.q.NamedExecContext(ctx, query, r); err != nil {
		return fmt.Errorf("upsert registration: %w", err)
	}
	return nil
}

// DeleteRegistration removes the registration of the player for the match.
func (s *Store) DeleteRegistration(ctx context.Context, matchID int64, playerID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM registrations WHERE match_id = ? AND player_id = ?`,
		matchID, playerID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return expectAffected(res)
}

// ListRegistrations returns the registrations of the match in registration order.
func (s *Store) ListRegistrations(ctx context.Context, matchID int64) ([]Registration, error) {
	var regs []Registration
	if err := s.q.SelectContext(ctx, &regs, `SELECT * FROM registrations WHERE match_id = ?`, matchID); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	sort.SliceStable(regs, func(i, j int) bool {
		if !regs[i].RegisteredAt.Equal(regs[j].RegisteredAt) {
			return regs[i].RegisteredAt.Before(regs[j].RegisteredAt)
		}
		return regs[i].PlayerID < regs[j].PlayerID
	})

	return regs, nil
}

// GetTeams returns the team sheet of the match.
func (s *Store) GetTeams(ctx context.Context, matchID int64) (TeamConfig, error) {
	var cfg TeamConfig
	if err := s.q.GetContext(ctx, &cfg, `SELECT * FROM team_configurations WHERE match_id = ?`, matchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TeamConfig{}, ErrNotFound
		}
		return TeamConfig{}, fmt.Errorf("get team configuration: %w", err)
	}
	return cfg, nil
}

// SaveTeams stores the full team sheet, replacing the previous one.
// expectedVersion is the version the caller read, zero when there was none.
// The save fails with ErrVersionConflict if the stored version differs.
func (s *Store) SaveTeams(ctx context.Context, cfg TeamConfig, expectedVersion int) (TeamConfig, error) {
	now := time.Now().UTC()
	cfg.UpdatedAt = now
	cfg.Version = expectedVersion + 1
	if cfg.Assignments.V == nil {
		cfg.Assignments.V = []balance.Assignment{}
	}

	var (
		res sql.Result
		err error
	)

	if expectedVersion == 0 {
		cfg.CreatedAt = now
		const query = `INSERT INTO team_configurations
				(match_id, white_name, dark_name, assignments, version, created_at, updated_at)
			VALUES (:match_id, :white_name, :dark_name, :assignments, :version, :created_at, :updated_at)
			ON CONFLICT(match_id) DO NOTHING`
		res, err = s.q.NamedExecContext(ctx, query, cfg)
	} else {
		const query = `UPDATE team_configurations SET
				white_name = :white_name,
				dark_name = :dark_name,
				assignments = :assignments,
				version = :version,
				updated_at = :updated_at
			WHERE match_id = :match_id AND version = :expected_version`
		res, err = s.q.NamedExecContext(ctx, query, struct {
			TeamConfig
			ExpectedVersion int `db:"expected_version"`
		}{cfg, expectedVersion})
	}
	if err != nil {
		return TeamConfig{}, fmt.Errorf("save team configuration: %w", err)
	}

	if err := expectAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return TeamConfig{}, ErrVersionConflict
		}
		return TeamConfig{}, err
	}

	return cfg, nil
}

// expectAffected returns ErrNotFound if the statement changed no rows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
