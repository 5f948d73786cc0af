package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

func TestImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "players.json")
	loc := filepath.Join(dir, "soccer.db")

	const data = `[
		{"discord_id": "100", "name": "Diego", "profile": {"preferred_position": "Delantero",
			"attributes": {"speed": 9, "technique": 10, "stamina": 7, "defense": 3, "attack": 10, "passing": 9},
			"overall_level": 9}},
		{"name": "Tano"},
		{"name": "tano", "profile": {"preferred_position": "Arquero",
			"attributes": {"speed": 4, "technique": 5, "stamina": 6, "defense": 8, "attack": 2, "passing": 5},
			"overall_level": 6}},
		{"name": "Broken", "profile": {"preferred_position": "Medio",
			"attributes": {"speed": 40, "technique": 5, "stamina": 6, "defense": 8, "attack": 2, "passing": 5},
			"overall_level": 6}},
		{"name": ""}
	]`
	if err := os.WriteFile(file, []byte(data), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := (Import{StoreLocation: loc, File: file}).Execute(nil); err != nil {
		t.Fatalf("import: %v", err)
	}

	s, err := store.New(loc)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	diego, err := s.GetPlayerByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("get diego: %v", err)
	}
	if diego.Name != "Diego" || balance.PreferredRole(diego.Balance()) != balance.RoleForward {
		t.Fatalf("unexpected player %+v", diego)
	}

	players, err := s.ListPlayers(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Diego, Tano once, and Broken created before its profile was rejected
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %+v", players)
	}
	for _, pl := range players {
		if pl.Name == "Tano" && (pl.Profile.V == nil || pl.Profile.V.OverallLevel != 6) {
			t.Fatalf("expected the second Tano record to set the profile, got %+v", pl.Profile.V)
		}
	}

	if err = (Import{StoreLocation: loc, File: filepath.Join(dir, "missing.json")}).Execute(nil); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
