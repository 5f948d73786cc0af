package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

// Import is a command to load players and their profiles from a JSON file.
type Import struct {
	StoreLocation string `long:"loc"  env:"LOCATION" description:"Store location" default:"soccer.db"`
	File          string `long:"file" description:"JSON file with players" required:"true"`

	CommonOpts
}

// ImportedPlayer is a record of the import file. Players with a Discord ID
// are linked to that account, the rest are matched by name or added as guests.
type ImportedPlayer struct {
	DiscordID string           `json:"discord_id"`
	Name      string           `json:"name"`
	Profile   *balance.Profile `json:"profile"`
}

// Execute runs the command.
func (im Import) Execute([]string) error {
	data, err := os.ReadFile(im.File)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var records []ImportedPlayer
	if err = json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}

	s, err := store.New(im.StoreLocation)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer s.Close()

	n, err := importPlayers(context.Background(), &store.Service{Store: s}, records)
	if err != nil {
		return err
	}

	log.Printf("[INFO] imported %d of %d players from %s", n, len(records), im.File)
	return nil
}

// importPlayers saves the records and returns how many were imported.
// A broken record is logged and skipped.
func importPlayers(ctx context.Context, svc *store.Service, records []ImportedPlayer) (int, error) {
	existing, err := svc.Store.ListPlayers(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list players: %w", err)
	}

	byName := make(map[string]store.Player, len(existing))
	for _, pl := range existing {
		if pl.DiscordID == "" {
			byName[strings.ToLower(pl.Name)] = pl
		}
	}

	imported := 0
	for i, rec := range records {
		pl, err := importPlayer(ctx, svc, byName, rec)
		if err != nil {
			log.Printf("[WARN] failed to import record %d (%s): %v", i, rec.Name, err)
			continue
		}
		byName[strings.ToLower(pl.Name)] = pl
		imported++
	}

	return imported, nil
}

func importPlayer(ctx context.Context, svc *store.Service, byName map[string]store.Player, rec ImportedPlayer) (store.Player, error) {
	var (
		pl  store.Player
		err error
	)

	switch guest, ok := byName[strings.ToLower(strings.TrimSpace(rec.Name))]; {
	case rec.DiscordID != "":
		pl, err = svc.Register(ctx, rec.DiscordID, rec.Name)
	case ok:
		pl = guest
	default:
		pl, err = svc.AddGuest(ctx, rec.Name)
	}
	if err != nil {
		return store.Player{}, err
	}

	if rec.Profile == nil {
		return pl, nil
	}
	return svc.SetProfile(ctx, pl.ID, *rec.Profile)
}
