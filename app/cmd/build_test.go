package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/bobylevd/soccer-teams-bot/app/store"
)

func prepareMatch(t *testing.T) MatchOpts {
	t.Helper()
	ctx := context.Background()
	loc := filepath.Join(t.TempDir(), "soccer.db")

	s, err := store.New(loc)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	svc := &store.Service{Store: s}
	m, err := svc.CreateMatch(ctx, store.CreateMatchRequest{Name: "Tuesday", StartsAt: time.Now(), PlayersPerTeam: 3})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	for i := 0; i < 6; i++ {
		pl, err := svc.AddGuest(ctx, fmt.Sprintf("guest %d", i))
		if err != nil {
			t.Fatalf("add guest: %v", err)
		}
		if _, err = svc.Join(ctx, store.JoinRequest{MatchID: m.ID, PlayerID: pl.ID, WillAttend: true}); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	return MatchOpts{StoreLocation: loc, MatchID: m.ID}
}

func TestBuildAndTeams(t *testing.T) {
	opts := prepareMatch(t)

	var teamsOut bytes.Buffer
	err := Teams{MatchOpts: opts, out: &teamsOut}.Execute(nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before build, got %v", err)
	}

	var buildOut bytes.Buffer
	if err = (Build{MatchOpts: opts, out: &buildOut}).Execute(nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"Tuesday (3v3)", "version 1", "guest 5", "White: 3 players", "Dark: 3 players"} {
		if !strings.Contains(buildOut.String(), want) {
			t.Errorf("expected %q in:\n%s", want, buildOut.String())
		}
	}

	if err = (Teams{MatchOpts: opts, out: &teamsOut}).Execute(nil); err != nil {
		t.Fatalf("teams: %v", err)
	}
	if teamsOut.String() != buildOut.String() {
		t.Errorf("saved sheet differs from built one:\n%s\nvs\n%s", teamsOut.String(), buildOut.String())
	}

	opts.MatchID = 42
	if err = (Build{MatchOpts: opts, out: &buildOut}).Execute(nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
