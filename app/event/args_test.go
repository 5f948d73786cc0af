package event

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
)

func TestParseMatchID(t *testing.T) {
	tbl := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"#7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tbl {
		got, err := parseMatchID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errUsage) {
				t.Errorf("%q: expected usage error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestParseDiscordRef(t *testing.T) {
	tbl := map[string]string{
		"<@123>":  "123",
		"<@!456>": "456",
		"Diego":   "Diego",
		"<@":      "<@",
	}
	for in, want := range tbl {
		if got := parseDiscordRef(in); got != want {
			t.Errorf("parseDiscordRef(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseProfileArgs(t *testing.T) {
	p, err := parseProfileArgs([]string{"Delantero", "9", "10", "7", "3", "10", "9", "9"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := balance.Attributes{Speed: 9, Technique: 10, Stamina: 7, Defense: 3, Attack: 10, Passing: 9}
	if p.PreferredPosition != "Delantero" || p.Attributes != want || p.OverallLevel != 9 {
		t.Fatalf("unexpected profile %+v", p)
	}

	// overall level defaults to the rounded mean, decimal commas are accepted
	p, err = parseProfileArgs([]string{"medio", "6", "6,5", "7", "5", "6", "8"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Attributes.Technique != 6.5 || p.OverallLevel != 6 {
		t.Fatalf("unexpected profile %+v", p)
	}

	p, err = parseProfileArgs([]string{"Medio,Delantero/Defensa", "6", "6", "6", "6", "6", "6"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.PreferredPosition != "Medio" || len(p.SecondaryPositions) != 2 ||
		p.SecondaryPositions[0] != "Delantero" || p.SecondaryPositions[1] != "Defensa" {
		t.Fatalf("unexpected positions %q, %q", p.PreferredPosition, p.SecondaryPositions)
	}

	for _, args := range [][]string{
		nil,
		{",/", "1", "2", "3", "4", "5", "6"},
		{"medio", "1", "2", "3"},
		{"medio", "1", "2", "3", "4", "5", "x"},
		{"medio", "1", "2", "3", "4", "5", "6", "7", "8"},
	} {
		if _, err := parseProfileArgs(args); !errors.Is(err, errUsage) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestParseJoinArgs(t *testing.T) {
	tbl := []struct {
		args   []string
		state  balance.PhysicalState
		kind   balance.Kind
		attend bool
	}{
		{nil, balance.StateNormal, "", true},
		{[]string{"cansado"}, balance.StateTired, "", true},
		{[]string{"suplente", "excellent"}, balance.StateExcellent, balance.KindSubstitute, true},
		{[]string{"hinchada", "ausente"}, balance.StateNormal, balance.KindSpectator, false},
		{[]string{"whatever"}, balance.StateNormal, "", true},
	}

	for _, tt := range tbl {
		state, kind, attend := parseJoinArgs(tt.args)
		if state != tt.state || kind != tt.kind || attend != tt.attend {
			t.Errorf("%v: got %s/%s/%t, want %s/%s/%t", tt.args, state, kind, attend, tt.state, tt.kind, tt.attend)
		}
	}
}

func TestSplitPair(t *testing.T) {
	a, b, err := splitPair([]string{"Lionel", "Messi", "|", "Diego", "Maradona"})
	if err != nil || a != "Lionel Messi" || b != "Diego Maradona" {
		t.Fatalf("got %q, %q, %v", a, b, err)
	}

	a, b, err = splitPair([]string{"Tano|Pelusa"})
	if err != nil || a != "Tano" || b != "Pelusa" {
		t.Fatalf("got %q, %q, %v", a, b, err)
	}

	for _, args := range [][]string{{"Tano", "Pelusa"}, {"|", "Pelusa"}, {"Tano", "|"}} {
		if _, _, err := splitPair(args); !errors.Is(err, errUsage) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestSplitFor(t *testing.T) {
	tbl := []struct {
		in      string
		opts    string
		ref     string
		wantErr bool
	}{
		{"tired substitute", "tired substitute", "", false},
		{"", "", "", false},
		{"tired for Juan Roman", "tired", "Juan Roman", false},
		{"FOR <@42>", "", "<@42>", false},
		{"cansado para Tano", "cansado", "Tano", false},
		{"tired for", "", "", true},
	}

	for _, tt := range tbl {
		opts, ref, err := splitFor(strings.Fields(tt.in))
		if tt.wantErr {
			if !errors.Is(err, errUsage) {
				t.Errorf("%q: expected usage error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || strings.Join(opts, " ") != tt.opts || ref != tt.ref {
			t.Errorf("%q: got %q, %q, %v", tt.in, opts, ref, err)
		}
	}
}

func TestParseStartsAt(t *testing.T) {
	got, err := parseStartsAt([]string{"2026-10-23", "20:30"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2026, 10, 23, 20, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for _, in := range []string{"", "tomorrow", "2026-10-23", "23/10/2026 20:30"} {
		if _, err := parseStartsAt(strings.Fields(in)); !errors.Is(err, errUsage) {
			t.Errorf("%q: expected usage error, got %v", in, err)
		}
	}
}
