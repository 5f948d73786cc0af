package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

// Discord is a handler for Discord commands.
type Discord struct {
	Token          string
	AdminIDs       []string
	Service        *store.Service
	HandlerTimeout time.Duration
	se             *discordgo.Session
}

type command struct {
	fn    func(ctx context.Context, args []string) (reply string, err error)
	admin bool
	usage string
}

// Run runs the Discord handler.
// Blocking call.
func (d *Discord) Run(ctx context.Context) error {
	if d.HandlerTimeout == 0 {
		d.HandlerTimeout = 5 * time.Second
	}

	se, err := discordgo.New(fmt.Sprintf("Bot %s", d.Token))
	if err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	d.se = se
	d.se.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	d.se.AddHandler(d.onMessage)

	log.Printf("[INFO] opening discord session")
	if err := d.se.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()

	log.Printf("[WARN] stopping bot with reason: %v", context.Cause(ctx))
	if err := d.se.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}

	return nil
}

func (d *Discord) onMessage(s *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author.ID == s.State.User.ID {
		return // ignore messages from the bot
	}

	log.Printf("[DEBUG] received message from %s: %s", msg.ChannelID, msg.Content)

	ctx, cancel := context.WithTimeout(context.Background(), d.HandlerTimeout)
	defer cancel()

	reply, ok := d.handle(ctx, msg.Author.ID, msg.Content)
	if !ok {
		return // do nothing
	}

	replyTo := &discordgo.MessageReference{MessageID: msg.ID, ChannelID: msg.ChannelID}
	if _, err := s.ChannelMessageSendReply(msg.ChannelID, reply, replyTo); err != nil {
		log.Printf("[WARN] failed to send message: %v", err)
	}
}

// handle runs the command in the message on behalf of the author and
// returns the reply. It reports false when the message is not a command
// the author may run.
func (d *Discord) handle(ctx context.Context, authorID, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" || !strings.HasPrefix(content, "!") {
		return "", false
	}

	fields := strings.Fields(content)
	cmd, ok := d.commands()[strings.ToLower(fields[0])]
	if !ok || (cmd.admin && !d.isAdmin(authorID)) {
		return "", false
	}

	ctx = context.WithValue(ctx, senderIDKey{}, authorID)

	reply, err := cmd.fn(ctx, fields[1:]) // first word is the command itself
	switch {
	case errors.Is(err, errUsage):
		return "usage: " + cmd.usage, true
	case err != nil:
		if r, ok := explain(err); ok {
			return r, true
		}
		log.Printf("[WARN] failed to execute command %s: %v", fields[0], err)
		return "failed to execute command, check logs", true
	}

	return reply, true
}

func (d *Discord) commands() map[string]command {
	return map[string]command{
		"!register":   {fn: d.register, usage: "!register [name]"},
		"!guest":      {fn: d.guest, usage: "!guest <name>"},
		"!profile":    {fn: d.profile, usage: "!profile <position> <spd> <tec> <sta> <def> <att> <pas> [overall]"},
		"!newmatch":    {fn: d.newMatch, admin: true, usage: "!newmatch <perTeam> <name>"},
		"!editmatch":   {fn: d.editMatch, admin: true, usage: "!editmatch <match> name|venue|at <value>"},
		"!cancelmatch": {fn: d.cancelMatch, admin: true, usage: "!cancelmatch <match>"},
		"!matches":     {fn: d.matches, usage: "!matches"},
		"!join":        {fn: d.join, usage: "!join <match> [state] [kind] [absent] [for <name>]"},
		"!leave":       {fn: d.leave, usage: "!leave <match> [for <name>]"},
		"!roster":      {fn: d.roster, usage: "!roster <match>"},
		"!buildteams":  {fn: d.buildTeams, admin: true, usage: "!buildteams <match>"},
		"!teams":       {fn: d.teams, usage: "!teams <match>"},
		"!teamnames":   {fn: d.teamNames, admin: true, usage: "!teamnames <match> <white> | <dark>"},
		"!move":        {fn: d.move, admin: true, usage: "!move <match> <team> <role> <name>"},
		"!swap":        {fn: d.swap, admin: true, usage: "!swap <match> <name> | <name>"},
		"!ready":       {fn: d.ready, admin: true, usage: "!ready <match>"},
		"!ping":        {fn: d.ping, usage: "!ping"},
		"!help":        {fn: d.help, usage: "!help"},
	}
}

// explain maps errors the user can act on to a reply.
func explain(err error) (string, bool) {
	var missing store.ErrMissing
	switch {
	case errors.As(err, &missing):
		return missing.Error(), true
	case errors.Is(err, store.ErrNotFound):
		return "not found", true
	case errors.Is(err, store.ErrVersionConflict):
		return "the team sheet was changed by someone else, try again", true
	case errors.Is(err, store.ErrNoSpotsLeft),
		errors.Is(err, store.ErrInvalidTeamSize),
		errors.Is(err, store.ErrEmptySheet),
		errors.Is(err, store.ErrInvalidProfile),
		errors.Is(err, balance.ErrGoalkeeperTaken),
		errors.Is(err, balance.ErrTeamFull),
		errors.Is(err, balance.ErrNotAssigned),
		errors.Is(err, balance.ErrInvalidAssignment):
		return err.Error(), true
	}
	return "", false
}

func (d *Discord) register(ctx context.Context, args []string) (string, error) {
	pl, err := d.Service.Register(ctx, senderID(ctx), strings.Join(args, " "))
	if err != nil {
		return "", fmt.Errorf("register player: %w", err)
	}

	if pl.Name == "" {
		return "player registered", nil
	}
	return fmt.Sprintf("player registered as %s", pl.Name), nil
}

func (d *Discord) guest(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}

	pl, err := d.Service.AddGuest(ctx, strings.Join(args, " "))
	if err != nil {
		return "", fmt.Errorf("add guest: %w", err)
	}

	return fmt.Sprintf("guest %s added", pl.Name), nil
}

func (d *Discord) profile(ctx context.Context, args []string) (string, error) {
	p, err := parseProfileArgs(args)
	if err != nil {
		return "", err
	}

	pl, err := d.Service.Register(ctx, senderID(ctx), "")
	if err != nil {
		return "", fmt.Errorf("register player: %w", err)
	}

	if pl, err = d.Service.SetProfile(ctx, pl.ID, p); err != nil {
		return "", fmt.Errorf("set profile: %w", err)
	}

	reply := fmt.Sprintf("profile saved, plays as %s", balance.PreferredRole(pl.Balance()))
	if len(p.SecondaryPositions) > 0 {
		also := make([]string, 0, len(p.SecondaryPositions))
		for _, pos := range p.SecondaryPositions {
			also = append(also, string(balance.PositionRole(pos)))
		}
		reply += ", also " + strings.Join(also, ", ")
	}
	return reply, nil
}

func (d *Discord) newMatch(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", errUsage
	}

	perTeam, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errUsage
	}

	m, err := d.Service.CreateMatch(ctx, store.CreateMatchRequest{
		Name:           strings.Join(args[1:], " "),
		StartsAt:       time.Now(),
		PlayersPerTeam: perTeam,
	})
	if err != nil {
		return "", fmt.Errorf("create match: %w", err)
	}

	return fmt.Sprintf("match %s created, join with !join %d", m, m.ID), nil
}

func (d *Discord) editMatch(ctx context.Context, args []string) (string, error) {
	if len(args) < 3 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	var upd store.MatchUpdate
	value := strings.Join(args[2:], " ")
	switch strings.ToLower(args[1]) {
	case "name":
		upd.Name = &value
	case "venue":
		upd.Venue = &value
	case "at":
		startsAt, err := parseStartsAt(args[2:])
		if err != nil {
			return "", err
		}
		upd.StartsAt = &startsAt
	default:
		return "", errUsage
	}

	m, err := d.Service.UpdateMatch(ctx, matchID, upd)
	if err != nil {
		return "", fmt.Errorf("update match: %w", err)
	}

	reply := fmt.Sprintf("match %s, starts %s UTC", m, m.StartsAt.UTC().Format(startsAtLayout))
	if m.Venue != "" {
		reply += " at " + m.Venue
	}
	return reply, nil
}

func (d *Discord) cancelMatch(ctx context.Context, args []string) (string, error) {
	matchID, err := singleMatchID(args)
	if err != nil {
		return "", err
	}

	if err = d.Service.CancelMatch(ctx, matchID); err != nil {
		return "", fmt.Errorf("cancel match: %w", err)
	}
	return fmt.Sprintf("match #%d cancelled", matchID), nil
}

func (d *Discord) matches(ctx context.Context, _ []string) (string, error) {
	list, err := d.Service.Store.ListMatches(ctx)
	if err != nil {
		return "", fmt.Errorf("list matches: %w", err)
	}
	return codeBlock(RenderMatches(list)), nil
}

func (d *Discord) join(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	opts, ref, err := splitFor(args[1:])
	if err != nil {
		return "", err
	}

	// guests and friends are signed up by whoever names them
	var pl store.Player
	subject := "joined"
	if ref == "" {
		if pl, err = d.Service.Register(ctx, senderID(ctx), ""); err != nil {
			return "", fmt.Errorf("register player: %w", err)
		}
	} else {
		if pl, err = d.findPlayer(ctx, ref); err != nil {
			return "", err
		}
		subject = orDefault(pl.Name, pl.DiscordRef()) + " joined"
	}

	state, kind, attend := parseJoinArgs(opts)
	reg, err := d.Service.Join(ctx, store.JoinRequest{
		MatchID:    matchID,
		PlayerID:   pl.ID,
		State:      state,
		Kind:       kind,
		WillAttend: attend,
	})
	if err != nil {
		return "", fmt.Errorf("join match: %w", err)
	}

	reply := fmt.Sprintf("%s match #%d as %s, feeling %s", subject, matchID, reg.Kind, reg.PhysicalState)
	if !reg.WillAttend {
		reply += ", marked absent"
	}
	return reply, nil
}

// leave takes the sender off the match. Admins may take anyone off with
// "for <name>".
func (d *Discord) leave(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	opts, ref, err := splitFor(args[1:])
	if err != nil || len(opts) > 0 || (ref != "" && !d.isAdmin(senderID(ctx))) {
		return "", errUsage
	}

	var pl store.Player
	if ref == "" {
		pl, err = d.Service.Store.GetPlayerByDiscordID(ctx, senderID(ctx))
	} else {
		pl, err = d.findPlayer(ctx, ref)
	}
	if err != nil {
		return "", fmt.Errorf("get player: %w", err)
	}

	promoted, err := d.Service.Leave(ctx, matchID, pl.ID)
	if err != nil {
		return "", fmt.Errorf("leave match: %w", err)
	}

	if promoted == "" {
		return fmt.Sprintf("left match #%d", matchID), nil
	}

	sub, err := d.Service.Store.GetPlayer(ctx, promoted)
	if err != nil {
		return "", fmt.Errorf("get promoted player: %w", err)
	}
	return fmt.Sprintf("left match #%d, %s takes the spot", matchID, sub.DiscordRef()), nil
}

func (d *Discord) roster(ctx context.Context, args []string) (string, error) {
	matchID, err := singleMatchID(args)
	if err != nil {
		return "", err
	}

	r, err := d.Service.Roster(ctx, matchID)
	if err != nil {
		return "", fmt.Errorf("get roster: %w", err)
	}

	d.fillNames(ctx, r.Players)
	return codeBlock(RenderRoster(r)), nil
}

func (d *Discord) buildTeams(ctx context.Context, args []string) (string, error) {
	matchID, err := singleMatchID(args)
	if err != nil {
		return "", err
	}

	sh, err := d.Service.BuildTeams(ctx, matchID)
	if err != nil {
		return "", fmt.Errorf("build teams: %w", err)
	}

	d.fillNames(ctx, sh.Players)
	return codeBlock(RenderSheet(sh)), nil
}

func (d *Discord) teams(ctx context.Context, args []string) (string, error) {
	matchID, err := singleMatchID(args)
	if err != nil {
		return "", err
	}

	sh, err := d.Service.Sheet(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Sprintf("no teams for match #%d yet", matchID), nil
		}
		return "", fmt.Errorf("get team sheet: %w", err)
	}

	d.fillNames(ctx, sh.Players)
	return codeBlock(RenderSheet(sh)), nil
}

func (d *Discord) teamNames(ctx context.Context, args []string) (string, error) {
	if len(args) < 4 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	white, dark, err := splitPair(args[1:])
	if err != nil {
		return "", err
	}

	if err = d.Service.RenameTeams(ctx, matchID, white, dark); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Sprintf("no teams for match #%d yet", matchID), nil
		}
		return "", fmt.Errorf("rename teams: %w", err)
	}
	return fmt.Sprintf("%s against %s", white, dark), nil
}

func (d *Discord) ready(ctx context.Context, args []string) (string, error) {
	matchID, err := singleMatchID(args)
	if err != nil {
		return "", err
	}

	m, err := d.Service.MarkReady(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Sprintf("no teams for match #%d yet", matchID), nil
		}
		return "", fmt.Errorf("mark ready: %w", err)
	}
	return fmt.Sprintf("match %s is %s, teams are final", m, m.Stage), nil
}

func (d *Discord) move(ctx context.Context, args []string) (string, error) {
	if len(args) < 4 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	team, err := balance.ParseTeam(args[1])
	if err != nil {
		return "", errUsage
	}

	role, err := balance.ParseRole(args[2])
	if err != nil {
		return "", errUsage
	}

	pl, err := d.findPlayer(ctx, strings.Join(args[3:], " "))
	if err != nil {
		return "", err
	}

	if err = d.Service.Move(ctx, matchID, pl.ID, team, role); err != nil {
		return "", fmt.Errorf("move player: %w", err)
	}

	return fmt.Sprintf("%s moved to %s as %s", pl.Name, team, role), nil
}

func (d *Discord) swap(ctx context.Context, args []string) (string, error) {
	if len(args) < 4 {
		return "", errUsage
	}

	matchID, err := parseMatchID(args[0])
	if err != nil {
		return "", err
	}

	nameA, nameB, err := splitPair(args[1:])
	if err != nil {
		return "", err
	}

	a, err := d.findPlayer(ctx, nameA)
	if err != nil {
		return "", err
	}
	b, err := d.findPlayer(ctx, nameB)
	if err != nil {
		return "", err
	}

	if err = d.Service.Swap(ctx, matchID, a.ID, b.ID); err != nil {
		return "", fmt.Errorf("swap players: %w", err)
	}

	return fmt.Sprintf("%s and %s swapped", a.Name, b.Name), nil
}

// findPlayer resolves a mention or a typed name to a player.
func (d *Discord) findPlayer(ctx context.Context, ref string) (store.Player, error) {
	if id := parseDiscordRef(ref); id != ref {
		pl, err := d.Service.Store.GetPlayerByDiscordID(ctx, id)
		if err != nil {
			return store.Player{}, fmt.Errorf("get player %s: %w", ref, err)
		}
		return pl, nil
	}

	pl, err := d.Service.FindPlayer(ctx, ref)
	if err != nil {
		return store.Player{}, fmt.Errorf("find player %q: %w", ref, err)
	}
	return pl, nil
}

// fillNames sets Discord usernames for players registered without a name.
func (d *Discord) fillNames(ctx context.Context, players map[string]store.Player) {
	if d.se == nil {
		return
	}

	var unnamed []store.Player
	for _, pl := range players {
		if pl.Name == "" && pl.DiscordID != "" {
			unnamed = append(unnamed, pl)
		}
	}

	mu := &sync.Mutex{}
	names := make(map[string]string, len(unnamed))

	ewg, _ := errgroup.WithContext(ctx)
	for _, pl := range unnamed {
		pl := pl
		ewg.Go(func() error {
			u, err := d.se.User(pl.DiscordID)
			if err != nil {
				log.Printf("[WARN] failed to get user %s: %v", pl.DiscordID, err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			names[pl.ID] = u.Username
			return nil
		})
	}
	_ = ewg.Wait()

	for id, name := range names {
		pl := players[id]
		pl.Name = name
		players[id] = pl
	}
}

func singleMatchID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	return parseMatchID(args[0])
}

func (d *Discord) isAdmin(discordID string) bool {
	for _, id := range d.AdminIDs {
		if discordID == id {
			return true
		}
	}
	return false
}

func (d *Discord) ping(context.Context, []string) (string, error) { return "pong!", nil }

func (d *Discord) help(context.Context, []string) (reply string, err error) {
	return `
!register [name] - register yourself, optionally with a display name
!guest <name> - add a friend without a discord account
!profile <position> <spd> <tec> <sta> <def> <att> <pas> [overall] - set your skills, 1 to 10
!newmatch <perTeam> <name> - admins only, schedule a match
!editmatch <match> name|venue|at <value> - admins only, change match details, "at" is "2006-01-02 15:04" UTC
!cancelmatch <match> - admins only, remove a match
!matches - list matches
!join <match> [tired|normal|excellent] [player|substitute|spectator] [absent] [for <name>] - sign up yourself or a guest
!leave <match> [for <name>] - leave a match, the first substitute takes your spot, "for" is for admins
!roster <match> - who is coming
!buildteams <match> - admins only, build balanced teams
!teams <match> - show the team sheet
!teamnames <match> <white> | <dark> - admins only, name the teams
!move <match> <white|dark> <role> <name> - admins only, move a player
!swap <match> <name> | <name> - admins only, swap two players
!ready <match> - admins only, confirm the teams
!ping - pong!
!help - this message
	`, nil
}

type senderIDKey struct{}

func senderID(ctx context.Context) string {
	if v := ctx.Value(senderIDKey{}); v != nil {
		return v.(string)
	}
	return ""
}
