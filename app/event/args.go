package event

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
)

var errUsage = errors.New("bad arguments")

// parseMatchID parses a match id as typed in chat, "#12" or "12".
func parseMatchID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("match id %q: %w", s, errUsage)
	}
	return id, nil
}

// parseDiscordRef extracts the user id from a mention, "<@123>" or "<@!123>".
func parseDiscordRef(ref string) string {
	if !strings.HasPrefix(ref, "<@") || !strings.HasSuffix(ref, ">") {
		return ref
	}
	return strings.TrimPrefix(ref[2:len(ref)-1], "!")
}

// parseProfileArgs parses "<position> <spd> <tec> <sta> <def> <att> <pas> [overall]".
// The position may list secondary positions after the preferred one,
// "medio,delantero" or "medio/delantero". Without an explicit overall level
// the rounded mean of the attributes is used.
func parseProfileArgs(args []string) (balance.Profile, error) {
	if len(args) != 7 && len(args) != 8 {
		return balance.Profile{}, errUsage
	}

	nums := make([]float64, 0, 7)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(strings.ReplaceAll(a, ",", "."), 64)
		if err != nil {
			return balance.Profile{}, fmt.Errorf("attribute %q: %w", a, errUsage)
		}
		nums = append(nums, v)
	}

	positions := strings.FieldsFunc(args[0], func(r rune) bool { return r == ',' || r == '/' })
	if len(positions) == 0 {
		return balance.Profile{}, errUsage
	}

	p := balance.Profile{
		PreferredPosition:  positions[0],
		SecondaryPositions: positions[1:],
		Attributes: balance.Attributes{
			Speed:     nums[0],
			Technique: nums[1],
			Stamina:   nums[2],
			Defense:   nums[3],
			Attack:    nums[4],
			Passing:   nums[5],
		},
	}

	if len(nums) == 7 {
		p.OverallLevel = nums[6]
		return p, nil
	}

	var sum float64
	for _, v := range nums {
		sum += v
	}
	p.OverallLevel = math.Round(sum / float64(len(nums)))
	return p, nil
}

// parseJoinArgs reads the optional physical state, registration kind and
// absence mark, in any order. Other words are read as a physical state.
func parseJoinArgs(args []string) (state balance.PhysicalState, kind balance.Kind, attend bool) {
	state, attend = balance.StateNormal, true
	for _, a := range args {
		switch strings.ToLower(a) {
		case "absent", "ausente":
			attend = false
			continue
		}
		if k, err := balance.ParseKind(a); err == nil {
			kind = k
			continue
		}
		state = balance.ParsePhysicalState(a)
	}
	return state, kind, attend
}

// splitPair splits "<a words> | <b words>" into two names.
func splitPair(args []string) (a, b string, err error) {
	left, right, ok := strings.Cut(strings.Join(args, " "), "|")
	a, b = strings.TrimSpace(left), strings.TrimSpace(right)
	if !ok || a == "" || b == "" {
		return "", "", errUsage
	}
	return a, b, nil
}

// splitFor splits "<options> for <name words>" into the options and the
// name of the player they apply to. The name is empty without "for".
func splitFor(args []string) (opts []string, ref string, err error) {
	for i, a := range args {
		if !strings.EqualFold(a, "for") && !strings.EqualFold(a, "para") {
			continue
		}
		ref = strings.Join(args[i+1:], " ")
		if ref == "" {
			return nil, "", errUsage
		}
		return args[:i], ref, nil
	}
	return args, "", nil
}

// startsAtLayout is the format of match start times in chat, always UTC.
const startsAtLayout = "2006-01-02 15:04"

// parseStartsAt parses a start time typed as "2026-10-23 20:30".
func parseStartsAt(args []string) (time.Time, error) {
	t, err := time.Parse(startsAtLayout, strings.Join(args, " "))
	if err != nil {
		return time.Time{}, fmt.Errorf("start time, expected %q: %w", startsAtLayout, errUsage)
	}
	return t, nil
}
