package balance

import (
	"errors"
	"fmt"
)

// Errors returned by manual edits of a team sheet.
var (
	ErrGoalkeeperTaken   = errors.New("team already has a goalkeeper")
	ErrTeamFull          = errors.New("team is full")
	ErrNotAssigned       = errors.New("player is not assigned to a team")
	ErrDuplicatePlayer   = errors.New("player assigned more than once")
	ErrInvalidAssignment = errors.New("invalid team or role")
)

// Validate checks that every assignment has a known team and role, no player
// appears twice, no team has more than one goalkeeper and, when
// playersPerTeam is positive, no team has more than playersPerTeam players.
func Validate(assignments []Assignment, playersPerTeam int) error {
	seen := make(map[string]bool, len(assignments))
	sizes := map[Team]int{}
	keepers := map[Team]int{}

	for _, a := range assignments {
		if !a.Team.Valid() || !a.Role.Valid() {
			return fmt.Errorf("player %s: %w", a.PlayerID, ErrInvalidAssignment)
		}
		if seen[a.PlayerID] {
			return fmt.Errorf("player %s: %w", a.PlayerID, ErrDuplicatePlayer)
		}
		seen[a.PlayerID] = true

		sizes[a.Team]++
		if playersPerTeam > 0 && sizes[a.Team] > playersPerTeam {
			return fmt.Errorf("%s: %w", a.Team, ErrTeamFull)
		}
		if a.Role == RoleGoalkeeper {
			keepers[a.Team]++
			if keepers[a.Team] > 1 {
				return fmt.Errorf("%s: %w", a.Team, ErrGoalkeeperTaken)
			}
		}
	}

	return nil
}

// Reassign moves the player to the team and role, adding the player if not
// assigned yet. The player gets the default point of the next free slot of
// the role. The input is left untouched.
func Reassign(assignments []Assignment, playerID string, team Team, role Role, playersPerTeam int) ([]Assignment, error) {
	if !team.Valid() || !role.Valid() {
		return nil, ErrInvalidAssignment
	}

	idx := -1
	size, slot := 0, 0
	for i, a := range assignments {
		if a.PlayerID == playerID {
			idx = i
			continue
		}
		if a.Team != team {
			continue
		}
		size++
		if a.Role == role {
			slot++
			if role == RoleGoalkeeper {
				return nil, fmt.Errorf("%s: %w", team, ErrGoalkeeperTaken)
			}
		}
	}

	res := clone(assignments)
	if idx >= 0 && res[idx].Team == team && res[idx].Role == role {
		return res, nil
	}
	if playersPerTeam > 0 && size >= playersPerTeam {
		return nil, fmt.Errorf("%s: %w", team, ErrTeamFull)
	}

	pt := DefaultPosition(role, team, slot)
	moved := Assignment{PlayerID: playerID, Team: team, Role: role, X: pt.X, Y: pt.Y}
	if idx < 0 {
		return append(res, moved), nil
	}
	res[idx] = moved
	return res, nil
}

// Swap exchanges the team, role and point of two assigned players.
func Swap(assignments []Assignment, a, b string) ([]Assignment, error) {
	ia, ib := -1, -1
	for i, asg := range assignments {
		switch asg.PlayerID {
		case a:
			ia = i
		case b:
			ib = i
		}
	}
	if ia < 0 {
		return nil, fmt.Errorf("player %s: %w", a, ErrNotAssigned)
	}
	if a == b {
		return clone(assignments), nil
	}
	if ib < 0 {
		return nil, fmt.Errorf("player %s: %w", b, ErrNotAssigned)
	}

	res := clone(assignments)
	res[ia].PlayerID, res[ib].PlayerID = res[ib].PlayerID, res[ia].PlayerID
	return res, nil
}

// Remove drops the assignment of the player. It reports false when the
// player was not assigned.
func Remove(assignments []Assignment, playerID string) ([]Assignment, bool) {
	res := make([]Assignment, 0, len(assignments))
	found := false
	for _, a := range assignments {
		if a.PlayerID == playerID {
			found = true
			continue
		}
		res = append(res, a)
	}
	return res, found
}

func clone(assignments []Assignment) []Assignment {
	res := make([]Assignment, len(assignments))
	copy(res, assignments)
	return res
}
