package balance

// anchors for the white side, which defends the goal at y=0. The dark side
// mirrors them across the center line.
var (
	goalkeeperAnchors = [...]Point{{50, 8}}
	defenderAnchors   = [...]Point{{20, 15}, {40, 15}, {60, 15}, {80, 15}}
	midfielderAnchors = [...]Point{{25, 25}, {50, 25}, {75, 25}}
	forwardAnchors    = [...]Point{{30, 37}, {50, 40}, {70, 37}}
)

// DefaultPosition returns the default point of the slot-th player of the
// role within the team. Slots past the end of a line wrap around.
func DefaultPosition(role Role, team Team, slot int) Point {
	var anchors []Point
	switch role {
	case RoleGoalkeeper:
		anchors = goalkeeperAnchors[:]
	case RoleDefender:
		anchors = defenderAnchors[:]
	case RoleForward:
		anchors = forwardAnchors[:]
	default:
		anchors = midfielderAnchors[:]
	}

	idx := slot % len(anchors)
	if idx < 0 {
		idx += len(anchors)
	}

	pt := anchors[idx]
	if team == TeamDark {
		pt.Y = 100 - pt.Y
	}
	return pt
}

// place fills in default coordinates, numbering slots per team and role in
// the order the assignments appear.
func place(assignments []Assignment) {
	slots := map[Team]RoleCounts{TeamWhite: {}, TeamDark: {}}
	for i, a := range assignments {
		pt := DefaultPosition(a.Role, a.Team, slots[a.Team][a.Role])
		slots[a.Team][a.Role]++
		assignments[i].X, assignments[i].Y = pt.X, pt.Y
	}
}
