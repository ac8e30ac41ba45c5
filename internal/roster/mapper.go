package roster

// roleByPosition maps every line position to its coarse role. The
// goalkeeper keeps its own role; anything unmapped counts as a midfielder.
var roleByPosition = map[Position]Role{
	PositionGoalkeeper:        RoleGoalkeeper,
	PositionCenterBack:        RoleDefender,
	PositionFullBack:          RoleDefender,
	PositionWingBack:          RoleDefender,
	PositionHoldingMidfielder: RoleMidfielder,
	PositionMidfielder:        RoleMidfielder,
	PositionAttackingMid:      RoleMidfielder,
	PositionWinger:            RoleAttacker,
	PositionForward:           RoleAttacker,
}

// Role derives the coarse role from the player's position tag.
func (p *Player) Role() Role {
	if role, ok := roleByPosition[p.Position]; ok {
		return role
	}
	return RoleMidfielder
}

// drawPriority orders positions from the back of the pitch forward. The
// team draw sorts on this before rating so every team gets its keeper and
// defenders first.
var drawPriority = map[Position]int{
	PositionGoalkeeper:        0,
	PositionCenterBack:        1,
	PositionFullBack:          1,
	PositionWingBack:          1,
	PositionHoldingMidfielder: 2,
	PositionMidfielder:        3,
	PositionAttackingMid:      3,
	PositionWinger:            4,
	PositionForward:           5,
}

// DrawPriority returns the sort rank of a position for the team draw.
// Unknown positions rank with midfielders.
func DrawPriority(pos Position) int {
	if prio, ok := drawPriority[pos]; ok {
		return prio
	}
	return drawPriority[PositionMidfielder]
}
