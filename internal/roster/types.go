package roster

import (
	"github.com/peladaclub/rachao/internal/rating"
)

// Role is the coarse role a player fills on the pitch, derived from the
// detailed position tag.
type Role string

const (
	RoleGoalkeeper Role = "goalkeeper"
	RoleDefender   Role = "defender"
	RoleMidfielder Role = "midfielder"
	RoleAttacker   Role = "attacker"
)

// Position is the detailed position tag stored on a player profile.
type Position string

const (
	PositionGoalkeeper        Position = "GK"
	PositionCenterBack        Position = "CB"
	PositionFullBack          Position = "FB"
	PositionWingBack          Position = "WB"
	PositionHoldingMidfielder Position = "CDM"
	PositionMidfielder        Position = "CM"
	PositionAttackingMid      Position = "CAM"
	PositionWinger            Position = "W"
	PositionForward           Position = "ST"
)

// DrawType selects which skill map feeds the team draw.
type DrawType string

const (
	DrawSelf  DrawType = "self"
	DrawPeer  DrawType = "peer"
	DrawAdmin DrawType = "admin"
)

// Player is a roster record. The session engine only reads players and
// requests updates through the Store; the roster owns the data.
type Player struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Position      Position        `json:"position"`
	SelfSkills    rating.SkillMap `json:"self_skills"`
	PeerSkills    rating.SkillMap `json:"peer_skills,omitempty"`
	AdminSkills   rating.SkillMap `json:"admin_skills,omitempty"`
	MatchesPlayed int             `json:"matches_played"`
}

// PlayerUpdate carries the partial fields of an update request. Nil maps
// and nil counters leave the stored value untouched.
type PlayerUpdate struct {
	SelfSkills    rating.SkillMap
	PeerSkills    rating.SkillMap
	AdminSkills   rating.SkillMap
	MatchesPlayed *int
}

// Skills returns the skill map selected by the draw type, falling back to
// the self-assessed map when the preferred source is absent.
func (p *Player) Skills(dt DrawType) rating.SkillMap {
	switch dt {
	case DrawPeer:
		if len(p.PeerSkills) > 0 {
			return p.PeerSkills
		}
	case DrawAdmin:
		if len(p.AdminSkills) > 0 {
			return p.AdminSkills
		}
	}
	return p.SelfSkills
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	p.SelfSkills = p.SelfSkills.Clone()
	p.PeerSkills = p.PeerSkills.Clone()
	p.AdminSkills = p.AdminSkills.Clone()
	return p
}
