package rating

import "math"

// Known skill keys. Skill maps are open: unknown keys are carried through
// arithmetic untouched, validation happens at the roster boundary.
const (
	SkillFinishing    = "finishing"
	SkillPassing      = "passing"
	SkillDribbling    = "dribbling"
	SkillTackling     = "tackling"
	SkillMarking      = "marking"
	SkillPositioning  = "positioning"
	SkillReflexes     = "reflexes"
	SkillDistribution = "distribution"
	SkillVision       = "vision"
	SkillHeading      = "heading"
	SkillStamina      = "stamina"
	SkillSpeed        = "speed"
)

// Skill value bounds. Every stored skill value is clamped into this range.
const (
	MinSkill = 1.0
	MaxSkill = 99.0
)

// SkillMap maps a skill key to its current value.
type SkillMap map[string]float64

// Overall returns the rounded arithmetic mean of all values in the skill
// map. A nil or empty map yields 0. It never fails.
func Overall(skills SkillMap) int {
	if len(skills) == 0 {
		return 0
	}
	var sum float64
	for _, v := range skills {
		sum += v
	}
	return int(math.Round(sum / float64(len(skills))))
}

// Clamp bounds a skill value to [MinSkill, MaxSkill].
func Clamp(v float64) float64 {
	if v < MinSkill {
		return MinSkill
	}
	if v > MaxSkill {
		return MaxSkill
	}
	return v
}

// Round2 rounds a skill value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clone returns a deep copy of the skill map. Nil stays nil.
func (s SkillMap) Clone() SkillMap {
	if s == nil {
		return nil
	}
	out := make(SkillMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
