package progression

import (
	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/rating"
	"github.com/peladaclub/rachao/internal/roster"
)

// delta is a set of per-skill adjustments applied in one pass.
type delta map[string]float64

// gainTables maps each role's raw match stats to skill gains, per unit of
// the stat. Stats missing from a role's table contribute nothing.
var gainTables = map[roster.Role]map[ledger.EventType]delta{
	roster.RoleAttacker: {
		ledger.EventGoal:    {rating.SkillFinishing: 1},
		ledger.EventAssist:  {rating.SkillPassing: 1},
		ledger.EventDribble: {rating.SkillDribbling: 1},
		ledger.EventTackle:  {rating.SkillTackling: 0.5},
	},
	roster.RoleMidfielder: {
		ledger.EventGoal:    {rating.SkillFinishing: 1},
		ledger.EventAssist:  {rating.SkillVision: 1, rating.SkillPassing: 0.5},
		ledger.EventDribble: {rating.SkillDribbling: 1},
		ledger.EventTackle:  {rating.SkillTackling: 1},
	},
	roster.RoleDefender: {
		ledger.EventGoal:    {rating.SkillFinishing: 0.5},
		ledger.EventAssist:  {rating.SkillPassing: 0.5},
		ledger.EventDribble: {rating.SkillDribbling: 0.5},
		ledger.EventTackle:  {rating.SkillMarking: 1, rating.SkillTackling: 0.5},
	},
	roster.RoleGoalkeeper: {
		ledger.EventSave:   {rating.SkillPositioning: 1, rating.SkillReflexes: 1},
		ledger.EventAssist: {rating.SkillDistribution: 1},
		ledger.EventGoal:   {rating.SkillDistribution: 0.5},
	},
}

// failurePenalties is the per-failure-unit penalty by role. Own goals count
// as failure units too.
var failurePenalties = map[roster.Role]delta{
	roster.RoleAttacker:   {rating.SkillFinishing: -1},
	roster.RoleMidfielder: {rating.SkillPassing: -1},
	roster.RoleDefender:   {rating.SkillMarking: -1},
	roster.RoleGoalkeeper: {rating.SkillReflexes: -1},
}

// lossPenalty is the flat deduction on a lost match. Stamina and speed are
// conditioning skills and are exempt.
const lossPenalty = -0.5

// lossExempt holds the skills excluded from the loss penalty and granted by
// the milestone bonus.
var lossExempt = map[string]bool{
	rating.SkillStamina: true,
	rating.SkillSpeed:   true,
}

// milestoneEvery is the matches-played interval granting the conditioning
// bonus to non-goalkeepers.
const milestoneEvery = 10
