package combat

import (
	"math/rand"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// CommandKind tags the variant of a captain command.
type CommandKind uint8

const (
	CommandFocusFire CommandKind = iota
	CommandDefensive
	CommandProtectAlly
	CommandAdvance
	CommandRetreat
)

// CommandName returns a human-readable command name.
func CommandName(k CommandKind) string {
	switch k {
	case CommandFocusFire:
		return "focus fire"
	case CommandDefensive:
		return "defensive"
	case CommandProtectAlly:
		return "protect ally"
	case CommandAdvance:
		return "advance"
	case CommandRetreat:
		return "retreat"
	default:
		return "unknown"
	}
}

// Command is one active order for a team. TargetID names the focus-fire
// target or the protected ally; it is ignored for the other kinds.
type Command struct {
	Kind       CommandKind `json:"kind"`
	TargetID   uint64      `json:"target_id,omitempty"`
	IssuedTurn int         `json:"issued_turn"`
}

// ComplianceResult records one compliance check: whether the unit follows
// the order, the clamped chance, and the roll (0 when no roll happened).
type ComplianceResult struct {
	WillComply bool `json:"will_comply"`
	Chance     int  `json:"chance"`
	Roll       int  `json:"roll"`
}

// Command/action alignment bonuses.
const (
	bonusFocusFireAttack  = 50
	bonusFocusFireAbility = 40
	bonusDefensiveDefend  = 30
	penaltyDefensiveClose = -20
	bonusProtectAdjacent  = 30
	bonusProtectNear      = 15
	bonusProtectAttack    = 25
	bonusAdvanceClose     = 20
	bonusAdvanceAttack    = 15
	bonusRetreatWithdraw  = 25
	penaltyRetreatAttack  = -15
)

// CaptainSystem tracks each team's captain and active command and turns
// compliance into score modifiers. Passed explicitly to decision calls;
// there are no ambient singletons.
type CaptainSystem struct {
	captains map[Team]uint64
	commands map[Team]*Command
}

// NewCaptainSystem creates an empty captain system. No team has a captain
// until SelectCaptain runs for it.
func NewCaptainSystem() *CaptainSystem {
	return &CaptainSystem{
		captains: make(map[Team]uint64),
		commands: make(map[Team]*Command),
	}
}

// SelectCaptain picks the living unit of the team with the highest command
// rating (INT+CHA)/2 and records it as captain. Ties resolve to roster
// order. Returns nil if the team has no living units. Re-selection after a
// captain dies is the caller's responsibility.
func (cs *CaptainSystem) SelectCaptain(team Team, units []*Unit) *Unit {
	var best *Unit
	for _, u := range units {
		if !u.Alive || u.Team != team {
			continue
		}
		if best == nil || u.CommandRating() > best.CommandRating() {
			best = u
		}
	}
	if best != nil {
		cs.captains[team] = best.ID
	}
	return best
}

// CaptainID returns the team's captain, if one has been selected.
func (cs *CaptainSystem) CaptainID(team Team) (uint64, bool) {
	id, ok := cs.captains[team]
	return id, ok
}

// IssueCommand sets the team's single active command, replacing any
// previous one.
func (cs *CaptainSystem) IssueCommand(team Team, cmd Command) {
	c := cmd
	cs.commands[team] = &c
}

// ClearCommand unsets the team's active command.
func (cs *CaptainSystem) ClearCommand(team Team) {
	delete(cs.commands, team)
}

// CurrentCommand returns the team's active command, or nil.
func (cs *CaptainSystem) CurrentCommand(team Team) *Command {
	return cs.commands[team]
}

// ComplianceChance computes the 0-100 chance that unit follows cmd issued
// by captain. The captain always complies with their own order.
func (cs *CaptainSystem) ComplianceChance(unit, captain *Unit, cmd Command) int {
	if captain != nil && unit.ID == captain.ID {
		return 100
	}

	chance := unit.Stats.Morale + unit.Stats.Loyalty*3 - unit.Stats.Stress/2
	if captain != nil {
		chance += captain.Stats.Charisma * 5
	}

	// Low-acumen units distrust orders that need tactical judgment and
	// prefer the simple ones.
	if unit.IntTier() == IntTierLow {
		switch cmd.Kind {
		case CommandFocusFire, CommandProtectAlly:
			chance -= 15
		case CommandAdvance, CommandRetreat:
			chance += 5
		case CommandDefensive:
			chance -= 5
		}
	}

	// Temperament pulls against or toward the order.
	switch cmd.Kind {
	case CommandAdvance:
		chance += (unit.Stats.Bravery - 5) * 2
	case CommandRetreat:
		chance -= (unit.Stats.Bravery - 5) * 2
	case CommandDefensive:
		chance += (unit.Stats.Caution - 5) * 2
	}

	if chance < 0 {
		chance = 0
	}
	if chance > 100 {
		chance = 100
	}
	return chance
}

// CheckCompliance resolves whether unit follows cmd this decision. Chance
// at or above 90 always complies and at or below 20 always refuses, with no
// roll either way; in between, a uniform 1-100 roll must land at or under
// the chance.
func (cs *CaptainSystem) CheckCompliance(unit, captain *Unit, cmd Command, rng *rand.Rand) ComplianceResult {
	chance := cs.ComplianceChance(unit, captain, cmd)
	switch {
	case chance >= 90:
		return ComplianceResult{WillComply: true, Chance: chance}
	case chance <= 20:
		return ComplianceResult{WillComply: false, Chance: chance}
	default:
		roll := rng.Intn(100) + 1
		return ComplianceResult{WillComply: roll <= chance, Chance: chance, Roll: roll}
	}
}

// ApplyCommandModifier sets the option's captain bonus from the team's
// active command. comply is the unit's compliance result for this decision:
// one check covers all of the decision's options, so a unit either follows
// or ignores the order as a whole. Options whose action does not align with
// the command keep a zero bonus.
func (cs *CaptainSystem) ApplyCommandModifier(opt ScoredOption, unit *Unit, state *BattleState, comply ComplianceResult) ScoredOption {
	cmd := state.Command
	if cmd == nil || !comply.WillComply {
		return opt
	}

	switch cmd.Kind {
	case CommandFocusFire:
		opt.CaptainBonus = focusFireBonus(opt.Action, cmd.TargetID, state)
	case CommandDefensive:
		opt.CaptainBonus = defensiveBonus(opt.Action, unit, state)
	case CommandProtectAlly:
		opt.CaptainBonus = protectAllyBonus(opt.Action, cmd.TargetID, state)
	case CommandAdvance:
		opt.CaptainBonus = advanceBonus(opt.Action, unit, state)
	case CommandRetreat:
		opt.CaptainBonus = retreatBonus(opt.Action, unit, state)
	}
	return opt
}

func focusFireBonus(a Action, targetID uint64, state *BattleState) float64 {
	target := state.UnitByID(targetID)
	if target == nil || !target.OnField() {
		return 0
	}
	switch a.Kind {
	case ActionAttack:
		if a.TargetHex == *target.Position {
			return bonusFocusFireAttack
		}
	case ActionUseAbility:
		if a.TargetHex == *target.Position {
			return bonusFocusFireAbility
		}
	}
	return 0
}

func defensiveBonus(a Action, unit *Unit, state *BattleState) float64 {
	switch a.Kind {
	case ActionDefend:
		return bonusDefensiveDefend
	case ActionMove:
		if unit.Position == nil {
			return 0
		}
		enemy, cur := state.NearestEnemy(unit, *unit.Position)
		if enemy == nil {
			return 0
		}
		if hexmap.Distance(a.Dest, *enemy.Position) < cur {
			return penaltyDefensiveClose
		}
	}
	return 0
}

func protectAllyBonus(a Action, allyID uint64, state *BattleState) float64 {
	ally := state.UnitByID(allyID)
	if ally == nil || !ally.OnField() {
		return 0
	}
	switch a.Kind {
	case ActionMove:
		d := hexmap.Distance(a.Dest, *ally.Position)
		if d == 1 {
			return bonusProtectAdjacent
		}
		if d <= 2 {
			return bonusProtectNear
		}
	case ActionAttack:
		if hexmap.Distance(a.TargetHex, *ally.Position) <= 2 {
			return bonusProtectAttack
		}
	}
	return 0
}

func advanceBonus(a Action, unit *Unit, state *BattleState) float64 {
	switch a.Kind {
	case ActionMove:
		if unit.Position == nil {
			return 0
		}
		enemy, cur := state.NearestEnemy(unit, *unit.Position)
		if enemy == nil {
			return 0
		}
		if hexmap.Distance(a.Dest, *enemy.Position) < cur {
			return bonusAdvanceClose
		}
	case ActionAttack:
		return bonusAdvanceAttack
	}
	return 0
}

func retreatBonus(a Action, unit *Unit, state *BattleState) float64 {
	switch a.Kind {
	case ActionMove:
		if unit.Position == nil {
			return 0
		}
		// Only moves that open distance from every enemy count as retreating.
		for _, e := range state.EnemiesOf(unit) {
			if hexmap.Distance(a.Dest, *e.Position) <= hexmap.Distance(*unit.Position, *e.Position) {
				return 0
			}
		}
		return bonusRetreatWithdraw
	case ActionAttack:
		return penaltyRetreatAttack
	}
	return 0
}
