package combat

import (
	"fmt"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// ActionKind tags the variant of an Action.
type ActionKind uint8

const (
	ActionMove ActionKind = iota
	ActionAttack
	ActionUseAbility
	ActionDefend
	ActionPass
)

// Action is one choice a unit can make. Constructed only by option
// generation, never ad hoc.
type Action struct {
	Kind      ActionKind      `json:"kind"`
	Dest      hexmap.HexCoord `json:"dest,omitempty"`       // Move
	TargetHex hexmap.HexCoord `json:"target_hex,omitempty"` // Attack, UseAbility
	AbilityID string          `json:"ability_id,omitempty"` // UseAbility
}

// MoveAction builds a movement action to the destination hex.
func MoveAction(dest hexmap.HexCoord) Action {
	return Action{Kind: ActionMove, Dest: dest}
}

// AttackAction builds a melee attack against the target hex.
func AttackAction(target hexmap.HexCoord) Action {
	return Action{Kind: ActionAttack, TargetHex: target}
}

// AbilityAction builds an ability use aimed at the target hex.
func AbilityAction(abilityID string, target hexmap.HexCoord) Action {
	return Action{Kind: ActionUseAbility, AbilityID: abilityID, TargetHex: target}
}

// DefendAction builds a defend action.
func DefendAction() Action {
	return Action{Kind: ActionDefend}
}

// PassAction builds a pass action, the universal fallback.
func PassAction() Action {
	return Action{Kind: ActionPass}
}

// String renders the action for event logs.
func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("move to (%d,%d)", a.Dest.Q, a.Dest.R)
	case ActionAttack:
		return fmt.Sprintf("attack (%d,%d)", a.TargetHex.Q, a.TargetHex.R)
	case ActionUseAbility:
		return fmt.Sprintf("use %s at (%d,%d)", a.AbilityID, a.TargetHex.Q, a.TargetHex.R)
	case ActionDefend:
		return "defend"
	default:
		return "pass"
	}
}

// ScoredOption is one candidate action with its score components. Ephemeral:
// created and discarded within a single decision call.
type ScoredOption struct {
	Action       Action
	BaseScore    float64
	Noise        float64
	CaptainBonus float64
}

// FinalScore is the sum of all score components.
func (o ScoredOption) FinalScore() float64 {
	return o.BaseScore + o.Noise + o.CaptainBonus
}
