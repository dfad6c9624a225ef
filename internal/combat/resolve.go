// Action resolution — executes the decision engine's chosen action against
// the grid and units. This is the only place unit position and resource
// counters are mutated; it runs between decision calls, never during one.
package combat

import (
	"fmt"
	"math/rand"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// CombatEvent is a notable occurrence during resolution.
type CombatEvent struct {
	Round       int    `json:"round"`
	UnitID      uint64 `json:"unit_id"`
	Description string `json:"description"`
	Category    string `json:"category"` // "move", "attack", "ability", "defend", "death", "pass"
}

// Resolver executes actions. It owns the write side of the grid and units.
type Resolver struct {
	grid *hexmap.Grid
	rng  *rand.Rand
}

// NewResolver creates a resolver over the battlefield grid.
func NewResolver(grid *hexmap.Grid, rng *rand.Rand) *Resolver {
	return &Resolver{grid: grid, rng: rng}
}

// Execute applies the action to the world and returns the resulting events.
// Failed preconditions (no path, dead target) resolve to no-ops, never
// errors.
func (r *Resolver) Execute(round int, actor *Unit, action Action, state *BattleState, catalog Catalog) []CombatEvent {
	switch action.Kind {
	case ActionMove:
		return r.executeMove(round, actor, action.Dest, state)
	case ActionAttack:
		return r.executeAttack(round, actor, action.TargetHex, state)
	case ActionUseAbility:
		return r.executeAbility(round, actor, action, state, catalog)
	case ActionDefend:
		actor.Defending = true
		return []CombatEvent{{
			Round: round, UnitID: actor.ID, Category: "defend",
			Description: actor.Name + " braces behind their guard",
		}}
	default:
		return []CombatEvent{{
			Round: round, UnitID: actor.ID, Category: "pass",
			Description: actor.Name + " holds position",
		}}
	}
}

func (r *Resolver) executeMove(round int, actor *Unit, dest hexmap.HexCoord, state *BattleState) []CombatEvent {
	if actor.Position == nil {
		return nil
	}
	pf := hexmap.NewPathfinder(r.grid)
	path, ok := pf.FindPath(*actor.Position, dest, state.Blocked, actor.MovementSpeed)
	if !ok {
		return []CombatEvent{{
			Round: round, UnitID: actor.ID, Category: "move",
			Description: actor.Name + " finds no way through",
		}}
	}

	r.grid.Vacate(*actor.Position)
	pos := dest
	actor.Position = &pos
	r.grid.Occupy(dest, actor.ID)

	o := dest.ToOffset()
	return []CombatEvent{{
		Round: round, UnitID: actor.ID, Category: "move",
		Description: fmt.Sprintf("%s moves %d hexes to %d,%d", actor.Name, len(path)-1, o.Col, o.Row),
	}}
}

func (r *Resolver) executeAttack(round int, actor *Unit, targetHex hexmap.HexCoord, state *BattleState) []CombatEvent {
	target := state.UnitAt(targetHex)
	if target == nil || !target.Alive || actor.Position == nil {
		return nil
	}

	damage := actor.Stats.Strength + r.rng.Intn(6) + 1
	damage += statusPower(actor, EffectBuff) / 2
	damage += statusPower(target, EffectDebuff) / 2

	pf := hexmap.NewPathfinder(r.grid)
	flanked := pf.IsFlanked(targetHex, *actor.Position, state.AllyPositions(actor))
	if flanked {
		damage += damage / 2
	}
	if tile := r.grid.TileAt(targetHex); tile != nil && tile.Terrain.HalfCover() {
		damage -= damage / 4
	}
	if target.Defending {
		damage /= 2
	}
	if damage < 1 {
		damage = 1
	}

	desc := fmt.Sprintf("%s hits %s for %d", actor.Name, target.Name, damage)
	if flanked {
		desc += " (flanked)"
	}
	events := []CombatEvent{{Round: round, UnitID: actor.ID, Category: "attack", Description: desc}}
	return append(events, r.applyDamage(round, target, damage)...)
}

func (r *Resolver) executeAbility(round int, actor *Unit, action Action, state *BattleState, catalog Catalog) []CombatEvent {
	ab, ok := catalog[action.AbilityID]
	if !ok || !actor.CanAfford(ab) {
		return nil
	}
	actor.PayCost(ab)

	events := []CombatEvent{{
		Round: round, UnitID: actor.ID, Category: "ability",
		Description: fmt.Sprintf("%s uses %s", actor.Name, ab.Name),
	}}

	switch ab.Effect {
	case EffectHeal:
		if target := state.UnitAt(action.TargetHex); target != nil {
			healed := ab.Power
			if target.HP+healed > target.MaxHP {
				healed = target.MaxHP - target.HP
			}
			target.HP += healed
			events = append(events, CombatEvent{
				Round: round, UnitID: actor.ID, Category: "ability",
				Description: fmt.Sprintf("%s restores %d HP to %s", ab.Name, healed, target.Name),
			})
		}
	case EffectDamage:
		for _, target := range r.abilityVictims(ab, action.TargetHex, state) {
			damage := ab.Power + actor.Stats.Intellect/2
			if target.Defending {
				damage /= 2
			}
			if damage < 1 {
				damage = 1
			}
			events = append(events, CombatEvent{
				Round: round, UnitID: actor.ID, Category: "ability",
				Description: fmt.Sprintf("%s strikes %s for %d", ab.Name, target.Name, damage),
			})
			events = append(events, r.applyDamage(round, target, damage)...)
		}
	case EffectBuff, EffectDebuff:
		for _, target := range r.statusRecipients(ab, action.TargetHex, actor, state) {
			target.Statuses = append(target.Statuses, StatusEffect{
				AbilityID:  ab.ID,
				Effect:     ab.Effect,
				Power:      ab.Power,
				RoundsLeft: ab.Duration,
			})
			events = append(events, CombatEvent{
				Round: round, UnitID: actor.ID, Category: "ability",
				Description: fmt.Sprintf("%s affects %s", ab.Name, target.Name),
			})
		}
	}
	return events
}

// abilityVictims returns the units a damaging ability hits: everyone inside
// the blast for area abilities, the single occupant otherwise.
func (r *Resolver) abilityVictims(ab Ability, targetHex hexmap.HexCoord, state *BattleState) []*Unit {
	if ab.Target != TargetArea {
		if u := state.UnitAt(targetHex); u != nil {
			return []*Unit{u}
		}
		return nil
	}
	var victims []*Unit
	for _, u := range state.Units {
		if u.OnField() && hexmap.Distance(targetHex, *u.Position) <= ab.Radius {
			victims = append(victims, u)
		}
	}
	return victims
}

// statusRecipients returns the units a buff or debuff lands on.
func (r *Resolver) statusRecipients(ab Ability, targetHex hexmap.HexCoord, actor *Unit, state *BattleState) []*Unit {
	if ab.Target != TargetArea {
		if u := state.UnitAt(targetHex); u != nil {
			return []*Unit{u}
		}
		return nil
	}
	sameTeam := ab.Effect == EffectBuff
	var recipients []*Unit
	for _, u := range state.Units {
		if !u.OnField() || hexmap.Distance(targetHex, *u.Position) > ab.Radius {
			continue
		}
		if (u.Team == actor.Team) == sameTeam {
			recipients = append(recipients, u)
		}
	}
	return recipients
}

func (r *Resolver) applyDamage(round int, target *Unit, damage int) []CombatEvent {
	target.HP -= damage
	if target.HP > 0 {
		return nil
	}
	target.HP = 0
	target.Alive = false
	if target.Position != nil {
		r.grid.Vacate(*target.Position)
		target.Position = nil
	}
	return []CombatEvent{{
		Round: round, UnitID: target.ID, Category: "death",
		Description: target.Name + " falls",
	}}
}

// statusPower sums the power of a unit's active statuses of the given kind.
func statusPower(u *Unit, kind EffectKind) int {
	total := 0
	for _, s := range u.Statuses {
		if s.Effect == kind {
			total += s.Power
		}
	}
	return total
}

// TickStatuses advances a unit's status durations at the start of its turn
// and clears the defend stance.
func TickStatuses(u *Unit) {
	u.Defending = false
	kept := u.Statuses[:0]
	for _, s := range u.Statuses {
		s.RoundsLeft--
		if s.RoundsLeft > 0 {
			kept = append(kept, s)
		}
	}
	u.Statuses = kept
}
