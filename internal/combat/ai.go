// Utility-scoring decision engine. Each decision call enumerates legal
// actions, scores them with additive heuristics, perturbs the scores by
// intelligence tier, folds in the captain command modifier, and picks the
// maximum. Stateless per call; all randomness comes from the injected RNG.
package combat

import (
	"math/rand"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// MeleeRange is the attack distance for basic attacks.
const MeleeRange = 1

// Heuristic scoring constants. Additive points, not probabilities; tunable.
const (
	scoreMoveReachMelee = 40.0 // Destination puts nearest enemy in melee range
	scoreMoveCloser     = 20.0 // Destination strictly closer than current distance
	scoreMoveFlank      = 25.0 // Destination flanks an enemy
	scoreMoveFlankBlind = -25.0
	scoreMoveHalfCover  = 10.0

	scoreCasterTooClose = -20.0 // Within 2 of nearest enemy
	scoreCasterBand     = 15.0  // Preferred distance band 3-6
	scoreCasterPerAlly  = 5.0   // Per ally within 2 hexes of destination

	scoreAttackBase      = 30.0
	scoreThreatWeight    = 0.3
	scoreTargetNearDeath = 30.0 // Target below 25% HP
	scoreTargetWounded   = 15.0 // Target below 50% HP
	scoreTargetFlanked   = 20.0
	scoreTargetHealer    = 15.0

	scoreHealMissingWeight = 50.0
	scoreHealCritical      = 60.0 // Target below 25% HP
	scoreHealUrgent        = 35.0 // Target below 50% HP
	scoreHealUseful        = 15.0 // Target below 75% HP
	scoreHealOverheal      = -30.0

	scoreDamageAbilityBase = 25.0
	scoreAOEPerEnemy       = 25.0
	scoreAOEPerAlly        = -40.0

	scoreBuffBase       = 10.0
	scoreBuffPerAlly    = 8.0
	scoreBuffClassFit   = 10.0 // Damage dealers benefit most from buffs
	scoreDebuffBase     = 10.0
	scoreDebuffPerEnemy = 8.0

	scoreDefendBase        = 5.0
	scoreDefendPerAdjacent = 10.0
	scoreDefendLowHP       = 20.0

	lowHPFraction     = 0.3
	scarcityFraction  = 0.3 // Resource below this share of max triggers the scarcity factor
	scarcityFactor    = 0.7
	casterTooCloseHex = 2
	casterBandMin     = 3
	casterBandMax     = 6
)

// Intelligence tier perturbation parameters.
const (
	lowNoiseSpan     = 0.35 * 50 // Uniform noise ±span
	mediumNoiseSpan  = 0.15 * 30
	lowMistakeChance = 0.25 // Per attack/ability option
	lowMistakeSpan   = 30.0
)

// DecideAction chooses one action for the acting unit of the snapshot.
// It never fails: with no position or no legal options the unit passes.
func DecideAction(unit *Unit, state *BattleState, captains *CaptainSystem, catalog Catalog, rng *rand.Rand) Action {
	if !unit.OnField() {
		return PassAction()
	}

	opts := generateOptions(unit, state, catalog)
	if len(opts) == 0 {
		return PassAction()
	}

	pf := hexmap.NewPathfinder(state.Grid)
	tier := unit.IntTier()
	flankAware := tier != IntTierLow

	for i := range opts {
		opts[i].BaseScore = scoreOption(opts[i].Action, unit, state, pf, catalog, flankAware)
	}

	perturbOptions(opts, tier, rng)

	if state.Command != nil && captains != nil {
		if capID, ok := captains.CaptainID(unit.Team); ok {
			if captain := state.UnitByID(capID); captain != nil {
				comply := captains.CheckCompliance(unit, captain, *state.Command, rng)
				for i := range opts {
					opts[i] = captains.ApplyCommandModifier(opts[i], unit, state, comply)
				}
			}
		}
	}

	// Stable max: the first option with the highest final score wins, so
	// ties resolve by generation order and behavior is reproducible for a
	// fixed seed.
	best := opts[0]
	for _, o := range opts[1:] {
		if o.FinalScore() > best.FinalScore() {
			best = o
		}
	}
	return best.Action
}

// generateOptions enumerates every legal action for the unit under the
// snapshot's phase flags. Pass is always legal.
func generateOptions(unit *Unit, state *BattleState, catalog Catalog) []ScoredOption {
	var opts []ScoredOption
	pos := *unit.Position

	if !state.HasMovedThisTurn {
		for _, dest := range state.Grid.ReachableHexes(pos, unit.MovementSpeed, state.Blocked) {
			if dest != pos {
				opts = append(opts, ScoredOption{Action: MoveAction(dest)})
			}
		}
	}

	if !state.HasActedThisTurn {
		for _, e := range state.EnemiesOf(unit) {
			if hexmap.Distance(pos, *e.Position) <= MeleeRange {
				opts = append(opts, ScoredOption{Action: AttackAction(*e.Position)})
			}
		}

		for _, id := range unit.Abilities {
			ab, ok := catalog[id]
			if !ok || ab.Passive || !unit.CanAfford(ab) {
				continue
			}
			for _, target := range abilityTargets(ab, unit, state) {
				opts = append(opts, ScoredOption{Action: AbilityAction(ab.ID, target)})
			}
		}

		opts = append(opts, ScoredOption{Action: DefendAction()})
	}

	opts = append(opts, ScoredOption{Action: PassAction()})
	return opts
}

// abilityTargets returns every hex the ability may legally be aimed at.
func abilityTargets(ab Ability, unit *Unit, state *BattleState) []hexmap.HexCoord {
	pos := *unit.Position
	var targets []hexmap.HexCoord

	switch ab.Target {
	case TargetSelf:
		targets = append(targets, pos)
	case TargetEnemy:
		for _, e := range state.EnemiesOf(unit) {
			if hexmap.Distance(pos, *e.Position) <= ab.Range {
				targets = append(targets, *e.Position)
			}
		}
	case TargetAlly:
		// Allies plus the unit itself.
		for _, u := range state.Units {
			if u.OnField() && u.Team == unit.Team && hexmap.Distance(pos, *u.Position) <= ab.Range {
				targets = append(targets, *u.Position)
			}
		}
	case TargetArea:
		for _, origin := range pos.HexesInRange(ab.Range) {
			if state.Grid.IsValid(origin) {
				targets = append(targets, origin)
			}
		}
	}
	return targets
}

func scoreOption(a Action, unit *Unit, state *BattleState, pf *hexmap.Pathfinder, catalog Catalog, flankAware bool) float64 {
	switch a.Kind {
	case ActionMove:
		return scoreMove(a.Dest, unit, state, pf, flankAware)
	case ActionAttack:
		return scoreAttack(a.TargetHex, unit, state, pf)
	case ActionUseAbility:
		return scoreAbility(catalog[a.AbilityID], a.TargetHex, unit, state)
	case ActionDefend:
		return scoreDefend(unit, state)
	default:
		return 0
	}
}

func scoreMove(dest hexmap.HexCoord, unit *Unit, state *BattleState, pf *hexmap.Pathfinder, flankAware bool) float64 {
	score := 0.0
	enemy, curDist := state.NearestEnemy(unit, *unit.Position)

	if unit.IsMelee() {
		if enemy != nil {
			newDist := hexmap.Distance(dest, *enemy.Position)
			if newDist <= MeleeRange {
				score += scoreMoveReachMelee
			}
			if newDist < curDist {
				score += scoreMoveCloser
			}
		}
		if flanksAnyEnemy(dest, unit, state, pf) {
			if flankAware {
				score += scoreMoveFlank
			} else {
				// Low acumen: blind to the tactic, actively avoids it.
				score += scoreMoveFlankBlind
			}
		}
		if tile := state.Grid.TileAt(dest); tile != nil && tile.Terrain.HalfCover() {
			score += scoreMoveHalfCover
		}
		return score
	}

	// Ranged and casters keep their distance band and stay near allies.
	if enemy != nil {
		newDist := hexmap.Distance(dest, *enemy.Position)
		if newDist <= casterTooCloseHex {
			score += scoreCasterTooClose
		}
		if newDist >= casterBandMin && newDist <= casterBandMax {
			score += scoreCasterBand
		}
	}
	for _, ally := range state.AlliesOf(unit) {
		if hexmap.Distance(dest, *ally.Position) <= 2 {
			score += scoreCasterPerAlly
		}
	}
	return score
}

// flanksAnyEnemy reports whether standing at dest flanks at least one
// adjacent enemy given the unit's allies.
func flanksAnyEnemy(dest hexmap.HexCoord, unit *Unit, state *BattleState, pf *hexmap.Pathfinder) bool {
	allies := state.AllyPositions(unit)
	for _, e := range state.EnemiesOf(unit) {
		if hexmap.Distance(dest, *e.Position) == 1 && pf.IsFlanked(*e.Position, dest, allies) {
			return true
		}
	}
	return false
}

func scoreAttack(targetHex hexmap.HexCoord, unit *Unit, state *BattleState, pf *hexmap.Pathfinder) float64 {
	target := state.UnitAt(targetHex)
	if target == nil {
		return 0
	}

	score := scoreAttackBase + scoreThreatWeight*float64(target.Threat)

	hp := target.HPFraction()
	switch {
	case hp < 0.25:
		score += scoreTargetNearDeath
	case hp < 0.5:
		score += scoreTargetWounded
	}

	if pf.IsFlanked(targetHex, *unit.Position, state.AllyPositions(unit)) {
		score += scoreTargetFlanked
	}
	if target.Class == ClassHealer {
		score += scoreTargetHealer
	}
	return score
}

func scoreAbility(ab Ability, targetHex hexmap.HexCoord, unit *Unit, state *BattleState) float64 {
	var score float64

	switch ab.Effect {
	case EffectHeal:
		score = scoreHeal(targetHex, state)
	case EffectDamage:
		score = scoreDamageAbility(ab, targetHex, unit, state)
	case EffectBuff:
		score = scoreBuff(ab, targetHex, unit, state)
	case EffectDebuff:
		score = scoreDebuff(ab, targetHex, unit, state)
	}

	// Scarce resources make any ability less attractive.
	cur, max := unit.Resource(ab.Resource)
	if max > 0 && float64(cur) < scarcityFraction*float64(max) {
		score *= scarcityFactor
	}
	return score
}

func scoreHeal(targetHex hexmap.HexCoord, state *BattleState) float64 {
	target := state.UnitAt(targetHex)
	if target == nil {
		return 0
	}

	hp := target.HPFraction()
	score := (1 - hp) * scoreHealMissingWeight
	switch {
	case hp < 0.25:
		score += scoreHealCritical
	case hp < 0.5:
		score += scoreHealUrgent
	case hp < 0.75:
		score += scoreHealUseful
	}
	if hp > 0.85 {
		score += scoreHealOverheal
	}
	return score
}

func scoreDamageAbility(ab Ability, targetHex hexmap.HexCoord, unit *Unit, state *BattleState) float64 {
	if ab.Target == TargetArea {
		// Every unit in the blast counts, the caster included.
		score := 0.0
		for _, u := range state.Units {
			if !u.OnField() || hexmap.Distance(targetHex, *u.Position) > ab.Radius {
				continue
			}
			if u.Team != unit.Team {
				score += scoreAOEPerEnemy
			} else {
				score += scoreAOEPerAlly
			}
		}
		return score
	}

	target := state.UnitAt(targetHex)
	if target == nil {
		return 0
	}
	score := scoreDamageAbilityBase + scoreThreatWeight*float64(target.Threat)
	hp := target.HPFraction()
	switch {
	case hp < 0.25:
		score += scoreTargetNearDeath
	case hp < 0.5:
		score += scoreTargetWounded
	}
	return score
}

func scoreBuff(ab Ability, targetHex hexmap.HexCoord, unit *Unit, state *BattleState) float64 {
	if ab.Target == TargetArea {
		score := scoreBuffBase
		for _, u := range state.Units {
			if u.OnField() && u.Team == unit.Team && hexmap.Distance(targetHex, *u.Position) <= ab.Radius {
				score += scoreBuffPerAlly
			}
		}
		return score
	}

	target := state.UnitAt(targetHex)
	if target == nil {
		return 0
	}
	score := scoreBuffBase
	if target.Class == ClassWarrior || target.Class == ClassRanger {
		score += scoreBuffClassFit
	}
	return score
}

func scoreDebuff(ab Ability, targetHex hexmap.HexCoord, unit *Unit, state *BattleState) float64 {
	if ab.Target == TargetArea {
		score := scoreDebuffBase
		for _, u := range state.Units {
			if u.OnField() && u.Team != unit.Team && hexmap.Distance(targetHex, *u.Position) <= ab.Radius {
				score += scoreDebuffPerEnemy
			}
		}
		return score
	}

	target := state.UnitAt(targetHex)
	if target == nil {
		return 0
	}
	return scoreDebuffBase + scoreThreatWeight*float64(target.Threat)
}

func scoreDefend(unit *Unit, state *BattleState) float64 {
	score := scoreDefendBase
	for _, e := range state.EnemiesOf(unit) {
		if hexmap.Distance(*unit.Position, *e.Position) == 1 {
			score += scoreDefendPerAdjacent
		}
	}
	if unit.HPFraction() < lowHPFraction {
		score += scoreDefendLowHP
	}
	return score
}

// perturbOptions adds tier-dependent noise in place. High acumen is
// noise-free and deterministic; low acumen additionally misjudges some
// attack and ability options.
func perturbOptions(opts []ScoredOption, tier IntTier, rng *rand.Rand) {
	switch tier {
	case IntTierHigh:
		return
	case IntTierMedium:
		for i := range opts {
			opts[i].Noise = uniform(rng, mediumNoiseSpan)
		}
	default:
		for i := range opts {
			opts[i].Noise = uniform(rng, lowNoiseSpan)
			kind := opts[i].Action.Kind
			if (kind == ActionAttack || kind == ActionUseAbility) && rng.Float64() < lowMistakeChance {
				opts[i].Noise += uniform(rng, lowMistakeSpan)
			}
		}
	}
}

// uniform samples uniformly from [-span, span].
func uniform(rng *rand.Rand, span float64) float64 {
	return (rng.Float64()*2 - 1) * span
}
