package combat

import (
	"math/rand"
	"testing"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

func decisionState(actor *Unit, units []*Unit, hasMoved, hasActed bool) *BattleState {
	grid := hexmap.NewGrid(12, 10)
	return NewBattleState(grid, units, actor, hasMoved, hasActed, nil, nil)
}

func testCatalog() Catalog {
	return Catalog{
		"firebolt": {
			ID: "firebolt", Name: "Firebolt", Resource: ResourceMana, Cost: 8,
			Target: TargetEnemy, Range: 5, Power: 12, Effect: EffectDamage,
		},
		"fireball": {
			ID: "fireball", Name: "Fireball", Resource: ResourceMana, Cost: 15,
			Target: TargetArea, Range: 4, Radius: 1, Power: 10, Effect: EffectDamage,
		},
		"mend_wounds": {
			ID: "mend_wounds", Name: "Mend Wounds", Resource: ResourceMana, Cost: 10,
			Target: TargetAlly, Range: 4, Power: 15, Effect: EffectHeal,
		},
		"iron_skin": {
			ID: "iron_skin", Name: "Iron Skin", Resource: ResourceStamina,
			Target: TargetSelf, Passive: true, Effect: EffectBuff,
		},
	}
}

func TestDecideActionNoPosition(t *testing.T) {
	u := testUnit(1, TeamPlayer, ClassWarrior, nil)
	state := decisionState(u, []*Unit{u}, false, false)
	rng := rand.New(rand.NewSource(1))

	a := DecideAction(u, state, NewCaptainSystem(), testCatalog(), rng)
	if a.Kind != ActionPass {
		t.Errorf("off-field unit chose %s, want pass", a)
	}
}

func TestDecideActionMeleeClosesDistance(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(2, 4))
	warrior.Stats.Intellect = 16 // noise-free
	warrior.MovementSpeed = 4
	enemy := testUnit(2, TeamEnemy, ClassRanger, at(6, 4))
	state := decisionState(warrior, []*Unit{warrior, enemy}, false, false)
	rng := rand.New(rand.NewSource(3))

	a := DecideAction(warrior, state, NewCaptainSystem(), nil, rng)
	if a.Kind != ActionMove {
		t.Fatalf("expected a move, got %s", a)
	}
	if d := hexmap.Distance(a.Dest, *enemy.Position); d != MeleeRange {
		t.Errorf("warrior stopped at distance %d, want %d", d, MeleeRange)
	}
}

func TestDecideActionAttacksAdjacent(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	warrior.Stats.Intellect = 16
	pos := *warrior.Position
	adj := pos.Neighbor(0)
	enemy := testUnit(2, TeamEnemy, ClassWarrior, &adj)
	// Action phase: movement is spent.
	state := decisionState(warrior, []*Unit{warrior, enemy}, true, false)
	rng := rand.New(rand.NewSource(5))

	a := DecideAction(warrior, state, NewCaptainSystem(), nil, rng)
	if a.Kind != ActionAttack || a.TargetHex != adj {
		t.Errorf("expected an attack on %v, got %s", adj, a)
	}
}

func TestDecideActionHighTierDeterministic(t *testing.T) {
	build := func() (*Unit, *BattleState) {
		mage := testUnit(1, TeamPlayer, ClassMage, at(3, 3))
		mage.Stats.Intellect = 16
		mage.Abilities = []string{"firebolt", "fireball"}
		e1 := testUnit(2, TeamEnemy, ClassWarrior, at(6, 3))
		e2 := testUnit(3, TeamEnemy, ClassRanger, at(6, 4))
		return mage, decisionState(mage, []*Unit{mage, e1, e2}, false, false)
	}

	mage, state := build()
	first := DecideAction(mage, state, NewCaptainSystem(), testCatalog(), rand.New(rand.NewSource(1)))
	for seed := int64(2); seed < 12; seed++ {
		mage, state = build()
		a := DecideAction(mage, state, NewCaptainSystem(), testCatalog(), rand.New(rand.NewSource(seed)))
		if a != first {
			t.Fatalf("high tier decision varies with seed %d: %s vs %s", seed, a, first)
		}
	}
}

func TestScoreMoveFlankAwareness(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	enemyPos := warrior.Position.Add(hexmap.Directions[0].Scale(2))
	enemy := testUnit(2, TeamEnemy, ClassWarrior, &enemyPos)
	allyPos := enemyPos.Neighbor(0) // opposite side of the enemy from dest
	ally := testUnit(3, TeamPlayer, ClassRanger, &allyPos)
	state := decisionState(warrior, []*Unit{warrior, enemy, ally}, false, false)
	pf := hexmap.NewPathfinder(state.Grid)

	dest := enemyPos.Neighbor(3) // adjacent, bearing opposite the ally
	aware := scoreMove(dest, warrior, state, pf, true)
	blind := scoreMove(dest, warrior, state, pf, false)
	if aware-blind != scoreMoveFlank-scoreMoveFlankBlind {
		t.Errorf("flank awareness delta = %v, want %v", aware-blind, scoreMoveFlank-scoreMoveFlankBlind)
	}
}

func TestScoreMoveCasterKeepsDistance(t *testing.T) {
	mage := testUnit(1, TeamPlayer, ClassMage, at(4, 4))
	enemy := testUnit(2, TeamEnemy, ClassWarrior, at(8, 4))
	state := decisionState(mage, []*Unit{mage, enemy}, false, false)
	pf := hexmap.NewPathfinder(state.Grid)

	tooClose := enemy.Position.Neighbor(3)
	inBand := enemy.Position.Add(hexmap.Directions[3].Scale(4))
	close := scoreMove(tooClose, mage, state, pf, true)
	band := scoreMove(inBand, mage, state, pf, true)
	if close >= band {
		t.Errorf("caster scored %v adjacent vs %v in band", close, band)
	}
	if close != scoreCasterTooClose {
		t.Errorf("adjacent caster move = %v, want %v", close, scoreCasterTooClose)
	}
	if band != scoreCasterBand {
		t.Errorf("band caster move = %v, want %v", band, scoreCasterBand)
	}
}

func TestScoreMoveCasterAllyCohesion(t *testing.T) {
	mage := testUnit(1, TeamPlayer, ClassMage, at(2, 2))
	a1 := testUnit(2, TeamPlayer, ClassWarrior, at(3, 2))
	a2 := testUnit(3, TeamPlayer, ClassRanger, at(3, 3))
	state := decisionState(mage, []*Unit{mage, a1, a2}, false, false)
	pf := hexmap.NewPathfinder(state.Grid)

	dest := hexmap.FromOffset(hexmap.OffsetCoord{Col: 2, Row: 3})
	got := scoreMove(dest, mage, state, pf, true)
	// No enemies on the field: score is cohesion only, one bonus per ally
	// within two hexes.
	if got != 2*scoreCasterPerAlly {
		t.Errorf("cohesion score = %v, want %v", got, 2*scoreCasterPerAlly)
	}
}

func TestScoreAttackPriorities(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	state := decisionState(warrior, []*Unit{warrior}, false, false)
	pf := hexmap.NewPathfinder(state.Grid)

	place := func(id uint64, class Class, hpFrac float64, dir int) *Unit {
		pos := warrior.Position.Neighbor(dir)
		u := testUnit(id, TeamEnemy, class, &pos)
		u.HP = int(hpFrac * float64(u.MaxHP))
		state.Units = append(state.Units, u)
		return u
	}
	healthy := place(2, ClassWarrior, 1.0, 0)
	wounded := place(3, ClassWarrior, 0.4, 1)
	nearDeath := place(4, ClassWarrior, 0.2, 2)
	healer := place(5, ClassHealer, 1.0, 3)

	sHealthy := scoreAttack(*healthy.Position, warrior, state, pf)
	sWounded := scoreAttack(*wounded.Position, warrior, state, pf)
	sNearDeath := scoreAttack(*nearDeath.Position, warrior, state, pf)
	sHealer := scoreAttack(*healer.Position, warrior, state, pf)

	if !(sNearDeath > sWounded && sWounded > sHealthy) {
		t.Errorf("HP priority wrong: near-death %v, wounded %v, healthy %v", sNearDeath, sWounded, sHealthy)
	}
	if sHealer-sHealthy != scoreTargetHealer {
		t.Errorf("healer bonus = %v, want %v", sHealer-sHealthy, scoreTargetHealer)
	}
	if sHealthy != scoreAttackBase+scoreThreatWeight*float64(healthy.Threat) {
		t.Errorf("baseline attack score = %v", sHealthy)
	}
}

func TestScoreAttackFlankBonus(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	enemyPos := warrior.Position.Neighbor(0)
	enemy := testUnit(2, TeamEnemy, ClassWarrior, &enemyPos)
	allyPos := enemyPos.Neighbor(0)
	ally := testUnit(3, TeamPlayer, ClassRanger, &allyPos)

	flanked := decisionState(warrior, []*Unit{warrior, enemy, ally}, false, false)
	alone := decisionState(warrior, []*Unit{warrior, enemy}, false, false)
	pf := hexmap.NewPathfinder(flanked.Grid)

	withAlly := scoreAttack(enemyPos, warrior, flanked, pf)
	solo := scoreAttack(enemyPos, warrior, alone, hexmap.NewPathfinder(alone.Grid))
	if withAlly-solo != scoreTargetFlanked {
		t.Errorf("flank bonus = %v, want %v", withAlly-solo, scoreTargetFlanked)
	}
}

func TestScoreHealTriage(t *testing.T) {
	healer := testUnit(1, TeamPlayer, ClassHealer, at(2, 2))
	ally := testUnit(2, TeamPlayer, ClassWarrior, at(3, 2))
	state := decisionState(healer, []*Unit{healer, ally}, false, false)

	scoreAt := func(hpFrac float64) float64 {
		ally.HP = int(hpFrac * float64(ally.MaxHP))
		return scoreHeal(*ally.Position, state)
	}

	critical := scoreAt(0.2)
	urgent := scoreAt(0.4)
	topped := scoreAt(1.0)
	if !(critical > urgent && urgent > topped) {
		t.Errorf("triage order wrong: %v, %v, %v", critical, urgent, topped)
	}
	if topped != scoreHealOverheal {
		t.Errorf("full-HP heal = %v, want the overheal penalty %v", topped, scoreHealOverheal)
	}
	if critical != 0.8*scoreHealMissingWeight+scoreHealCritical {
		t.Errorf("critical heal = %v", critical)
	}
}

func TestScoreAOEDamage(t *testing.T) {
	mage := testUnit(1, TeamPlayer, ClassMage, at(1, 1))
	e1 := testUnit(2, TeamEnemy, ClassWarrior, at(5, 5))
	e2pos := e1.Position.Neighbor(0)
	e2 := testUnit(3, TeamEnemy, ClassRanger, &e2pos)
	allyPos := e1.Position.Neighbor(3)
	ally := testUnit(4, TeamPlayer, ClassWarrior, &allyPos)
	state := decisionState(mage, []*Unit{mage, e1, e2, ally}, false, false)

	fireball := testCatalog()["fireball"]
	got := scoreAbility(fireball, *e1.Position, mage, state)
	want := 2*scoreAOEPerEnemy + scoreAOEPerAlly
	if got != want {
		t.Errorf("AOE on mixed blast = %v, want %v", got, want)
	}

	// Aimed clear of the ally, only the two enemies are caught.
	got = scoreAbility(fireball, e2pos.Neighbor(0), mage, state)
	if got != scoreAOEPerEnemy {
		t.Errorf("AOE clear of ally = %v, want %v", got, scoreAOEPerEnemy)
	}
}

func TestScoreAbilityResourceScarcity(t *testing.T) {
	mage := testUnit(1, TeamPlayer, ClassMage, at(2, 2))
	enemy := testUnit(2, TeamEnemy, ClassWarrior, at(4, 2))
	state := decisionState(mage, []*Unit{mage, enemy}, false, false)

	firebolt := testCatalog()["firebolt"]
	mage.Mana, mage.MaxMana = 30, 30
	full := scoreAbility(firebolt, *enemy.Position, mage, state)
	mage.Mana = 8 // under 30% of max
	scarce := scoreAbility(firebolt, *enemy.Position, mage, state)
	if scarce != full*scarcityFactor {
		t.Errorf("scarcity score = %v, want %v", scarce, full*scarcityFactor)
	}
}

func TestScoreDefend(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	e1pos := warrior.Position.Neighbor(0)
	e2pos := warrior.Position.Neighbor(2)
	e1 := testUnit(2, TeamEnemy, ClassWarrior, &e1pos)
	e2 := testUnit(3, TeamEnemy, ClassWarrior, &e2pos)
	state := decisionState(warrior, []*Unit{warrior, e1, e2}, false, false)

	if got := scoreDefend(warrior, state); got != scoreDefendBase+2*scoreDefendPerAdjacent {
		t.Errorf("defend vs two adjacent = %v", got)
	}
	warrior.HP = warrior.MaxHP / 4
	if got := scoreDefend(warrior, state); got != scoreDefendBase+2*scoreDefendPerAdjacent+scoreDefendLowHP {
		t.Errorf("wounded defend = %v", got)
	}
}

func TestGenerateOptionsPhaseFlags(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	adj := warrior.Position.Neighbor(0)
	enemy := testUnit(2, TeamEnemy, ClassWarrior, &adj)
	catalog := testCatalog()

	kinds := func(opts []ScoredOption) map[ActionKind]int {
		m := make(map[ActionKind]int)
		for _, o := range opts {
			m[o.Action.Kind]++
		}
		return m
	}

	fresh := kinds(generateOptions(warrior, decisionState(warrior, []*Unit{warrior, enemy}, false, false), catalog))
	if fresh[ActionMove] == 0 || fresh[ActionAttack] != 1 || fresh[ActionDefend] != 1 || fresh[ActionPass] != 1 {
		t.Errorf("fresh turn options: %v", fresh)
	}

	moved := kinds(generateOptions(warrior, decisionState(warrior, []*Unit{warrior, enemy}, true, false), catalog))
	if moved[ActionMove] != 0 || moved[ActionAttack] != 1 {
		t.Errorf("post-move options: %v", moved)
	}

	acted := kinds(generateOptions(warrior, decisionState(warrior, []*Unit{warrior, enemy}, true, true), catalog))
	if len(acted) != 1 || acted[ActionPass] != 1 {
		t.Errorf("spent turn should leave only pass: %v", acted)
	}
}

func TestGenerateOptionsAbilityGating(t *testing.T) {
	mage := testUnit(1, TeamPlayer, ClassMage, at(3, 3))
	mage.Abilities = []string{"firebolt", "iron_skin", "mend_wounds"}
	enemy := testUnit(2, TeamEnemy, ClassWarrior, at(5, 3))
	catalog := testCatalog()

	count := func(opts []ScoredOption, id string) int {
		n := 0
		for _, o := range opts {
			if o.Action.Kind == ActionUseAbility && o.Action.AbilityID == id {
				n++
			}
		}
		return n
	}

	state := decisionState(mage, []*Unit{mage, enemy}, true, false)
	opts := generateOptions(mage, state, catalog)
	if count(opts, "firebolt") != 1 {
		t.Errorf("firebolt targets = %d, want 1", count(opts, "firebolt"))
	}
	if count(opts, "iron_skin") != 0 {
		t.Error("passive ability offered as an action")
	}
	// Ally-target abilities may target the caster itself.
	if count(opts, "mend_wounds") != 1 {
		t.Errorf("mend_wounds targets = %d, want 1 (self)", count(opts, "mend_wounds"))
	}

	// Drained mana removes both mana abilities.
	mage.Mana = 0
	opts = generateOptions(mage, state, catalog)
	if count(opts, "firebolt") != 0 || count(opts, "mend_wounds") != 0 {
		t.Error("unaffordable abilities still offered")
	}
}

func TestGenerateOptionsRespectsOccupancy(t *testing.T) {
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	adj := warrior.Position.Neighbor(0)
	enemy := testUnit(2, TeamEnemy, ClassWarrior, &adj)
	state := decisionState(warrior, []*Unit{warrior, enemy}, false, false)

	for _, o := range generateOptions(warrior, state, nil) {
		if o.Action.Kind == ActionMove {
			if o.Action.Dest == adj {
				t.Fatal("move option onto an occupied hex")
			}
			if o.Action.Dest == *warrior.Position {
				t.Fatal("move option onto the unit's own hex")
			}
		}
	}
}

func TestPerturbOptions(t *testing.T) {
	build := func() []ScoredOption {
		return []ScoredOption{
			{Action: MoveAction(hexmap.HexCoord{Q: 1})},
			{Action: AttackAction(hexmap.HexCoord{Q: 2})},
			{Action: PassAction()},
		}
	}
	rng := rand.New(rand.NewSource(9))

	opts := build()
	perturbOptions(opts, IntTierHigh, rng)
	for _, o := range opts {
		if o.Noise != 0 {
			t.Errorf("high tier has noise %v", o.Noise)
		}
	}

	for i := 0; i < 100; i++ {
		opts = build()
		perturbOptions(opts, IntTierMedium, rng)
		for _, o := range opts {
			if o.Noise < -mediumNoiseSpan || o.Noise > mediumNoiseSpan {
				t.Fatalf("medium noise %v outside span %v", o.Noise, mediumNoiseSpan)
			}
		}
	}

	maxLow := lowNoiseSpan + lowMistakeSpan
	sawMistake := false
	for i := 0; i < 500; i++ {
		opts = build()
		perturbOptions(opts, IntTierLow, rng)
		if opts[0].Noise < -lowNoiseSpan || opts[0].Noise > lowNoiseSpan {
			t.Fatalf("move option noise %v outside base span", opts[0].Noise)
		}
		if opts[1].Noise < -maxLow || opts[1].Noise > maxLow {
			t.Fatalf("attack option noise %v outside span+mistake", opts[1].Noise)
		}
		if opts[1].Noise < -lowNoiseSpan || opts[1].Noise > lowNoiseSpan {
			sawMistake = true
		}
	}
	if !sawMistake {
		t.Error("low tier never produced a mistake jitter in 500 trials")
	}
}

func TestDecideActionCaptainOverride(t *testing.T) {
	// An obedient unit under a focus-fire order attacks the named target
	// even when another adjacent enemy scores higher on raw heuristics.
	warrior := testUnit(1, TeamPlayer, ClassWarrior, at(4, 4))
	warrior.Stats.Intellect = 16
	warrior.Stats.Morale, warrior.Stats.Loyalty, warrior.Stats.Stress = 100, 10, 0

	captain := testUnit(2, TeamPlayer, ClassMage, at(0, 0))
	captain.Stats.Intellect, captain.Stats.Charisma = 18, 18

	softPos := warrior.Position.Neighbor(0)
	soft := testUnit(3, TeamEnemy, ClassHealer, &softPos) // juicier raw target
	soft.HP = soft.MaxHP / 5
	hardPos := warrior.Position.Neighbor(1)
	hard := testUnit(4, TeamEnemy, ClassWarrior, &hardPos)

	units := []*Unit{warrior, captain, soft, hard}
	cs := NewCaptainSystem()
	cs.SelectCaptain(TeamPlayer, units)
	cmd := Command{Kind: CommandFocusFire, TargetID: hard.ID}
	cs.IssueCommand(TeamPlayer, cmd)

	grid := hexmap.NewGrid(12, 10)
	state := NewBattleState(grid, units, warrior, true, false, nil, &cmd)
	rng := rand.New(rand.NewSource(11))

	a := DecideAction(warrior, state, cs, nil, rng)
	if a.Kind != ActionAttack || a.TargetHex != hardPos {
		t.Errorf("expected focused attack on %v, got %s", hardPos, a)
	}
}
