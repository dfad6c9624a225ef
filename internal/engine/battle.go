// Package engine drives a battle turn by turn: it owns the unit registry,
// builds a fresh snapshot before every decision call, hands chosen actions
// to the resolver, and tracks events and victory.
package engine

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/combat"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// Battle holds the complete state of one tactical engagement. Execution is
// single-threaded and turn-sequential: exactly one unit decides and acts at
// a time.
type Battle struct {
	ID        uuid.UUID
	Grid      *hexmap.Grid
	Units     []*combat.Unit
	UnitIndex map[uint64]*combat.Unit
	Captains  *combat.CaptainSystem
	Catalog   combat.Catalog

	Events    []combat.CombatEvent
	Round     int
	Decisions int // Total decision calls made

	resolver *combat.Resolver
	rng      *rand.Rand

	// Hexes blocked by external effects, merged into every snapshot.
	extraBlocked map[hexmap.HexCoord]bool
}

// NewBattle places the units on the grid, selects each team's captain, and
// returns a battle ready to run.
func NewBattle(grid *hexmap.Grid, units []*combat.Unit, catalog combat.Catalog, rng *rand.Rand) *Battle {
	index := make(map[uint64]*combat.Unit, len(units))
	for _, u := range units {
		index[u.ID] = u
		if u.OnField() {
			grid.Occupy(*u.Position, u.ID)
		}
	}

	captains := combat.NewCaptainSystem()
	captains.SelectCaptain(combat.TeamPlayer, units)
	captains.SelectCaptain(combat.TeamEnemy, units)

	return &Battle{
		ID:           uuid.New(),
		Grid:         grid,
		Units:        units,
		UnitIndex:    index,
		Captains:     captains,
		Catalog:      catalog,
		resolver:     combat.NewResolver(grid, rng),
		rng:          rng,
		extraBlocked: make(map[hexmap.HexCoord]bool),
	}
}

// BlockHex marks a hex as blocked by an external effect for future
// snapshots.
func (b *Battle) BlockHex(c hexmap.HexCoord, blocked bool) {
	if blocked {
		b.extraBlocked[c] = true
	} else {
		delete(b.extraBlocked, c)
	}
}

// AliveCount returns how many units of the team still stand.
func (b *Battle) AliveCount(team combat.Team) int {
	n := 0
	for _, u := range b.Units {
		if u.Alive && u.Team == team {
			n++
		}
	}
	return n
}

// Winner returns the winning team once the other side has no units left.
func (b *Battle) Winner() (combat.Team, bool) {
	player := b.AliveCount(combat.TeamPlayer)
	enemy := b.AliveCount(combat.TeamEnemy)
	switch {
	case player > 0 && enemy == 0:
		return combat.TeamPlayer, true
	case enemy > 0 && player == 0:
		return combat.TeamEnemy, true
	default:
		return 0, false
	}
}

// Run plays rounds until one side is eliminated or maxRounds is reached.
// Returns the winner, if any.
func (b *Battle) Run(maxRounds int) (combat.Team, bool) {
	for b.Round < maxRounds {
		if winner, done := b.Winner(); done {
			return winner, true
		}
		b.PlayRound()
	}
	return b.Winner()
}

// PlayRound advances the battle one full round: captains issue commands,
// then every living unit takes its turn in initiative order.
func (b *Battle) PlayRound() {
	b.Round++
	b.issueCommands()

	for _, u := range b.initiativeOrder() {
		if !u.OnField() {
			continue
		}
		b.playTurn(u)
		if _, done := b.Winner(); done {
			return
		}
	}
}

// initiativeOrder returns living units fastest first; ties resolve by ID so
// turn order is stable.
func (b *Battle) initiativeOrder() []*combat.Unit {
	order := make([]*combat.Unit, 0, len(b.Units))
	for _, u := range b.Units {
		if u.Alive {
			order = append(order, u)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].MovementSpeed != order[j].MovementSpeed {
			return order[i].MovementSpeed > order[j].MovementSpeed
		}
		return order[i].ID < order[j].ID
	})
	return order
}

// playTurn runs one unit's turn: movement-phase decision, then action-phase
// decision, each on a fresh snapshot.
func (b *Battle) playTurn(u *combat.Unit) {
	combat.TickStatuses(u)

	cmd := b.Captains.CurrentCommand(u.Team)

	// Movement phase. The unit may spend this decision on something other
	// than moving, which consumes its action instead.
	state := combat.NewBattleState(b.Grid, b.Units, u, false, false, b.extraBlocked, cmd)
	action := combat.DecideAction(u, state, b.Captains, b.Catalog, b.rng)
	b.Decisions++
	b.record(u, action, state)

	acted := false
	switch action.Kind {
	case combat.ActionMove:
	case combat.ActionPass:
		// Declined to move; the action phase still follows.
	default:
		acted = true
	}

	if acted || !u.OnField() {
		return
	}

	// Action phase on an updated snapshot reflecting any movement.
	state = combat.NewBattleState(b.Grid, b.Units, u, true, false, b.extraBlocked, cmd)
	action = combat.DecideAction(u, state, b.Captains, b.Catalog, b.rng)
	b.Decisions++
	b.record(u, action, state)
}

// record resolves the action and appends its events.
func (b *Battle) record(u *combat.Unit, action combat.Action, state *combat.BattleState) {
	events := b.resolver.Execute(b.Round, u, action, state, b.Catalog)
	for _, ev := range events {
		slog.Debug("combat event", "round", ev.Round, "category", ev.Category, "event", ev.Description)
	}
	b.Events = append(b.Events, events...)
}

// issueCommands lets each team's captain set this round's order. A dead
// captain triggers re-selection before any order is given.
func (b *Battle) issueCommands() {
	for _, team := range []combat.Team{combat.TeamPlayer, combat.TeamEnemy} {
		captain := b.captainOf(team)
		if captain == nil {
			b.Captains.ClearCommand(team)
			continue
		}
		if cmd, ok := b.captainDoctrine(team); ok {
			cmd.IssuedTurn = b.Round
			b.Captains.IssueCommand(team, cmd)
			slog.Debug("captain command",
				"team", combat.TeamName(team),
				"captain", captain.Name,
				"command", combat.CommandName(cmd.Kind))
		} else {
			b.Captains.ClearCommand(team)
		}
	}
}

func (b *Battle) captainOf(team combat.Team) *combat.Unit {
	if id, ok := b.Captains.CaptainID(team); ok {
		if u := b.UnitIndex[id]; u != nil && u.Alive {
			return u
		}
	}
	return b.Captains.SelectCaptain(team, b.Units)
}

// captainDoctrine picks this round's order: dig in when the team is badly
// hurt, otherwise concentrate on the weakest enemy.
func (b *Battle) captainDoctrine(team combat.Team) (combat.Command, bool) {
	var hpSum, hpMax int
	var weakest *combat.Unit
	for _, u := range b.Units {
		if !u.Alive {
			continue
		}
		if u.Team == team {
			hpSum += u.HP
			hpMax += u.MaxHP
			continue
		}
		if weakest == nil || u.HPFraction() < weakest.HPFraction() {
			weakest = u
		}
	}
	if weakest == nil {
		return combat.Command{}, false
	}
	if hpMax > 0 && float64(hpSum)/float64(hpMax) < 0.35 {
		return combat.Command{Kind: combat.CommandDefensive}, true
	}
	return combat.Command{Kind: combat.CommandFocusFire, TargetID: weakest.ID}, true
}
