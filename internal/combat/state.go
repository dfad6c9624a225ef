package combat

import (
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// BattleState is an immutable per-decision snapshot. The turn scheduler
// builds a fresh one before each decision call, so the decision engine can
// never observe mutations made after the snapshot was taken.
type BattleState struct {
	Grid  *hexmap.Grid
	Units []*Unit
	Actor *Unit

	HasMovedThisTurn bool
	HasActedThisTurn bool

	// Blocked holds every hex the actor may not path through: tiles occupied
	// by other units plus externally blocked hexes.
	Blocked map[hexmap.HexCoord]bool

	// Command is the active captain command for the actor's team, if any.
	Command *Command
}

// NewBattleState builds a snapshot for one decision by the given actor. The
// blocked set is derived from the positions of every other on-field unit,
// merged with extra (externally blocked hexes, may be nil).
func NewBattleState(grid *hexmap.Grid, units []*Unit, actor *Unit, hasMoved, hasActed bool, extra map[hexmap.HexCoord]bool, cmd *Command) *BattleState {
	blocked := make(map[hexmap.HexCoord]bool, len(units)+len(extra))
	for c := range extra {
		blocked[c] = true
	}
	for _, u := range units {
		if u.OnField() && u.ID != actor.ID {
			blocked[*u.Position] = true
		}
	}
	return &BattleState{
		Grid:             grid,
		Units:            units,
		Actor:            actor,
		HasMovedThisTurn: hasMoved,
		HasActedThisTurn: hasActed,
		Blocked:          blocked,
		Command:          cmd,
	}
}

// UnitAt returns the on-field unit standing at the coordinate, if any.
func (s *BattleState) UnitAt(coord hexmap.HexCoord) *Unit {
	for _, u := range s.Units {
		if u.OnField() && *u.Position == coord {
			return u
		}
	}
	return nil
}

// EnemiesOf returns every on-field unit on the opposing team, in roster
// order.
func (s *BattleState) EnemiesOf(u *Unit) []*Unit {
	var result []*Unit
	for _, other := range s.Units {
		if other.OnField() && other.Team != u.Team {
			result = append(result, other)
		}
	}
	return result
}

// AlliesOf returns every other on-field unit on the same team, in roster
// order.
func (s *BattleState) AlliesOf(u *Unit) []*Unit {
	var result []*Unit
	for _, other := range s.Units {
		if other.OnField() && other.Team == u.Team && other.ID != u.ID {
			result = append(result, other)
		}
	}
	return result
}

// AllyPositions returns the coordinates of the unit's on-field allies.
func (s *BattleState) AllyPositions(u *Unit) []hexmap.HexCoord {
	allies := s.AlliesOf(u)
	coords := make([]hexmap.HexCoord, 0, len(allies))
	for _, a := range allies {
		coords = append(coords, *a.Position)
	}
	return coords
}

// NearestEnemy returns the closest on-field enemy measured from the given
// coordinate, and the distance to it. Ties resolve to roster order. Returns
// nil if no enemy remains.
func (s *BattleState) NearestEnemy(u *Unit, from hexmap.HexCoord) (*Unit, int) {
	var nearest *Unit
	best := 0
	for _, e := range s.EnemiesOf(u) {
		d := hexmap.Distance(from, *e.Position)
		if nearest == nil || d < best {
			nearest = e
			best = d
		}
	}
	return nearest, best
}

// UnitByID returns the unit with the given ID, or nil.
func (s *BattleState) UnitByID(id uint64) *Unit {
	for _, u := range s.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}
