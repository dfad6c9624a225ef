package hexmap

import "container/heap"

// Terrain types for battlefield tiles.
type Terrain uint8

const (
	TerrainPlains Terrain = iota // Open ground, normal movement
	TerrainForest                // Difficult going, grants half cover
	TerrainRubble                // Collapsed masonry, difficult, half cover
	TerrainWater                 // Impassable on foot
	TerrainWall                  // Impassable, blocks line of sight
)

// ImpassableCost marks terrain that can never be entered regardless of the
// remaining movement budget.
const ImpassableCost = 999

// MovementCost returns the cost to enter a tile of this terrain.
func (t Terrain) MovementCost() int {
	switch t {
	case TerrainForest, TerrainRubble:
		return 2
	case TerrainWater, TerrainWall:
		return ImpassableCost
	default:
		return 1
	}
}

// HalfCover reports whether the terrain grants half cover to its occupant.
func (t Terrain) HalfCover() bool {
	return t == TerrainForest || t == TerrainRubble
}

// BlocksSight reports whether the terrain blocks line of sight through it.
func (t Terrain) BlocksSight() bool {
	return t == TerrainWall
}

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainRubble:
		return "rubble"
	case TerrainWater:
		return "water"
	case TerrainWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Tile is a single battlefield hex.
type Tile struct {
	Coord    HexCoord `json:"coord"`
	Terrain  Terrain  `json:"terrain"`
	Blocked  bool     `json:"blocked"`            // Blocked by an obstacle or effect
	Occupant *uint64  `json:"occupant,omitempty"` // Unit standing here, if any
}

// Passable reports whether the tile can be entered at all.
func (t *Tile) Passable() bool {
	return !t.Blocked && t.Terrain.MovementCost() < ImpassableCost
}

// HighlightKind tags transient UI highlight state on the grid. Not part of
// the simulation contract.
type HighlightKind uint8

const (
	HighlightNone HighlightKind = iota
	HighlightMove
	HighlightAttack
	HighlightAbility
)

// Grid owns the battlefield tiles. Every coordinate inside the width×height
// offset bounds has exactly one tile; out-of-bounds coordinates have none.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	tiles      map[HexCoord]*Tile
	highlights map[HexCoord]HighlightKind
}

// NewGrid creates a grid with all tiles pre-populated as plains.
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:      width,
		Height:     height,
		tiles:      make(map[HexCoord]*Tile, width*height),
		highlights: make(map[HexCoord]HighlightKind),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			coord := FromOffset(OffsetCoord{Col: col, Row: row})
			g.tiles[coord] = &Tile{Coord: coord, Terrain: TerrainPlains}
		}
	}
	return g
}

// IsValid reports whether the coordinate falls inside the grid's offset
// bounds.
func (g *Grid) IsValid(coord HexCoord) bool {
	o := coord.ToOffset()
	return o.Col >= 0 && o.Col < g.Width && o.Row >= 0 && o.Row < g.Height
}

// TileAt returns the tile at the given coordinate, or nil if out of bounds.
func (g *Grid) TileAt(coord HexCoord) *Tile {
	return g.tiles[coord]
}

// TileCount returns the total number of tiles in the grid.
func (g *Grid) TileCount() int {
	return len(g.tiles)
}

// SetTerrain changes the terrain at a coordinate. No-op out of bounds.
func (g *Grid) SetTerrain(coord HexCoord, t Terrain) {
	if tile := g.tiles[coord]; tile != nil {
		tile.Terrain = t
	}
}

// SetBlocked toggles the obstacle flag at a coordinate. No-op out of bounds.
func (g *Grid) SetBlocked(coord HexCoord, blocked bool) {
	if tile := g.tiles[coord]; tile != nil {
		tile.Blocked = blocked
	}
}

// Occupy records a unit standing on the tile.
func (g *Grid) Occupy(coord HexCoord, unitID uint64) {
	if tile := g.tiles[coord]; tile != nil {
		id := unitID
		tile.Occupant = &id
	}
}

// Vacate clears the occupant from the tile.
func (g *Grid) Vacate(coord HexCoord) {
	if tile := g.tiles[coord]; tile != nil {
		tile.Occupant = nil
	}
}

// OccupantAt returns the unit standing at the coordinate, if any.
func (g *Grid) OccupantAt(coord HexCoord) (uint64, bool) {
	tile := g.tiles[coord]
	if tile == nil || tile.Occupant == nil {
		return 0, false
	}
	return *tile.Occupant, true
}

// Highlight marks a set of coordinates for the UI layer.
func (g *Grid) Highlight(coords []HexCoord, kind HighlightKind) {
	for _, c := range coords {
		if g.IsValid(c) {
			g.highlights[c] = kind
		}
	}
}

// ClearHighlights removes all highlight marks.
func (g *Grid) ClearHighlights() {
	g.highlights = make(map[HexCoord]HighlightKind)
}

// HighlightAt returns the highlight mark at a coordinate.
func (g *Grid) HighlightAt(coord HexCoord) HighlightKind {
	return g.highlights[coord]
}

// ReachableHexes returns every coordinate reachable from start within the
// movement budget, start included. Terrain contributes its movement cost per
// tile entered; tiles in blocked, obstacle tiles, and impassable terrain are
// never entered. Frontier expansion is cost-ordered (Dijkstra) so a hex
// reachable by a cheaper route is never pruned because a costlier route
// visited it first.
func (g *Grid) ReachableHexes(start HexCoord, movement int, blocked map[HexCoord]bool) []HexCoord {
	if !g.IsValid(start) || movement < 0 {
		return nil
	}

	dist := map[HexCoord]int{start: 0}
	frontier := &frontierHeap{}
	heap.Init(frontier)
	order := 0
	heap.Push(frontier, frontierItem{coord: start, priority: 0})

	result := []HexCoord{start}
	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(frontierItem)
		if cur.priority > dist[cur.coord] {
			continue // Stale entry superseded by a cheaper route
		}
		for _, nb := range cur.coord.Neighbors() {
			tile := g.tiles[nb]
			if tile == nil || blocked[nb] || !tile.Passable() {
				continue
			}
			cost := dist[cur.coord] + tile.Terrain.MovementCost()
			if cost > movement {
				continue
			}
			if prev, seen := dist[nb]; seen && prev <= cost {
				continue
			}
			if _, seen := dist[nb]; !seen {
				result = append(result, nb)
			}
			dist[nb] = cost
			order++
			heap.Push(frontier, frontierItem{coord: nb, priority: cost, order: order})
		}
	}
	return result
}
