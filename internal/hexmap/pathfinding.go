package hexmap

import "container/heap"

// frontierItem is one entry in the priority frontier used by A* and
// Dijkstra expansion. Ties on priority break by insertion order so search
// results are deterministic.
type frontierItem struct {
	coord    HexCoord
	priority int
	order    int
}

type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].order < h[j].order
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Pathfinder answers path, reachability, line-of-sight, and flanking queries
// against a grid. It never mutates the grid.
type Pathfinder struct {
	grid *Grid
}

// NewPathfinder creates a pathfinder over the given grid.
func NewPathfinder(grid *Grid) *Pathfinder {
	return &Pathfinder{grid: grid}
}

// NoMaxCost disables the cost bound on FindPath.
const NoMaxCost = -1

// FindPath returns the cheapest path from start to goal inclusive, or
// (nil, false) if no path exists under the constraints. Blocked hexes,
// obstacle tiles, and impassable terrain are never expanded. If maxCost is
// non-negative, routes whose accumulated cost exceeds it are pruned. A*
// with h = hex distance, which is admissible because every step costs at
// least 1.
func (p *Pathfinder) FindPath(start, goal HexCoord, blocked map[HexCoord]bool, maxCost int) ([]HexCoord, bool) {
	if !p.grid.IsValid(start) || !p.grid.IsValid(goal) {
		return nil, false
	}
	if start == goal {
		return []HexCoord{start}, true
	}
	if goalTile := p.grid.TileAt(goal); blocked[goal] || !goalTile.Passable() {
		return nil, false
	}

	gCost := map[HexCoord]int{start: 0}
	cameFrom := make(map[HexCoord]HexCoord)

	frontier := &frontierHeap{}
	heap.Init(frontier)
	order := 0
	heap.Push(frontier, frontierItem{coord: start, priority: Distance(start, goal)})

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(frontierItem)
		if cur.coord == goal {
			return reconstructPath(cameFrom, start, goal), true
		}
		curG := gCost[cur.coord]
		if cur.priority > curG+Distance(cur.coord, goal) {
			continue // Stale entry superseded by a cheaper route
		}
		for _, nb := range cur.coord.Neighbors() {
			tile := p.grid.TileAt(nb)
			if tile == nil || blocked[nb] || !tile.Passable() {
				continue
			}
			tentative := curG + tile.Terrain.MovementCost()
			if maxCost >= 0 && tentative > maxCost {
				continue
			}
			if prev, seen := gCost[nb]; seen && prev <= tentative {
				continue
			}
			gCost[nb] = tentative
			cameFrom[nb] = cur.coord
			order++
			heap.Push(frontier, frontierItem{
				coord:    nb,
				priority: tentative + Distance(nb, goal),
				order:    order,
			})
		}
	}
	return nil, false
}

func reconstructPath(cameFrom map[HexCoord]HexCoord, start, goal HexCoord) []HexCoord {
	path := []HexCoord{goal}
	cur := goal
	for cur != start {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	// Reverse in place: built goal→start.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindReachableHexes returns a cost map coordinate → cheapest movement cost
// for every hex reachable from start within maxCost. Dijkstra over a
// cost-ordered frontier; start maps to 0.
func (p *Pathfinder) FindReachableHexes(start HexCoord, maxCost int, blocked map[HexCoord]bool) map[HexCoord]int {
	costs := make(map[HexCoord]int)
	if !p.grid.IsValid(start) || maxCost < 0 {
		return costs
	}
	costs[start] = 0

	frontier := &frontierHeap{}
	heap.Init(frontier)
	order := 0
	heap.Push(frontier, frontierItem{coord: start, priority: 0})

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(frontierItem)
		if cur.priority > costs[cur.coord] {
			continue
		}
		for _, nb := range cur.coord.Neighbors() {
			tile := p.grid.TileAt(nb)
			if tile == nil || blocked[nb] || !tile.Passable() {
				continue
			}
			cost := costs[cur.coord] + tile.Terrain.MovementCost()
			if cost > maxCost {
				continue
			}
			if prev, seen := costs[nb]; seen && prev <= cost {
				continue
			}
			costs[nb] = cost
			order++
			heap.Push(frontier, frontierItem{coord: nb, priority: cost, order: order})
		}
	}
	return costs
}

// HasLineOfSight reports whether sight from start to target is clear. The
// hexes strictly between the endpoints are walked; sight is blocked by
// wall terrain, any hex in blocked, or leaving the grid.
func (p *Pathfinder) HasLineOfSight(start, target HexCoord, blocked map[HexCoord]bool) bool {
	line := start.LineTo(target)
	if len(line) < 3 {
		return true // Equal or adjacent endpoints have nothing between them
	}
	for _, c := range line[1 : len(line)-1] {
		tile := p.grid.TileAt(c)
		if tile == nil || tile.Terrain.BlocksSight() || blocked[c] {
			return false
		}
	}
	return true
}

// BearingDirection returns which of the six hex directions (0-5) most
// closely points from one coordinate toward another, by dot product against
// the cube direction vectors. Exact for adjacent hexes.
func BearingDirection(from, to HexCoord) int {
	d := to.Sub(from)
	dq, dr, ds := d.Q, d.R, d.S()
	best, bestDot := 0, -(1 << 30)
	for i, dir := range Directions {
		dot := dq*dir.Q + dr*dir.R + ds*dir.S()
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	return best
}

// IsFlanked reports whether target is flanked with respect to attacker: an
// ally stands on the hex adjacent to target in the direction exactly
// opposite the attacker. A discrete adjacency check, not a general
// geometric one.
func (p *Pathfinder) IsFlanked(target, attacker HexCoord, allies []HexCoord) bool {
	if target == attacker {
		return false
	}
	dir := BearingDirection(target, attacker)
	opposite := target.Neighbor((dir + 3) % 6)
	for _, a := range allies {
		if a == opposite {
			return true
		}
	}
	return false
}
