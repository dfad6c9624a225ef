// Package api provides the read-only HTTP API for observing a battle.
// This is the query surface UI collaborators (grid highlighting, replays)
// depend on; it never mutates combat state.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/combat"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/engine"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// Server serves battle state over HTTP.
type Server struct {
	Battle *engine.Battle
	Port   int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("battle API listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("battle API stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	winner, done := s.Battle.Winner()
	status := map[string]any{
		"battle_id": s.Battle.ID.String(),
		"round":     s.Battle.Round,
		"decisions": s.Battle.Decisions,
		"player":    s.Battle.AliveCount(combat.TeamPlayer),
		"enemy":     s.Battle.AliveCount(combat.TeamEnemy),
		"finished":  done,
	}
	if done {
		status["winner"] = combat.TeamName(winner)
	}
	writeJSON(w, status)
}

type tileView struct {
	Coord   hexmap.HexCoord `json:"coord"`
	Terrain string          `json:"terrain"`
	Blocked bool            `json:"blocked"`
	Unit    *uint64         `json:"unit,omitempty"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Battle.Grid
	tiles := make([]tileView, 0, g.TileCount())
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			tile := g.TileAt(hexmap.FromOffset(hexmap.OffsetCoord{Col: col, Row: row}))
			tiles = append(tiles, tileView{
				Coord:   tile.Coord,
				Terrain: hexmap.TerrainName(tile.Terrain),
				Blocked: tile.Blocked,
				Unit:    tile.Occupant,
			})
		}
	}
	writeJSON(w, map[string]any{
		"width":  g.Width,
		"height": g.Height,
		"tiles":  tiles,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	type unitView struct {
		*combat.Unit
		TeamName  string `json:"team_name"`
		ClassName string `json:"class_name"`
		Tier      string `json:"int_tier"`
	}
	views := make([]unitView, 0, len(s.Battle.Units))
	for _, u := range s.Battle.Units {
		views = append(views, unitView{
			Unit:      u,
			TeamName:  combat.TeamName(u.Team),
			ClassName: combat.ClassName(u.Class),
			Tier:      combat.TierName(u.IntTier()),
		})
	}
	writeJSON(w, views)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	events := s.Battle.Events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}
