// Package persistence provides SQLite-based battle log storage for replay
// and analysis. The combat core itself never touches I/O; the simulator
// writes here between battles.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/combat"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/engine"
)

// DB wraps a SQLite connection for battle log persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS battles (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		decisions INTEGER NOT NULL,
		winner TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battle_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		battle_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		unit_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battle_units (
		battle_id TEXT NOT NULL,
		unit_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		class TEXT NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		PRIMARY KEY (battle_id, unit_id)
	);

	CREATE INDEX IF NOT EXISTS idx_battle_events_battle ON battle_events(battle_id, round);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveBattle records a finished battle: summary row, every event, and final
// unit states.
func (db *DB) SaveBattle(b *engine.Battle, seed int64, winner string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO battles (id, seed, rounds, decisions, winner, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID.String(), seed, b.Round, b.Decisions, winner,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert battle %s: %w", b.ID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO battle_events
		(battle_id, round, unit_id, category, description)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range b.Events {
		if _, err := stmt.Exec(b.ID.String(), ev.Round, ev.UnitID, ev.Category, ev.Description); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	for _, u := range b.Units {
		statsJSON, err := json.Marshal(u.Stats)
		if err != nil {
			return fmt.Errorf("marshal stats for unit %d: %w", u.ID, err)
		}
		alive := 0
		if u.Alive {
			alive = 1
		}
		_, err = tx.Exec(`INSERT INTO battle_units
			(battle_id, unit_id, name, team, class, hp, max_hp, alive, stats_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID.String(), u.ID, u.Name, combat.TeamName(u.Team), combat.ClassName(u.Class),
			u.HP, u.MaxHP, alive, string(statsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert unit %d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

// BattleCount returns how many battles have been recorded.
func (db *DB) BattleCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM battles")
	return n, err
}

// RecentEvents returns the latest events for a battle, oldest first.
func (db *DB) RecentEvents(battleID string, limit int) ([]combat.CombatEvent, error) {
	rows, err := db.conn.Queryx(`SELECT round, unit_id, category, description
		FROM battle_events WHERE battle_id = ?
		ORDER BY id DESC LIMIT ?`, battleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []combat.CombatEvent
	for rows.Next() {
		var ev combat.CombatEvent
		if err := rows.Scan(&ev.Round, &ev.UnitID, &ev.Category, &ev.Description); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, rows.Err()
}
