// battlesim runs a tactical skirmish end to end: generates a battlefield,
// fields two squads, lets the decision engine play them against each other,
// and records the battle log.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/api"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/combat"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/config"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/engine"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/persistence"
)

func main() {
	seed := flag.Int64("seed", 0, "RNG seed (0 = random)")
	width := flag.Int("width", 12, "battlefield width in hexes")
	height := flag.Int("height", 10, "battlefield height in hexes")
	abilitiesPath := flag.String("abilities", "", "abilities YAML file (empty = built-in catalog)")
	dbPath := flag.String("db", "", "SQLite battle log path (empty = no persistence)")
	port := flag.Int("port", 0, "HTTP observation port (0 = disabled)")
	maxRounds := flag.Int("rounds", 50, "maximum rounds before calling the battle a draw")
	verbose := flag.Bool("v", false, "log every combat event")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *seed == 0 {
		*seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(*seed))

	catalog := config.DefaultAbilities()
	if *abilitiesPath != "" {
		var err error
		catalog, err = config.LoadAbilities(*abilitiesPath)
		if err != nil {
			slog.Error("failed to load abilities", "path", *abilitiesPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("ability catalog ready", "abilities", len(catalog))

	grid := hexmap.Generate(hexmap.GenConfig{
		Width:    *width,
		Height:   *height,
		Seed:     *seed,
		WaterLvl: 0.18,
		WallLvl:  0.82,
	})
	slog.Info("battlefield generated", "width", *width, "height", *height, "seed", *seed)

	units := demoRoster(*width, *height)
	battle := engine.NewBattle(grid, units, catalog, rng)
	slog.Info("battle begins", "battle_id", battle.ID, "units", len(units))

	if *port > 0 {
		srv := &api.Server{Battle: battle, Port: *port}
		srv.Start()
	}

	winner, decided := battle.Run(*maxRounds)

	var db *persistence.DB
	if *dbPath != "" {
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open battle log", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	outcome := "draw"
	if decided {
		outcome = combat.TeamName(winner)
	}
	slog.Info("battle complete",
		"winner", outcome,
		"rounds", battle.Round,
		"decisions", humanize.Comma(int64(battle.Decisions)),
		"events", humanize.Comma(int64(len(battle.Events))))

	if db != nil {
		if err := db.SaveBattle(battle, *seed, outcome); err != nil {
			slog.Error("failed to save battle", "error", err)
			os.Exit(1)
		}
		slog.Info("battle log saved", "path", *dbPath, "battle_id", battle.ID)
	}
}

// demoRoster fields two mirrored four-unit squads on opposite deployment
// rows. The enemy squad carries weaker intellect so the tier perturbation
// is visible in logs.
func demoRoster(width, height int) []*combat.Unit {
	at := func(col, row int) *hexmap.HexCoord {
		c := hexmap.FromOffset(hexmap.OffsetCoord{Col: col, Row: row})
		return &c
	}
	step := width / 5
	if step < 1 {
		step = 1
	}

	return []*combat.Unit{
		newUnit(1, "Garrick", combat.TeamPlayer, combat.ClassWarrior, 16, at(step, 0)),
		newUnit(2, "Wren", combat.TeamPlayer, combat.ClassRanger, 11, at(step*2, 0)),
		newUnit(3, "Maelis", combat.TeamPlayer, combat.ClassMage, 15, at(step*3, 0)),
		newUnit(4, "Tomas", combat.TeamPlayer, combat.ClassHealer, 12, at(step*4, 0)),

		newUnit(5, "Raider", combat.TeamEnemy, combat.ClassWarrior, 6, at(step, height-1)),
		newUnit(6, "Skirmisher", combat.TeamEnemy, combat.ClassRanger, 9, at(step*2, height-1)),
		newUnit(7, "Hexer", combat.TeamEnemy, combat.ClassMage, 12, at(step*3, height-1)),
		newUnit(8, "Bonesetter", combat.TeamEnemy, combat.ClassHealer, 8, at(step*4, height-1)),
	}
}

func newUnit(id uint64, name string, team combat.Team, class combat.Class, intellect int, pos *hexmap.HexCoord) *combat.Unit {
	u := &combat.Unit{
		ID:       id,
		Name:     name,
		Team:     team,
		Class:    class,
		Position: pos,
		Alive:    true,
		Stats: combat.Stats{
			Intellect: intellect,
			Charisma:  8,
			Morale:    60,
			Loyalty:   6,
			Stress:    20,
			Bravery:   5,
			Caution:   5,
		},
	}

	switch class {
	case combat.ClassWarrior:
		u.MaxHP, u.MaxStamina, u.MaxMana = 60, 40, 0
		u.MovementSpeed = 4
		u.Stats.Strength = 12
		u.Threat = 50
		u.Abilities = []string{"power_strike", "iron_skin"}
	case combat.ClassRanger:
		u.MaxHP, u.MaxStamina, u.MaxMana = 42, 40, 0
		u.MovementSpeed = 5
		u.Stats.Strength = 8
		u.Threat = 45
		u.Abilities = []string{"piercing_shot"}
	case combat.ClassMage:
		u.MaxHP, u.MaxStamina, u.MaxMana = 34, 10, 50
		u.MovementSpeed = 3
		u.Stats.Strength = 4
		u.Threat = 60
		u.Abilities = []string{"firebolt", "fireball", "expose_weakness"}
	case combat.ClassHealer:
		u.MaxHP, u.MaxStamina, u.MaxMana = 38, 10, 50
		u.MovementSpeed = 3
		u.Stats.Strength = 4
		u.Threat = 30
		u.Abilities = []string{"mend_wounds", "battle_hymn"}
	}

	u.HP, u.Mana, u.Stamina = u.MaxHP, u.MaxMana, u.MaxStamina
	return u
}
