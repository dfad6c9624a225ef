// Battlefield generation using layered simplex noise.
// Elevation and moisture maps are sampled per tile and derive terrain.
package hexmap

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds battlefield generation parameters.
type GenConfig struct {
	Width    int
	Height   int
	Seed     int64   // Random seed (0 = random)
	WaterLvl float64 // Elevation below this becomes water
	WallLvl  float64 // Elevation above this becomes wall
}

// DefaultGenConfig returns a reasonable skirmish battlefield configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:    12,
		Height:   10,
		WaterLvl: 0.18,
		WallLvl:  0.82,
	}
}

// Generate creates a battlefield grid with noise-derived terrain.
// Deterministic for a fixed non-zero seed.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Width, cfg.Height)
	for row := 0; row < cfg.Height; row++ {
		for col := 0; col < cfg.Width; col++ {
			coord := FromOffset(OffsetCoord{Col: col, Row: row})

			// Hex axial → cartesian so adjacent hexes sample adjacent noise.
			x := float64(coord.Q) + float64(coord.R)*0.5
			y := float64(coord.R) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 3, 0.22, 0.5)
			moist := octaveNoise(moistNoise, x, y, 2, 0.18, 0.5)

			g.SetTerrain(coord, deriveTerrain(elev, moist, cfg))
		}
	}

	// Deployment rows stay open so both teams can always enter the field.
	for col := 0; col < cfg.Width; col++ {
		g.SetTerrain(FromOffset(OffsetCoord{Col: col, Row: 0}), TerrainPlains)
		g.SetTerrain(FromOffset(OffsetCoord{Col: col, Row: cfg.Height - 1}), TerrainPlains)
	}
	return g
}

func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLvl:
		return TerrainWater
	case elev > cfg.WallLvl:
		return TerrainWall
	case moist > 0.68:
		return TerrainForest
	case moist < 0.22 && elev > 0.6:
		return TerrainRubble
	default:
		return TerrainPlains
	}
}

// octaveNoise layers multiple noise frequencies for natural-looking terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxValue
}
