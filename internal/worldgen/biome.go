// Package worldgen builds zones procedurally: layered simplex noise picks
// a biome per zone, fills its tile grid, and scatters objects, all
// deterministic for a given world seed and zone coordinate.
package worldgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GroundTile is one weighted ground-cell option.
type GroundTile struct {
	Char   string  `yaml:"char"`
	FG     string  `yaml:"fg"`
	Weight float64 `yaml:"weight"`
}

// ObjectSpec is one kind of object a biome scatters.
type ObjectSpec struct {
	Type      string  `yaml:"type"`
	Char      string  `yaml:"char"`
	FG        string  `yaml:"fg"`
	Density   float64 `yaml:"density"`
	Collision bool    `yaml:"collision"`
}

// BiomeDef is the look and contents of one biome.
type BiomeDef struct {
	Name    string       `yaml:"name"`
	Ground  []GroundTile `yaml:"ground"`
	Objects []ObjectSpec `yaml:"objects"`

	// Noise thresholds selecting this biome: the first biome whose
	// ranges contain the sampled elevation and moisture wins.
	ElevationMin float64 `yaml:"elevation_min"`
	ElevationMax float64 `yaml:"elevation_max"`
	MoistureMin  float64 `yaml:"moisture_min"`
	MoistureMax  float64 `yaml:"moisture_max"`
}

// Tuning holds the generation parameters, loadable from YAML so worlds
// can restyle terrain without a rebuild.
type Tuning struct {
	ZoneWidth  int        `yaml:"zone_width"`
	ZoneHeight int        `yaml:"zone_height"`
	Biomes     []BiomeDef `yaml:"biomes"`
}

// LoadTuning reads tuning from a YAML file.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning yaml: %w", err)
	}
	if len(t.Biomes) == 0 {
		return t, fmt.Errorf("tuning yaml: no biomes defined")
	}
	if t.ZoneWidth <= 0 || t.ZoneHeight <= 0 {
		return t, fmt.Errorf("tuning yaml: zone dimensions must be positive")
	}
	return t, nil
}

// DefaultTuning is used when no tuning file is configured.
func DefaultTuning() Tuning {
	return Tuning{
		ZoneWidth:  48,
		ZoneHeight: 24,
		Biomes: []BiomeDef{
			{
				Name:         "lake",
				ElevationMin: 0, ElevationMax: 0.25,
				MoistureMin: 0, MoistureMax: 1,
				Ground: []GroundTile{
					{Char: "~", FG: "#3366cc", Weight: 1},
				},
			},
			{
				Name:         "marsh",
				ElevationMin: 0.25, ElevationMax: 0.4,
				MoistureMin: 0.6, MoistureMax: 1,
				Ground: []GroundTile{
					{Char: ",", FG: "#557755", Weight: 3},
					{Char: "~", FG: "#446644", Weight: 1},
				},
				Objects: []ObjectSpec{
					{Type: "reeds", Char: "|", FG: "#668855", Density: 0.03},
				},
			},
			{
				Name:         "forest",
				ElevationMin: 0.4, ElevationMax: 0.7,
				MoistureMin: 0.5, MoistureMax: 1,
				Ground: []GroundTile{
					{Char: ".", FG: "#336633", Weight: 4},
					{Char: ",", FG: "#2d5a2d", Weight: 2},
				},
				Objects: []ObjectSpec{
					{Type: "tree", Char: "T", FG: "#1e4d1e", Density: 0.08, Collision: true},
					{Type: "bush", Char: "*", FG: "#3a6b3a", Density: 0.02},
				},
			},
			{
				Name:         "plains",
				ElevationMin: 0.25, ElevationMax: 0.7,
				MoistureMin: 0, MoistureMax: 0.6,
				Ground: []GroundTile{
					{Char: ".", FG: "#559944", Weight: 5},
					{Char: "'", FG: "#66aa55", Weight: 2},
				},
				Objects: []ObjectSpec{
					{Type: "rock", Char: "o", FG: "#888888", Density: 0.01, Collision: true},
					{Type: "flowers", Char: "*", FG: "#cc66aa", Density: 0.015},
				},
			},
			{
				Name:         "hills",
				ElevationMin: 0.7, ElevationMax: 1,
				MoistureMin: 0, MoistureMax: 1,
				Ground: []GroundTile{
					{Char: "^", FG: "#997755", Weight: 2},
					{Char: ".", FG: "#887766", Weight: 3},
				},
				Objects: []ObjectSpec{
					{Type: "boulder", Char: "O", FG: "#777777", Density: 0.03, Collision: true},
				},
			},
		},
	}
}

// pick returns the biome matching the sampled noise, falling back to the
// last biome so every sample lands somewhere.
func (t Tuning) pick(elevation, moisture float64) BiomeDef {
	for _, b := range t.Biomes {
		if elevation >= b.ElevationMin && elevation < b.ElevationMax &&
			moisture >= b.MoistureMin && moisture <= b.MoistureMax {
			return b
		}
	}
	return t.Biomes[len(t.Biomes)-1]
}
