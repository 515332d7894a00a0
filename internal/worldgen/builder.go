package worldgen

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pixil98/go-story/internal/world"
)

// Builder generates zones on demand. The same seed string and zone
// coordinate always produce the same zone.
type Builder struct {
	seed   int64
	tuning Tuning

	elevation opensimplex.Noise
	moisture  opensimplex.Noise
}

// NewBuilder derives noise layers from the world's seed string.
func NewBuilder(seed string, tuning Tuning) *Builder {
	h := fnv.New64a()
	h.Write([]byte(seed))
	n := int64(h.Sum64())

	return &Builder{
		seed:      n,
		tuning:    tuning,
		elevation: opensimplex.NewNormalized(n),
		moisture:  opensimplex.NewNormalized(n + 1),
	}
}

// ZoneID names the zone at a world coordinate.
func ZoneID(coords world.Point) string {
	return fmt.Sprintf("zone-%d-%d", coords.X, coords.Y)
}

// Build generates the zone at the given world coordinate.
func (b *Builder) Build(coords world.Point) *world.Zone {
	// Coarse noise picks the zone's biome; fine octaves vary its ground.
	elev := octaveNoise(b.elevation, float64(coords.X), float64(coords.Y), 3, 0.15, 0.5)
	moist := octaveNoise(b.moisture, float64(coords.X), float64(coords.Y), 3, 0.12, 0.5)
	biome := b.tuning.pick(elev, moist)

	rng := rand.New(rand.NewSource(b.zoneSeed(coords)))

	z := &world.Zone{
		ID:             ZoneID(coords),
		Coords:         coords,
		Biome:          biome.Name,
		Generated:      true,
		GenerationSeed: fmt.Sprintf("%d", b.zoneSeed(coords)),
		LastVisited:    time.Time{},
		Characters:     []string{},
	}

	z.Tiles = []world.TileLayer{b.groundLayer(biome, rng)}
	z.Objects = b.scatterObjects(biome, rng)
	z.Exits = buildExits(coords, b.tuning.ZoneWidth, b.tuning.ZoneHeight)

	return z
}

func (b *Builder) zoneSeed(coords world.Point) int64 {
	return b.seed ^ (int64(coords.X) << 32) ^ (int64(coords.Y) & 0xffffffff)
}

func (b *Builder) groundLayer(biome BiomeDef, rng *rand.Rand) world.TileLayer {
	w, h := b.tuning.ZoneWidth, b.tuning.ZoneHeight
	layer := world.TileLayer{
		Name:   "ground",
		Width:  w,
		Height: h,
		Cells:  make([]world.TileCell, w*h),
	}

	var totalWeight float64
	for _, g := range biome.Ground {
		totalWeight += g.Weight
	}

	for i := range layer.Cells {
		roll := rng.Float64() * totalWeight
		for _, g := range biome.Ground {
			roll -= g.Weight
			if roll <= 0 {
				layer.Cells[i] = world.TileCell{Char: g.Char, FG: g.FG}
				break
			}
		}
	}
	return layer
}

func (b *Builder) scatterObjects(biome BiomeDef, rng *rand.Rand) []*world.WorldObject {
	w, h := b.tuning.ZoneWidth, b.tuning.ZoneHeight
	var objects []*world.WorldObject

	for _, spec := range biome.Objects {
		count := int(float64(w*h) * spec.Density)
		for i := 0; i < count; i++ {
			objects = append(objects, &world.WorldObject{
				ID:        fmt.Sprintf("%s-%d", spec.Type, i),
				Type:      spec.Type,
				Position:  world.Point{X: rng.Intn(w), Y: rng.Intn(h)},
				Char:      spec.Char,
				FG:        spec.FG,
				Collision: spec.Collision,
			})
		}
	}
	return objects
}

// buildExits links every zone edge to the adjacent zone's opposite edge
// midpoint.
func buildExits(coords world.Point, width, height int) []world.Exit {
	return []world.Exit{
		{
			Direction:      world.DirUp,
			TargetZone:     ZoneID(world.Point{X: coords.X, Y: coords.Y - 1}),
			TargetPosition: world.Point{X: width / 2, Y: height - 1},
		},
		{
			Direction:      world.DirDown,
			TargetZone:     ZoneID(world.Point{X: coords.X, Y: coords.Y + 1}),
			TargetPosition: world.Point{X: width / 2, Y: 0},
		},
		{
			Direction:      world.DirLeft,
			TargetZone:     ZoneID(world.Point{X: coords.X - 1, Y: coords.Y}),
			TargetPosition: world.Point{X: width - 1, Y: height / 2},
		},
		{
			Direction:      world.DirRight,
			TargetZone:     ZoneID(world.Point{X: coords.X + 1, Y: coords.Y}),
			TargetPosition: world.Point{X: 0, Y: height / 2},
		},
	}
}

// octaveNoise layers noise frequencies for less uniform terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
