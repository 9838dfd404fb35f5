package game

import (
	"math/rand"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// Spawner places beads and power-ups on free cells
type Spawner struct {
	rng    *rand.Rand
	chance float64
}

// NewSpawner creates a spawner; seed 0 seeds from the clock
func NewSpawner(seed int64) *Spawner {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed)),
		chance: config.PowerUpChance,
	}
}

// WithPowerUpChance overrides the post-bead power-up probability
func (s *Spawner) WithPowerUpChance(p float64) *Spawner {
	s.chance = p
	return s
}

func (s *Spawner) randomCell() Point {
	return Point{
		X: s.rng.Intn(config.GridSize),
		Y: s.rng.Intn(config.GridSize),
	}
}

// SpawnBeads picks up to count distinct free cells. It gives up after the
// attempt budget, so a crowded board yields fewer beads than asked for.
func (s *Spawner) SpawnBeads(excluded mapset.Set[Point], count int) []Point {
	result := make([]Point, 0, count)
	chosen := mapset.New[Point]()
	for attempts := 0; len(result) < count && attempts < config.BeadSpawnAttempts; attempts++ {
		pos := s.randomCell()
		if excluded.Has(pos) || chosen.Has(pos) {
			continue
		}
		chosen.Put(pos)
		result = append(result, pos)
	}
	return result
}

// SpawnPowerUp finds one free cell and pairs it with a random kind
func (s *Spawner) SpawnPowerUp(excluded mapset.Set[Point]) (PowerUp, bool) {
	for attempts := 0; attempts < config.PowerUpSpawnAttempts; attempts++ {
		pos := s.randomCell()
		if excluded.Has(pos) {
			continue
		}
		kind := AllPowerUps[s.rng.Intn(len(AllPowerUps))]
		return PowerUp{Kind: kind, Pos: pos, Duration: kind.Duration()}, true
	}
	return PowerUp{}, false
}

// ShouldSpawnPowerUp rolls for a power-up after a bead was eaten
func (s *Spawner) ShouldSpawnPowerUp(mode Mode, present int) bool {
	if !mode.PowerUps || present >= config.MaxPowerUps {
		return false
	}
	return s.rng.Float64() < s.chance
}
