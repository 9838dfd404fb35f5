package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mustMode(t *testing.T, id ModeID) Mode {
	t.Helper()
	m, err := LookupMode(id)
	require.NoError(t, err)
	return m
}

// newTestState builds a running frame with a fixed chain and bead layout
func newTestState(t *testing.T, id ModeID, snake []Point, beads ...Point) State {
	t.Helper()
	return State{
		Mode:     mustMode(t, id),
		Snake:    snake,
		Heading:  Up,
		Beads:    beads,
		PowerUps: []PowerUp{},
		Effects:  Effects{},
	}
}

func quietSpawner() *Spawner {
	return NewSpawner(42).WithPowerUpChance(0)
}

func vertical(x, fromY, n int) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = Point{X: x, Y: fromY + i}
	}
	return out
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestStepMovesChainWithoutEating(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 0, Y: 0})

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Equal(t, []Point{{8, 7}, {8, 8}, {8, 9}}, next.Snake)
	assert.Equal(t, []Point{{0, 0}}, next.Beads)
	assert.Equal(t, 1, next.Ticks)
	assert.Equal(t, 0, next.Score)
	assert.Empty(t, events)

	// Input frame is untouched
	assert.Equal(t, []Point{{8, 8}, {8, 9}, {8, 10}}, st.Snake)
	assert.Equal(t, 0, st.Ticks)
}

func TestStepEatingGrowsAndRefills(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 7})

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Equal(t, []Point{{8, 7}, {8, 8}, {8, 9}, {8, 10}}, next.Snake)
	assert.Equal(t, 1, next.Score)
	assert.Equal(t, 1, next.BeadsEaten)
	require.Len(t, next.Beads, 1)
	assert.NotContains(t, next.Snake, next.Beads[0])

	require.Len(t, events, 1)
	assert.Equal(t, EventBeadEaten, events[0].Type)
	assert.Equal(t, 1, events[0].Points)
	assert.Equal(t, Point{X: 8, Y: 7}, *events[0].Pos)
}

func TestStepDoubleScoresTwice(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 7})
	Collect(&st, Double, testNow)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Equal(t, 2, next.Score)
	assert.Equal(t, 4, len(next.Snake))
}

func TestStepRushRefillsToTarget(t *testing.T) {
	st := newTestState(t, ModeRush, InitialChain(),
		Point{X: 8, Y: 7}, Point{X: 0, Y: 0}, Point{X: 16, Y: 16})

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Len(t, next.Beads, 3)
	assert.Contains(t, next.Beads, Point{X: 0, Y: 0})
	assert.Contains(t, next.Beads, Point{X: 16, Y: 16})
	assert.NotContains(t, next.Beads, Point{X: 8, Y: 7})
}

func TestStepWallEndsGame(t *testing.T) {
	st := newTestState(t, ModeClassic, vertical(8, 0, 3), Point{X: 0, Y: 0})

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.True(t, next.Lost)
	assert.False(t, next.Won)
	require.NotNil(t, next.CrashPoint)
	assert.Equal(t, Point{X: 8, Y: -1}, *next.CrashPoint)
	assert.Equal(t, vertical(8, 0, 3), next.Snake)
	assert.Equal(t, []EventType{EventGameOver}, eventTypes(events))

	after, events := Step(next, Input{Direction: Left, Now: testNow}, quietSpawner())
	assert.Nil(t, events)
	assert.Equal(t, next, after)
}

func TestStepZenWrapsWalls(t *testing.T) {
	st := newTestState(t, ModeZen, vertical(8, 0, 3), Point{X: 0, Y: 0})

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.False(t, next.Lost)
	assert.Equal(t, Point{X: 8, Y: config.GridSize - 1}, next.Snake[0])

	st = newTestState(t, ModeZen, []Point{{0, 5}, {1, 5}, {2, 5}}, Point{X: 9, Y: 9})
	st.Heading = Left
	next, _ = Step(st, Input{Direction: Left, Now: testNow}, quietSpawner())
	assert.Equal(t, Point{X: config.GridSize - 1, Y: 5}, next.Snake[0])
}

func TestStepSelfCollisionEndsGame(t *testing.T) {
	// Hook shape: moving right from (5,5) lands on (6,5)
	snake := []Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {7, 5}}
	st := newTestState(t, ModeZen, snake, Point{X: 0, Y: 0})

	next, events := Step(st, Input{Direction: Right, Now: testNow}, quietSpawner())

	assert.True(t, next.Lost)
	assert.Equal(t, Point{X: 6, Y: 5}, *next.CrashPoint)
	assert.Equal(t, []EventType{EventGameOver}, eventTypes(events))
}

func TestStepShieldAbsorbsOneHit(t *testing.T) {
	st := newTestState(t, ModeClassic, vertical(8, 0, 3), Point{X: 0, Y: 0})
	Collect(&st, Shield, testNow)

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.False(t, next.Lost)
	assert.Equal(t, Down, next.Heading)
	assert.Equal(t, vertical(8, 0, 3), next.Snake)
	assert.False(t, next.Effects.Active(Shield))
	require.Len(t, events, 1)
	assert.Equal(t, EventMitigated, events[0].Type)
	assert.Equal(t, Shield, events[0].Kind)

	// A second hit has nothing left to absorb it
	final, _ := Step(next, Input{Direction: Up, Now: testNow}, quietSpawner())
	assert.True(t, final.Lost)
}

func TestStepShieldTakesPriorityOverExtraLife(t *testing.T) {
	st := newTestState(t, ModeClassic, vertical(8, 0, 3), Point{X: 0, Y: 0})
	Collect(&st, ExtraLife, testNow)
	Collect(&st, Shield, testNow)
	require.Equal(t, 1, st.Lives)

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.False(t, next.Lost)
	assert.Equal(t, 1, next.Lives)
	assert.True(t, next.Effects.Active(ExtraLife))
	assert.False(t, next.Effects.Active(Shield))
	assert.Equal(t, Shield, events[0].Kind)
}

func TestStepExtraLifeResetsChain(t *testing.T) {
	// The bead sits on the respawned chain and must be replaced
	st := newTestState(t, ModeClassic, vertical(8, 0, 5), Point{X: 8, Y: 9})
	Collect(&st, ExtraLife, testNow)
	require.Equal(t, 1, st.Lives)

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.False(t, next.Lost)
	assert.Equal(t, 0, next.Lives)
	assert.Equal(t, InitialChain(), next.Snake)
	assert.Equal(t, Up, next.Heading)
	assert.False(t, next.Effects.Active(ExtraLife))
	require.Len(t, next.Beads, 1)
	assert.NotContains(t, next.Snake, next.Beads[0])
	assert.Equal(t, []EventType{EventMitigated}, eventTypes(events))
	assert.Equal(t, ExtraLife, events[0].Kind)
}

func TestStepExtraLifeNeedsLives(t *testing.T) {
	st := newTestState(t, ModeClassic, vertical(8, 0, 3), Point{X: 0, Y: 0})
	st.Effects.Activate(ExtraLife, testNow)
	st.Lives = 0

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.True(t, next.Lost)
}

func TestStepWinAtBraceletLength(t *testing.T) {
	chain := vertical(8, 1, config.WinLength-1)
	st := newTestState(t, ModeClassic, chain, Point{X: 8, Y: 0})

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.True(t, next.Won)
	assert.False(t, next.Lost)
	assert.Len(t, next.Snake, config.WinLength)
	assert.Equal(t, []EventType{EventBeadEaten, EventGameWon}, eventTypes(events))

	after, events := Step(next, Input{Direction: Right, Now: testNow}, quietSpawner())
	assert.Nil(t, events)
	assert.Equal(t, next.Snake, after.Snake)
	assert.Equal(t, next.Ticks, after.Ticks)
}

func TestStepBeadRainLeavesSurplus(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 7})
	Collect(&st, BeadRain, testNow)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Len(t, next.Beads, 1+config.BeadRainCount)
	assert.False(t, next.Effects.Active(BeadRain))

	// Refill only tops up; the surplus stays
	next, _ = Step(next, Input{Direction: Left, Now: testNow}, quietSpawner())
	if !next.Lost && next.BeadsEaten == 1 {
		assert.Len(t, next.Beads, 1+config.BeadRainCount)
	}
}

func TestStepMagnetPullsNearbyBead(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 11, Y: 7}, Point{X: 0, Y: 0})
	st.Mode.TargetBeads = 2
	Collect(&st, Magnet, testNow)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	head := next.Snake[0]
	require.Equal(t, Point{X: 8, Y: 7}, head)
	assert.Contains(t, next.Beads, Point{X: 10, Y: 7})
	assert.Equal(t, 2, Manhattan(Point{X: 10, Y: 7}, head))
	// Out of range
	assert.Contains(t, next.Beads, Point{X: 0, Y: 0})
}

func TestStepMagnetConsumesBeadReachingHead(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 9, Y: 7})
	Collect(&st, Magnet, testNow)

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Equal(t, 1, next.Score)
	assert.Len(t, next.Beads, 1)
	assert.NotContains(t, next.Beads, Point{X: 8, Y: 7})
	assert.Contains(t, eventTypes(events), EventBeadEaten)
}

func TestStepMagnetNeverEntersChain(t *testing.T) {
	// (8,8) is the neck after moving up; the bead at (9,9) would step
	// diagonally onto it
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 9, Y: 9})
	Collect(&st, Magnet, testNow)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	for _, b := range next.Beads {
		assert.NotContains(t, next.Snake[1:], b)
	}
}

func TestStepMagnetSkipsPowerUpCells(t *testing.T) {
	// the bead at (8,4) would step onto the power-up at (8,5)
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 4})
	st.PowerUps = []PowerUp{{Kind: Double, Pos: Point{X: 8, Y: 5}, Duration: Double.Duration()}}
	Collect(&st, Magnet, testNow)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	require.Len(t, next.PowerUps, 1)
	assert.Equal(t, []Point{{X: 8, Y: 4}}, next.Beads)
	for _, b := range next.Beads {
		assert.NotEqual(t, next.PowerUps[0].Pos, b)
	}
}

func TestStepCollectsPowerUpUnderHead(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 0, Y: 0})
	st.PowerUps = []PowerUp{{Kind: SlowMo, Pos: Point{X: 8, Y: 7}, Duration: SlowMo.Duration()}}

	next, events := Step(st, Input{Direction: Up, Now: testNow}, quietSpawner())

	assert.Empty(t, next.PowerUps)
	assert.True(t, next.Effects.Active(SlowMo))
	assert.Equal(t, testNow.Add(config.SlowMoDuration), next.Effects[SlowMo].ExpiresAt)
	assert.Equal(t, []EventType{EventPowerUpCollected}, eventTypes(events))
	assert.Equal(t, 2*config.ClassicTick, TickInterval(next.Mode, next.Effects))
}

func TestStepSpawnsPowerUpAfterBead(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 7})
	sp := NewSpawner(7).WithPowerUpChance(1)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, sp)

	require.Len(t, next.PowerUps, 1)
	pu := next.PowerUps[0]
	assert.True(t, pu.Kind.Valid())
	assert.NotContains(t, next.Snake, pu.Pos)
	assert.NotContains(t, next.Beads, pu.Pos)
}

func TestStepPowerUpCap(t *testing.T) {
	st := newTestState(t, ModeClassic, InitialChain(), Point{X: 8, Y: 7})
	st.PowerUps = []PowerUp{
		{Kind: Double, Pos: Point{X: 0, Y: 0}},
		{Kind: Magnet, Pos: Point{X: 1, Y: 0}},
	}
	sp := NewSpawner(7).WithPowerUpChance(1)

	next, _ := Step(st, Input{Direction: Up, Now: testNow}, sp)

	assert.Len(t, next.PowerUps, config.MaxPowerUps)
}

func TestStepIgnoresEmptyState(t *testing.T) {
	next, events := Step(State{}, Input{Direction: Up, Now: testNow}, quietSpawner())
	assert.Nil(t, events)
	assert.Equal(t, 0, next.Ticks)
}

func TestChainLengthNeverShrinksWithoutReset(t *testing.T) {
	sp := NewSpawner(99)
	st := NewState(mustMode(t, ModeZen), sp)
	dirs := []Direction{Up, Left, Down, Left, Up, Right, Up, Up}

	prevLen := len(st.Snake)
	for i := 0; i < 200 && !st.Over(); i++ {
		dir := dirs[i%len(dirs)]
		if dir == st.Heading.Opposite() {
			dir = st.Heading
		}
		next, events := Step(st, Input{Direction: dir, Now: testNow.Add(time.Duration(i) * config.ZenTick)}, sp)

		reset := false
		for _, e := range events {
			if e.Type == EventMitigated && e.Kind == ExtraLife {
				reset = true
			}
		}
		switch {
		case reset:
			assert.Len(t, next.Snake, config.InitialLength)
		case next.Lost:
		default:
			assert.GreaterOrEqual(t, len(next.Snake), prevLen)
			assert.LessOrEqual(t, len(next.Snake), prevLen+1)
		}
		prevLen = len(next.Snake)
		st = next
	}
}
