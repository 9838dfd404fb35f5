package game

import (
	"sort"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// Input is what a tick consumes besides the state
type Input struct {
	Direction Direction
	Now       time.Time
}

// stepper carries the per-tick collaborators and collects events
type stepper struct {
	spawner *Spawner
	now     time.Time
	events  []Event
}

func (sp *stepper) emit(e Event) {
	sp.events = append(sp.events, e)
}

// Step advances the chain one cell in the requested direction and returns
// the next frame with the events it produced. A state with no chain, no
// mode or a finished game is returned unchanged.
func Step(prev State, in Input, spawner *Spawner) (State, []Event) {
	if len(prev.Snake) == 0 || prev.Mode.ID == "" || prev.Over() {
		return prev, nil
	}

	st := prev.Clone()
	sp := &stepper{spawner: spawner, now: in.Now}
	st.Ticks++
	sp.advance(&st, in.Direction)
	return st, sp.events
}

func (sp *stepper) advance(st *State, dir Direction) {
	head := NextHead(st.Snake[0], dir)

	fatal := false
	if st.Mode.WrapWalls {
		head = Wrap(head)
	} else if !InBounds(head) {
		fatal = true
	}
	if !fatal && contains(st.Snake, head) {
		fatal = true
	}
	if fatal {
		sp.fatal(st, dir, head)
		return
	}

	st.Heading = dir
	st.Snake = append([]Point{head}, st.Snake...)

	ate := sp.eatAt(st, head)
	if !ate {
		st.Snake = st.Snake[:len(st.Snake)-1]
	}
	sp.refill(st)

	if ate {
		sp.rollPowerUp(st)
		for _, kind := range AllPowerUps {
			if h := powerUpTable[kind]; h.afterEat != nil && st.Effects.Active(kind) {
				h.afterEat(st, sp)
			}
		}
	}
	for _, kind := range AllPowerUps {
		if h := powerUpTable[kind]; h.afterMove != nil && st.Effects.Active(kind) {
			h.afterMove(st, sp)
		}
	}

	sp.collectPowerUps(st)

	if len(st.Snake) >= config.WinLength {
		st.Won = true
		sp.emit(gameWon(st.Score))
	}
}

// fatal offers a wall or self collision to the mitigating effects in order
// and ends the game when none of them absorbs it.
func (sp *stepper) fatal(st *State, dir Direction, crash Point) {
	for _, kind := range mitigationOrder {
		h := powerUpTable[kind]
		if h.mitigate == nil || !st.Effects.Active(kind) {
			continue
		}
		if h.mitigate(st, dir, sp) {
			sp.emit(mitigated(kind))
			sp.collectPowerUps(st)
			return
		}
	}
	st.Lost = true
	st.CrashPoint = &crash
	sp.emit(gameOver(st.Score, crash))
}

// shieldDeflect absorbs the hit and turns the chain around in place
func shieldDeflect(st *State, dir Direction, _ *stepper) bool {
	st.Effects.Consume(Shield)
	st.Heading = dir.Opposite()
	return true
}

// extraLifeRespawn spends a life to put the chain back at the start
func extraLifeRespawn(st *State, _ Direction, sp *stepper) bool {
	if st.Lives <= 0 {
		return false
	}
	st.Effects.Consume(ExtraLife)
	st.Lives--
	st.Snake = InitialChain()
	st.Heading = Up

	kept := make([]Point, 0, len(st.Beads))
	for _, b := range st.Beads {
		if !contains(st.Snake, b) {
			kept = append(kept, b)
		}
	}
	st.Beads = kept
	sp.refill(st)
	return true
}

// eatAt consumes the bead at pos, if any, and scores it
func (sp *stepper) eatAt(st *State, pos Point) bool {
	i := indexOf(st.Beads, pos)
	if i < 0 {
		return false
	}
	st.Beads = append(st.Beads[:i], st.Beads[i+1:]...)
	points := scoreFor(st.Effects)
	st.Score += points
	st.BeadsEaten++
	sp.emit(beadEaten(points, pos))
	return true
}

// refill tops the beads back up to the mode target. A short spawn is fine;
// the next tick tries again.
func (sp *stepper) refill(st *State) {
	missing := st.Mode.TargetBeads - len(st.Beads)
	if missing <= 0 {
		return
	}
	st.Beads = append(st.Beads, sp.spawner.SpawnBeads(st.occupied(), missing)...)
}

func (sp *stepper) rollPowerUp(st *State) {
	if !sp.spawner.ShouldSpawnPowerUp(st.Mode, len(st.PowerUps)) {
		return
	}
	if pu, ok := sp.spawner.SpawnPowerUp(st.occupied()); ok {
		st.PowerUps = append(st.PowerUps, pu)
	}
}

// beadRain drops extra beads on top of the mode target
func beadRain(st *State, sp *stepper) {
	st.Effects.Consume(BeadRain)
	st.Beads = append(st.Beads, sp.spawner.SpawnBeads(st.occupied(), config.BeadRainCount)...)
}

// magnetPull steps nearby beads one cell toward the head. Closer beads move
// first so they clear the way for the ones behind them.
func magnetPull(st *State, sp *stepper) {
	head := st.Snake[0]

	blocked := mapset.New[Point]()
	for _, p := range st.Snake[1:] {
		blocked.Put(p)
	}
	for _, b := range st.Beads {
		blocked.Put(b)
	}
	// A power-up under the head is collected later this tick
	for _, pu := range st.PowerUps {
		if pu.Pos != head {
			blocked.Put(pu.Pos)
		}
	}

	order := make([]int, len(st.Beads))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return Manhattan(st.Beads[order[a]], head) < Manhattan(st.Beads[order[b]], head)
	})

	pulled := false
	for _, i := range order {
		bead := st.Beads[i]
		dist := Manhattan(bead, head)
		if dist == 0 || dist > config.MagnetRadius {
			continue
		}
		next := Point{X: bead.X + sign(head.X-bead.X), Y: bead.Y + sign(head.Y-bead.Y)}
		if !InBounds(next) || blocked.Has(next) {
			continue
		}
		blocked.Remove(bead)
		blocked.Put(next)
		st.Beads[i] = next
		if next == head {
			pulled = true
		}
	}

	if pulled && sp.eatAt(st, head) {
		sp.refill(st)
	}
}

// collectPowerUps arms every power-up lying under the head
func (sp *stepper) collectPowerUps(st *State) {
	head := st.Snake[0]
	kept := make([]PowerUp, 0, len(st.PowerUps))
	for _, pu := range st.PowerUps {
		if pu.Pos != head {
			kept = append(kept, pu)
			continue
		}
		Collect(st, pu.Kind, sp.now)
		sp.emit(powerUpCollected(pu.Kind, pu.Pos))
	}
	st.PowerUps = kept
}

// Collect activates kind on st as if it had just been picked up
func Collect(st *State, kind PowerUpKind, now time.Time) {
	st.Effects.Activate(kind, now)
	if h := powerUpTable[kind]; h.collect != nil {
		h.collect(st)
	}
}

func indexOf(points []Point, p Point) int {
	for i, q := range points {
		if q == p {
			return i
		}
	}
	return -1
}

func contains(points []Point, p Point) bool {
	return indexOf(points, p) >= 0
}
