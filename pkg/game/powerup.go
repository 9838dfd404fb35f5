package game

import (
	"time"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// PowerUpKind is one of the six pickups
type PowerUpKind string

const (
	Double    PowerUpKind = "double"
	Shield    PowerUpKind = "shield"
	Magnet    PowerUpKind = "magnet"
	SlowMo    PowerUpKind = "slowmo"
	BeadRain  PowerUpKind = "beadrain"
	ExtraLife PowerUpKind = "extralife"
)

// AllPowerUps lists every kind in spawn-table order
var AllPowerUps = []PowerUpKind{Double, Shield, Magnet, SlowMo, BeadRain, ExtraLife}

// mitigationOrder is the order fatal events are offered to active effects
var mitigationOrder = []PowerUpKind{Shield, ExtraLife}

// PowerUp is a pickup lying on the board
type PowerUp struct {
	Kind     PowerUpKind   `json:"kind"`
	Pos      Point         `json:"pos"`
	Duration time.Duration `json:"-"` // Zero for one-shot kinds
}

// powerUp holds everything a kind does. Hooks other than collect only run
// while the kind's effect is active.
type powerUp struct {
	duration time.Duration
	label    string
	emoji    string

	collect   func(st *State)
	mitigate  func(st *State, dir Direction, sp *stepper) bool
	score     func(points int) int
	afterEat  func(st *State, sp *stepper)
	afterMove func(st *State, sp *stepper)
	interval  func(d time.Duration) time.Duration
}

var powerUpTable map[PowerUpKind]powerUp

func init() {
	powerUpTable = map[PowerUpKind]powerUp{
		Double: {
			duration: config.DoubleDuration,
			label:    "2x",
			emoji:    "⚡",
			score:    func(points int) int { return points * 2 },
		},
		Shield: {
			label:    "Shield",
			emoji:    "🛡️",
			mitigate: shieldDeflect,
		},
		Magnet: {
			duration:  config.MagnetDuration,
			label:     "Magnet",
			emoji:     "🧲",
			afterMove: magnetPull,
		},
		SlowMo: {
			duration: config.SlowMoDuration,
			label:    "Slow",
			emoji:    "⏳",
			interval: func(d time.Duration) time.Duration { return d * config.SlowMoFactor },
		},
		BeadRain: {
			label:    "Rain",
			emoji:    "✨",
			afterEat: beadRain,
		},
		ExtraLife: {
			label:    "+1 Life",
			emoji:    "❤️",
			collect:  func(st *State) { st.Lives++ },
			mitigate: extraLifeRespawn,
		},
	}
}

// Duration returns the effect lifetime of the kind, zero for one-shot kinds
func (k PowerUpKind) Duration() time.Duration {
	return powerUpTable[k].duration
}

// Label returns the short caption for the kind
func (k PowerUpKind) Label() string {
	if h, ok := powerUpTable[k]; ok {
		return h.label
	}
	return string(k)
}

// Emoji returns the board glyph for the kind
func (k PowerUpKind) Emoji() string {
	if h, ok := powerUpTable[k]; ok {
		return h.emoji
	}
	return "❔"
}

// Valid reports whether k is one of the known kinds
func (k PowerUpKind) Valid() bool {
	_, ok := powerUpTable[k]
	return ok
}

// TickInterval returns the cadence for a mode given the active effects
func TickInterval(mode Mode, effects Effects) time.Duration {
	d := mode.TickInterval
	for _, kind := range AllPowerUps {
		if h := powerUpTable[kind]; h.interval != nil && effects.Active(kind) {
			d = h.interval(d)
		}
	}
	return d
}

// scoreFor returns the points for one bead under the active effects
func scoreFor(effects Effects) int {
	points := 1
	for _, kind := range AllPowerUps {
		if h := powerUpTable[kind]; h.score != nil && effects.Active(kind) {
			points = h.score(points)
		}
	}
	return points
}
