package config

import "time"

// Board dimensions and win condition
const (
	GridSize  = 17 // Square board, cells 0..GridSize-1 on each axis
	WinLength = 16 // Chain length that completes the bracelet
)

// Initial chain layout (head first, vertical, heading up)
const (
	InitialLength = 3
)

// Spawn settings
const (
	BeadSpawnAttempts    = 200 // Sampling budget per SpawnBeads call
	PowerUpSpawnAttempts = 100 // Sampling budget per SpawnPowerUp call
	PowerUpChance        = 0.2 // Roll after each bead eaten at the head
	MaxPowerUps          = 2   // Power-ups allowed on the board at once
	BeadRainCount        = 3   // Extra beads dropped by a bead rain
)

// Power-up effect settings
const (
	DoubleDuration = 10 * time.Second
	MagnetDuration = 8 * time.Second
	SlowMoDuration = 6 * time.Second

	MagnetRadius        = 3                      // Manhattan reach of the magnet
	SlowMoFactor        = 2                      // Tick interval multiplier while slowed
	EffectSweepInterval = 200 * time.Millisecond // Expired-effect sweep cadence
)

// Mode tick intervals
const (
	ClassicTick      = 140 * time.Millisecond
	ZenTick          = 200 * time.Millisecond
	RushTick         = 90 * time.Millisecond
	ConservationTick = 150 * time.Millisecond
)

// HighScoreKey is the key the best score is stored under
const HighScoreKey = "wyldstone_bracegame_highscore"

// Emoji characters for rendering
const (
	CharEmpty = "  " // Two spaces to match emoji width
	CharWall  = "⬜"
	CharHead  = "🟢"
	CharBody  = "🟩"
	CharBead  = "📿"
	CharCrash = "💥"
)
