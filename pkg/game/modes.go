package game

import (
	"fmt"
	"time"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// ModeID identifies a game mode
type ModeID string

const (
	ModeClassic      ModeID = "classic"
	ModeZen          ModeID = "zen"
	ModeRush         ModeID = "rush"
	ModeConservation ModeID = "conservation"
)

// Mode is an immutable bundle of rules a session runs under
type Mode struct {
	ID           ModeID        `json:"id"`
	Name         string        `json:"name"`
	Tagline      string        `json:"tagline"`
	TickInterval time.Duration `json:"-"`
	WrapWalls    bool          `json:"wrapWalls"`
	TargetBeads  int           `json:"targetBeads"`
	PowerUps     bool          `json:"powerUps"`
}

// ModeInfo is the wire form of a Mode
type ModeInfo struct {
	ID             ModeID `json:"id"`
	Name           string `json:"name"`
	Tagline        string `json:"tagline"`
	TickIntervalMs int64  `json:"tickIntervalMs"`
	WrapWalls      bool   `json:"wrapWalls"`
	TargetBeads    int    `json:"targetBeads"`
	PowerUps       bool   `json:"powerUps"`
}

// Info converts the mode for clients
func (m Mode) Info() ModeInfo {
	return ModeInfo{
		ID:             m.ID,
		Name:           m.Name,
		Tagline:        m.Tagline,
		TickIntervalMs: m.TickInterval.Milliseconds(),
		WrapWalls:      m.WrapWalls,
		TargetBeads:    m.TargetBeads,
		PowerUps:       m.PowerUps,
	}
}

// ScoreLabel is the caption shown next to the final score
func (m Mode) ScoreLabel() string {
	if m.ID == ModeConservation {
		return "Beads saved"
	}
	return "Your score"
}

var modes = []Mode{
	{
		ID:           ModeClassic,
		Name:         "Classic",
		Tagline:      "One bead, one goal",
		TickInterval: config.ClassicTick,
		WrapWalls:    false,
		TargetBeads:  1,
		PowerUps:     true,
	},
	{
		ID:           ModeZen,
		Name:         "Zen",
		Tagline:      "Chill slither, walls wrap around",
		TickInterval: config.ZenTick,
		WrapWalls:    true,
		TargetBeads:  1,
		PowerUps:     true,
	},
	{
		ID:           ModeRush,
		Name:         "Rush",
		Tagline:      "Fast & chaotic",
		TickInterval: config.RushTick,
		WrapWalls:    false,
		TargetBeads:  3,
		PowerUps:     true,
	},
	{
		ID:           ModeConservation,
		Name:         "Conservation",
		Tagline:      "Every bead = impact",
		TickInterval: config.ConservationTick,
		WrapWalls:    false,
		TargetBeads:  1,
		PowerUps:     true,
	},
}

// Modes returns the mode catalog in display order
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// LookupMode finds a mode by id
func LookupMode(id ModeID) (Mode, error) {
	for _, m := range modes {
		if m.ID == id {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("mode %q: %w", id, ErrUnknownMode)
}

// Character is the spirit animal the player slithers as
type Character string

const (
	Turtle Character = "turtle"
	Tiger  Character = "tiger"
)

// CharacterInfo describes a selectable character
type CharacterInfo struct {
	ID      Character `json:"id"`
	Name    string    `json:"name"`
	Species string    `json:"species"`
	Emoji   string    `json:"emoji"`
}

var characters = []CharacterInfo{
	{ID: Turtle, Name: "Talise", Species: "Turtle", Emoji: "🐢"},
	{ID: Tiger, Name: "Amur", Species: "Tiger", Emoji: "🐯"},
}

// Characters returns the character catalog in display order
func Characters() []CharacterInfo {
	out := make([]CharacterInfo, len(characters))
	copy(out, characters)
	return out
}

// LookupCharacter finds a character by id
func LookupCharacter(id Character) (CharacterInfo, error) {
	for _, c := range characters {
		if c.ID == id {
			return c, nil
		}
	}
	return CharacterInfo{}, fmt.Errorf("character %q: %w", id, ErrUnknownCharacter)
}
