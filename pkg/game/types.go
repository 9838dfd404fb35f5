package game

import (
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// State is one frame of the simulation. Step never mutates its input; it
// works on a clone and returns the next frame.
type State struct {
	Mode       Mode
	Snake      []Point   // Head first
	Heading    Direction // Direction of the last applied move
	Beads      []Point
	PowerUps   []PowerUp
	Effects    Effects
	Score      int
	Lives      int
	BeadsEaten int
	Ticks      int
	Won        bool
	Lost       bool
	CrashPoint *Point // Where the fatal move would have landed
}

// NewState builds the opening frame for mode: a centered chain heading up
// with the mode's beads placed off the chain.
func NewState(mode Mode, sp *Spawner) State {
	st := State{
		Mode:     mode,
		Snake:    InitialChain(),
		Heading:  Up,
		PowerUps: make([]PowerUp, 0, config.MaxPowerUps),
		Effects:  make(Effects),
	}
	st.Beads = sp.SpawnBeads(st.occupied(), mode.TargetBeads)
	return st
}

// Clone performs a deep copy of the state
func (st State) Clone() State {
	out := st
	out.Snake = append([]Point(nil), st.Snake...)
	out.Beads = append([]Point(nil), st.Beads...)
	out.PowerUps = append([]PowerUp(nil), st.PowerUps...)
	out.Effects = st.Effects.Clone()
	if st.CrashPoint != nil {
		p := *st.CrashPoint
		out.CrashPoint = &p
	}
	return out
}

// Over reports whether the session reached a terminal state
func (st State) Over() bool {
	return st.Won || st.Lost
}

// Progress returns the chain length against the bracelet target
func (st State) Progress() (int, int) {
	return len(st.Snake), config.WinLength
}

// occupied collects every cell holding the chain, a bead or a power-up
func (st State) occupied() mapset.Set[Point] {
	cells := mapset.New[Point]()
	for _, p := range st.Snake {
		cells.Put(p)
	}
	for _, p := range st.Beads {
		cells.Put(p)
	}
	for _, pu := range st.PowerUps {
		cells.Put(pu.Pos)
	}
	return cells
}

// PowerUpInfo is a DTO for power-ups sent to clients
type PowerUpInfo struct {
	Kind  PowerUpKind `json:"kind"`
	Pos   Point       `json:"pos"`
	Label string      `json:"label"`
}

// EffectInfo is a DTO for active effects sent to clients
type EffectInfo struct {
	Kind        PowerUpKind `json:"kind"`
	Label       string      `json:"label"`
	OneShot     bool        `json:"oneShot"`
	RemainingMs int64       `json:"remainingMs"`
}

// Snapshot is a copy of the session for client synchronization
type Snapshot struct {
	Screen     Screen        `json:"screen"`
	Character  Character     `json:"character,omitempty"`
	Mode       ModeID        `json:"mode,omitempty"`
	ScoreLabel string        `json:"scoreLabel,omitempty"`
	Snake      []Point       `json:"snake"`
	Heading    Direction     `json:"heading"`
	Beads      []Point       `json:"beads"`
	PowerUps   []PowerUpInfo `json:"powerUps"`
	Effects    []EffectInfo  `json:"effects"`
	Score      int           `json:"score"`
	HighScore  int           `json:"highScore"`
	NewHigh    bool          `json:"newHigh"`
	Lives      int           `json:"lives"`
	Length     int           `json:"length"`
	Target     int           `json:"target"`
	Ticks      int           `json:"ticks"`
	Won        bool          `json:"won"`
	Lost       bool          `json:"lost"`
	CrashPoint *Point        `json:"crashPoint,omitempty"`
}

// snapshot converts a state for clients at the given time
func (st State) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Mode:       st.Mode.ID,
		Snake:      append([]Point(nil), st.Snake...),
		Heading:    st.Heading,
		Beads:      append([]Point(nil), st.Beads...),
		PowerUps:   make([]PowerUpInfo, len(st.PowerUps)),
		Score:      st.Score,
		Lives:      st.Lives,
		Length:     len(st.Snake),
		Target:     config.WinLength,
		Ticks:      st.Ticks,
		Won:        st.Won,
		Lost:       st.Lost,
		CrashPoint: st.CrashPoint,
	}
	if st.Mode.ID != "" {
		snap.ScoreLabel = st.Mode.ScoreLabel()
	}
	for i, pu := range st.PowerUps {
		snap.PowerUps[i] = PowerUpInfo{Kind: pu.Kind, Pos: pu.Pos, Label: pu.Kind.Label()}
	}
	active := st.Effects.List()
	snap.Effects = make([]EffectInfo, len(active))
	for i, eff := range active {
		snap.Effects[i] = EffectInfo{
			Kind:        eff.Kind,
			Label:       eff.Kind.Label(),
			OneShot:     eff.OneShot(),
			RemainingMs: eff.Remaining(now).Milliseconds(),
		}
	}
	return snap
}
