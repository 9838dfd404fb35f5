package game

// EventType names something the presentation layer may react to
type EventType string

const (
	EventBeadEaten        EventType = "beadEaten"
	EventPowerUpCollected EventType = "powerUpCollected"
	EventMitigated        EventType = "mitigated"
	EventEffectExpired    EventType = "effectExpired"
	EventGameWon          EventType = "gameWon"
	EventGameOver         EventType = "gameOver"
	EventTick             EventType = "tick"
)

// Event is emitted by the engine and the session. Only the fields relevant
// to Type are set.
type Event struct {
	Type   EventType   `json:"type"`
	Points int         `json:"points,omitempty"`
	Kind   PowerUpKind `json:"kind,omitempty"`
	Score  int         `json:"score,omitempty"`
	Pos    *Point      `json:"pos,omitempty"`
}

func beadEaten(points int, pos Point) Event {
	return Event{Type: EventBeadEaten, Points: points, Pos: &pos}
}

func powerUpCollected(kind PowerUpKind, pos Point) Event {
	return Event{Type: EventPowerUpCollected, Kind: kind, Pos: &pos}
}

func mitigated(kind PowerUpKind) Event {
	return Event{Type: EventMitigated, Kind: kind}
}

func gameWon(score int) Event {
	return Event{Type: EventGameWon, Score: score}
}

func gameOver(score int, crash Point) Event {
	return Event{Type: EventGameOver, Score: score, Pos: &crash}
}
