package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Screen is the lifecycle state of a session
type Screen string

const (
	ScreenCharacter Screen = "character"
	ScreenMode      Screen = "mode"
	ScreenRunning   Screen = "running"
	ScreenWon       Screen = "won"
	ScreenLost      Screen = "lost"
)

var (
	ErrInvalidTransition = errors.New("invalid screen transition")
	ErrUnknownMode       = errors.New("unknown mode")
	ErrUnknownCharacter  = errors.New("unknown character")
	ErrSessionClosed     = errors.New("session closed")
)

// Listener is called with every event after the session lock is released
type Listener func(Event)

// GameResult summarizes a finished game
type GameResult struct {
	SessionID string    `json:"sessionId"`
	Character Character `json:"character"`
	Mode      ModeID    `json:"mode"`
	Score     int       `json:"score"`
	Length    int       `json:"length"`
	Won       bool      `json:"won"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// ResultSink stores finished games
type ResultSink interface {
	RecordGame(res GameResult) error
}

// Option configures a Session
type Option func(*Session)

// WithClock sets the time source used for effect expiry
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithSpawner sets the spawner, for seeded or scripted play
func WithSpawner(sp *Spawner) Option {
	return func(s *Session) { s.spawner = sp }
}

// WithStore sets the high score store
func WithStore(store HighScoreStore) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.baseLog = log }
}

// WithRecorder receives a record of every tick
func WithRecorder(sink StepSink) Option {
	return func(s *Session) { s.recorder = sink }
}

// WithResultSink receives every finished game
func WithResultSink(sink ResultSink) Option {
	return func(s *Session) { s.results = sink }
}

// WithID overrides the generated session id
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithoutTimers disables the tick and sweep goroutines; the caller drives
// the session through Tick and Sweep.
func WithoutTimers() Option {
	return func(s *Session) { s.timers = false }
}

// Session owns all mutable state of one player's game
type Session struct {
	mu sync.Mutex

	id        string
	screen    Screen
	character Character
	mode      Mode
	state     State
	requested Direction
	newHigh   bool
	startedAt time.Time
	closed    bool

	clock     Clock
	spawner   *Spawner
	store     HighScoreStore
	tracker   *Tracker
	recorder  StepSink
	results   ResultSink
	listeners []Listener
	baseLog   logrus.FieldLogger
	log       *logrus.Entry

	// Timer bookkeeping. gen changes whenever the running game is replaced
	// or left, so a stale goroutine can tell it no longer owns the session.
	timers bool
	gen    uint64
	stop   chan struct{}
}

// NewSession creates a session on the character select screen
func NewSession(opts ...Option) *Session {
	s := &Session{
		screen: ScreenCharacter,
		timers: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.spawner == nil {
		s.spawner = NewSpawner(0)
	}
	if s.baseLog == nil {
		s.baseLog = logrus.StandardLogger()
	}
	s.log = s.baseLog.WithField("session", s.id)
	s.tracker = NewTracker(s.store, s.log)
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// OnEvent registers a listener
func (s *Session) OnEvent(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Screen returns the current lifecycle state
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// State returns a copy of the current simulation frame
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SelectCharacter picks the spirit animal and moves on to mode select
func (s *Session) SelectCharacter(c Character) error {
	if _, err := LookupCharacter(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransition("select character", ScreenCharacter, ScreenMode); err != nil {
		return err
	}
	s.character = c
	s.screen = ScreenMode
	s.log.WithField("character", c).Info("Character selected")
	return nil
}

// SelectMode starts a fresh game under the mode
func (s *Session) SelectMode(id ModeID) error {
	mode, err := LookupMode(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransition("select mode", ScreenMode); err != nil {
		return err
	}
	s.mode = mode
	s.startLocked()
	return nil
}

// PlayAgain restarts under the same mode after a win or loss
func (s *Session) PlayAgain() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransition("play again", ScreenWon, ScreenLost); err != nil {
		return err
	}
	s.startLocked()
	return nil
}

// ChangeMode stops any running game and returns to mode select
func (s *Session) ChangeMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransition("change mode", ScreenMode, ScreenRunning, ScreenWon, ScreenLost); err != nil {
		return err
	}
	s.stopTimersLocked()
	s.state = State{}
	s.screen = ScreenMode
	return nil
}

// Steer buffers dir for the next tick. It is ignored unless a game is
// running, and rejected when it would reverse the chain into itself.
func (s *Session) Steer(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.screen != ScreenRunning {
		return false
	}
	if dir < Up || dir > Right || dir == s.state.Heading.Opposite() {
		return false
	}
	s.requested = dir
	return true
}

// Tick advances a running game by one step
func (s *Session) Tick() {
	s.mu.Lock()
	if s.closed || s.screen != ScreenRunning {
		s.mu.Unlock()
		return
	}
	events := s.tickLocked()
	listeners := s.listeners
	s.mu.Unlock()

	dispatch(listeners, events)
}

// Sweep removes expired timed effects from a running game
func (s *Session) Sweep() {
	s.mu.Lock()
	if s.closed || s.screen != ScreenRunning {
		s.mu.Unlock()
		return
	}
	events := s.sweepLocked()
	listeners := s.listeners
	s.mu.Unlock()

	dispatch(listeners, events)
}

// Interval returns the current tick cadence
func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TickInterval(s.mode, s.state.Effects)
}

// Snapshot returns a copy of the session for presentation
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.snapshot(s.clock.Now())
	snap.Screen = s.screen
	snap.Character = s.character
	snap.HighScore = s.tracker.HighScore()
	snap.NewHigh = s.newHigh
	return snap
}

// HighScore returns the best score seen by the tracker
func (s *Session) HighScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.HighScore()
}

// Close discards the session and stops its timers. No tick runs afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimersLocked()
	s.log.Debug("Session closed")
}

func (s *Session) checkTransition(action string, from ...Screen) error {
	if s.closed {
		return ErrSessionClosed
	}
	for _, screen := range from {
		if s.screen == screen {
			return nil
		}
	}
	return fmt.Errorf("%s from %s: %w", action, s.screen, ErrInvalidTransition)
}

// startLocked initializes a new game and its timers
func (s *Session) startLocked() {
	s.stopTimersLocked()
	s.state = NewState(s.mode, s.spawner)
	s.requested = Up
	s.newHigh = false
	s.startedAt = s.clock.Now()
	s.screen = ScreenRunning
	s.log.WithFields(logrus.Fields{
		"mode":      s.mode.ID,
		"character": s.character,
	}).Info("Game started")
	s.startTimersLocked()
}

func (s *Session) tickLocked() []Event {
	now := s.clock.Now()
	dir := s.requested
	prevScore := s.state.Score

	next, events := Step(s.state, Input{Direction: dir, Now: now}, s.spawner)
	s.state = next
	// Mitigations may turn the chain; the next tick follows its heading
	// until new input arrives.
	s.requested = next.Heading

	if next.Score > prevScore && s.tracker.Record(next.Score) {
		s.newHigh = true
	}
	if next.Over() {
		s.finishLocked(now)
	}
	events = append(events, Event{Type: EventTick})

	if s.recorder != nil {
		snap := next.snapshot(now)
		snap.Screen = s.screen
		snap.Character = s.character
		snap.HighScore = s.tracker.HighScore()
		snap.NewHigh = s.newHigh
		s.recorder.RecordStep(StepRecord{
			SessionID: s.id,
			Tick:      next.Ticks,
			Time:      now,
			Direction: dir,
			State:     snap,
			Events:    events,
		})
	}
	return events
}

func (s *Session) sweepLocked() []Event {
	var events []Event
	for _, kind := range s.state.Effects.Sweep(s.clock.Now()) {
		events = append(events, Event{Type: EventEffectExpired, Kind: kind})
	}
	return events
}

// finishLocked moves to the terminal screen and stops the loop
func (s *Session) finishLocked(now time.Time) {
	s.stopTimersLocked()
	if s.state.Won {
		s.screen = ScreenWon
	} else {
		s.screen = ScreenLost
	}

	res := GameResult{
		SessionID: s.id,
		Character: s.character,
		Mode:      s.mode.ID,
		Score:     s.state.Score,
		Length:    len(s.state.Snake),
		Won:       s.state.Won,
		StartedAt: s.startedAt,
		EndedAt:   now,
	}
	s.log.WithFields(logrus.Fields{
		"mode":   res.Mode,
		"score":  res.Score,
		"length": res.Length,
		"won":    res.Won,
	}).Info("Game finished")

	if s.results != nil {
		if err := s.results.RecordGame(res); err != nil {
			s.log.WithError(err).Warn("Failed to record game result")
		}
	}
}

func dispatch(listeners []Listener, events []Event) {
	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}
