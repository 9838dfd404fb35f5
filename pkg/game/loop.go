package game

import (
	"time"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// startTimersLocked launches the tick and sweep goroutines for a new
// running generation. Any previous generation is stopped first.
func (s *Session) startTimersLocked() {
	s.stopTimersLocked()
	if !s.timers {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	gen := s.gen

	go s.tickLoop(gen, stop, TickInterval(s.mode, s.state.Effects))
	go s.sweepLoop(gen, stop)
}

// stopTimersLocked retires the current generation. It does not wait for
// the goroutines: they may be blocked on the session lock held by the
// caller, and they exit on their own once they see the new generation.
func (s *Session) stopTimersLocked() {
	s.gen++
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) tickLoop(gen uint64, stop <-chan struct{}, interval time.Duration) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			next, ok := s.tickGeneration(gen)
			if !ok {
				return
			}
			// Slow-mo changes the cadence between ticks
			timer.Reset(next)
		}
	}
}

func (s *Session) sweepLoop(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(config.EffectSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.sweepGeneration(gen) {
				return
			}
		}
	}
}

// tickGeneration runs one tick if gen still owns the session and returns
// the interval until the next one.
func (s *Session) tickGeneration(gen uint64) (time.Duration, bool) {
	s.mu.Lock()
	if s.gen != gen || s.closed || s.screen != ScreenRunning {
		s.mu.Unlock()
		return 0, false
	}
	events := s.tickLocked()
	running := s.gen == gen && s.screen == ScreenRunning
	next := TickInterval(s.mode, s.state.Effects)
	listeners := s.listeners
	s.mu.Unlock()

	dispatch(listeners, events)
	return next, running
}

func (s *Session) sweepGeneration(gen uint64) bool {
	s.mu.Lock()
	if s.gen != gen || s.closed || s.screen != ScreenRunning {
		s.mu.Unlock()
		return false
	}
	events := s.sweepLocked()
	listeners := s.listeners
	s.mu.Unlock()

	dispatch(listeners, events)
	return true
}
