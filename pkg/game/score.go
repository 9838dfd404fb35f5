package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// HighScoreStore is the scalar key-value persistence the tracker writes through
type HighScoreStore interface {
	// Get returns the stored value and whether the key exists
	Get(key string) (int, bool, error)
	Set(key string, value int) error
	// SetIfHigher stores value only when it beats the stored one, atomically.
	// It reports whether the value was written.
	SetIfHigher(key string, value int) (bool, error)
}

// MemoryStore is an in-process HighScoreStore
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int)}
}

func (m *MemoryStore) Get(key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) SetIfHigher(key string, value int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok && v >= value {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

// Tracker mirrors the persisted high score and writes new records back
type Tracker struct {
	store HighScoreStore
	high  int
	log   logrus.FieldLogger
}

// NewTracker loads the current high score from store. A failing store is
// logged and treated as empty.
func NewTracker(store HighScoreStore, log logrus.FieldLogger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &Tracker{store: store, log: log}
	if v, ok, err := store.Get(config.HighScoreKey); err != nil {
		log.WithError(err).Warn("Failed to load high score")
	} else if ok {
		t.high = v
	}
	return t
}

// HighScore returns the in-memory mirror
func (t *Tracker) HighScore() int {
	return t.high
}

// Record stores score when it beats the persisted best and reports whether
// it is a new high score. Concurrent trackers over one store never lower it.
func (t *Tracker) Record(score int) bool {
	raised, err := t.store.SetIfHigher(config.HighScoreKey, score)
	if err != nil {
		t.log.WithError(err).WithField("score", score).Warn("Failed to save high score, using cached value")
		if score <= t.high {
			return false
		}
		t.high = score
		return true
	}
	if raised {
		if score > t.high {
			t.high = score
		}
		return true
	}

	if stored, ok, err := t.store.Get(config.HighScoreKey); err == nil && ok && stored > t.high {
		t.high = stored
	}
	return false
}
