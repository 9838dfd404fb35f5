package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StepRecord is one recorded tick
type StepRecord struct {
	SessionID string    `json:"sessionId"`
	Tick      int       `json:"tick"`
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	State     Snapshot  `json:"state"`
	Events    []Event   `json:"events,omitempty"`
}

// StepSink receives a record after every tick
type StepSink interface {
	RecordStep(rec StepRecord)
}

// GameRecorder handles asynchronous logging of game steps
type GameRecorder struct {
	path       string
	file       *os.File
	writer     *bufio.Writer
	recordChan chan StepRecord
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	dropped    int
	log        logrus.FieldLogger
}

// NewRecorder creates a recorder writing to dir.
// Filename format: game_{sessionID}_{timestamp}.jsonl
func NewRecorder(dir, sessionID string, log logrus.FieldLogger) (*GameRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create records dir: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	filename := fmt.Sprintf("game_%s_%d.jsonl", sessionID, time.Now().Unix())
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	r := &GameRecorder{
		path:       path,
		file:       f,
		writer:     bufio.NewWriter(f),
		recordChan: make(chan StepRecord, 1000), // Buffer up to 1000 ticks
		log:        log.WithField("record", filename),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r, nil
}

// Path returns the file being written
func (r *GameRecorder) Path() string {
	return r.path
}

// RecordStep queues a record to be written. Non-blocking (drops if full).
func (r *GameRecorder) RecordStep(rec StepRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.recordChan <- rec:
	default:
		r.dropped++
	}
}

// Close flushes the buffer and closes the file
func (r *GameRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.recordChan)
	dropped := r.dropped
	r.mu.Unlock()

	r.wg.Wait()
	if dropped > 0 {
		r.log.WithField("dropped", dropped).Warn("Recorder dropped ticks")
	}
	return r.file.Close()
}

func (r *GameRecorder) writeLoop() {
	defer r.wg.Done()

	encoder := json.NewEncoder(r.writer)
	for rec := range r.recordChan {
		if err := encoder.Encode(rec); err != nil {
			r.log.WithError(err).Error("Error recording tick")
		}
	}
	if err := r.writer.Flush(); err != nil {
		r.log.WithError(err).Error("Error flushing recording")
	}
}

// ReadRecords decodes a JSONL recording, calling fn for every record until
// it returns false.
func ReadRecords(path string, fn func(StepRecord) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open record: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		var rec StepRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("record line %d: %w", line, err)
		}
		if !fn(rec) {
			return nil
		}
	}
	return scanner.Err()
}
