package main

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"

	"github.com/Nityasav/wyldstoneja/pkg/game"
	"github.com/Nityasav/wyldstoneja/pkg/transport"
)

// Fixed 10fps playback
const frameDelay = 100 * time.Millisecond

// ReplayServer handles serving replay UI and data
type ReplayServer struct {
	router    *way.Router
	upgrader  websocket.Upgrader
	recordDir string
	log       logrus.FieldLogger
	delay     time.Duration
}

// NewReplayServer builds the router over recordDir
func NewReplayServer(recordDir, staticDir string, log logrus.FieldLogger) *ReplayServer {
	s := &ReplayServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		recordDir: recordDir,
		log:       log,
		delay:     frameDelay,
	}
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/", s.handleIndex)
	s.router.HandleFunc("GET", "/view", s.handleView)
	s.router.HandleFunc("GET", "/ws/replay", s.handleReplayWS)
	s.router.Handle("GET", "/static/...", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return s
}

func (s *ReplayServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type RecordFile struct {
	Name      string
	Size      int64
	Time      time.Time
	SessionID string
}

// listRecords returns the recordings in dir, newest first
func listRecords(dir string) ([]RecordFile, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []RecordFile
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".jsonl" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		// expecting format: game_{sessionID}_{timestamp}.jsonl
		sessID := ""
		if parts := strings.Split(strings.TrimSuffix(f.Name(), ".jsonl"), "_"); len(parts) >= 3 {
			sessID = strings.Join(parts[1:len(parts)-1], "_")
		}
		records = append(records, RecordFile{
			Name:      f.Name(),
			Size:      info.Size(),
			Time:      info.ModTime(),
			SessionID: sessID,
		})
	}

	// Sort by time desc
	sort.Slice(records, func(i, j int) bool {
		return records[i].Time.After(records[j].Time)
	})
	return records, nil
}

var indexTmpl = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>Brace Game Replays</title>
    <style>
        body { font-family: monospace; background: #1a202c; color: #fff; padding: 2rem; }
        h1 { color: #48bb78; }
        .file-list { display: grid; gap: 1rem; }
        .file-item {
            background: #2d3748; padding: 1rem; border-radius: 8px;
            display: flex; justify-content: space-between; align-items: center;
        }
        .file-item:hover { background: #4a5568; }
        a { color: #63b3ed; text-decoration: none; font-weight: bold; }
        .meta { color: #a0aec0; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>📼 Replay Library</h1>
    <div class="file-list">
        {{range .}}
        <div class="file-item">
            <div>
                <div class="name">{{.Name}}</div>
                <div class="meta">Session: {{.SessionID}} | Size: {{.Size}} bytes | {{.Time.Format "2006-01-02 15:04:05"}}</div>
            </div>
            <a href="/view?file={{.Name}}">WATCH REPLAY ▶</a>
        </div>
        {{else}}
        <p>No recordings found.</p>
        {{end}}
    </div>
</body>
</html>`))

func (s *ReplayServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := listRecords(s.recordDir)
	if err != nil {
		s.log.WithError(err).Error("Failed to list records")
		http.Error(w, "cannot list records", http.StatusInternalServerError)
		return
	}
	if err := indexTmpl.Execute(w, records); err != nil {
		s.log.WithError(err).Warn("Failed to render index")
	}
}

func (s *ReplayServer) handleView(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if filename == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	// Redirect to the static HTML page with the file parameter
	q := url.Values{"file": {filename}}
	http.Redirect(w, r, "/static/replay.html?"+q.Encode(), http.StatusFound)
}

// ReplayMessage is one streamed frame
type ReplayMessage struct {
	Type   string         `json:"type"`
	Tick   int            `json:"tick,omitempty"`
	Input  game.Direction `json:"input"`
	State  *game.Snapshot `json:"state,omitempty"`
	Events []game.Event   `json:"events,omitempty"`
}

// replayControl is sent by the viewer
type replayControl struct {
	Command string `json:"command"`
}

func (s *ReplayServer) handleReplayWS(w http.ResponseWriter, r *http.Request) {
	codec, err := transport.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Only plain names inside the record directory
	filename := filepath.Base(r.URL.Query().Get("file"))
	path := filepath.Join(s.recordDir, filename)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log := s.log.WithField("record", filename)
	conn := transport.NewConn(ws, codec, log)
	defer conn.Close()

	var paused atomic.Bool
	closed := make(chan struct{})

	// Read Loop for controls
	go func() {
		defer close(closed)
		for {
			var cmd replayControl
			if err := conn.Read(&cmd); err != nil {
				return
			}
			switch cmd.Command {
			case "pause":
				paused.Store(true)
			case "resume":
				paused.Store(false)
			}
		}
	}()

	// Stream Loop
	err = game.ReadRecords(path, func(rec game.StepRecord) bool {
		for paused.Load() {
			select {
			case <-closed:
				return false
			case <-time.After(s.delay):
			}
		}
		select {
		case <-closed:
			return false
		case <-time.After(s.delay):
		}

		state := rec.State
		return conn.Send(ReplayMessage{
			Type:   "state",
			Tick:   rec.Tick,
			Input:  rec.Direction,
			State:  &state,
			Events: rec.Events,
		}) == nil
	})
	if err != nil {
		log.WithError(err).Warn("Replay stopped")
	}
	conn.Send(ReplayMessage{Type: "end"})
}
