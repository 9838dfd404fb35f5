package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"

	"github.com/Nityasav/wyldstoneja/pkg/config"
	"github.com/Nityasav/wyldstoneja/pkg/game"
	"github.com/Nityasav/wyldstoneja/pkg/transport"
)

const (
	URI_WS        = "/ws"
	URI_MODES     = "/api/modes"
	URI_HIGHSCORE = "/api/highscore"
	URI_GAMES     = "/api/games"
)

// History is the persistence the server needs
type History interface {
	game.HighScoreStore
	game.ResultSink
	RecentGames(limit int) ([]game.GameResult, error)
}

// ServerMessage is sent to the browser
type ServerMessage struct {
	Type       string               `json:"type"`
	Snapshot   *game.Snapshot       `json:"snapshot,omitempty"`
	Event      *game.Event          `json:"event,omitempty"`
	Modes      []game.ModeInfo      `json:"modes,omitempty"`
	Characters []game.CharacterInfo `json:"characters,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// ClientMessage is received from the browser
type ClientMessage struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// Server routes HTTP and socket traffic; every socket gets its own session
type Server struct {
	router   *way.Router
	upgrader websocket.Upgrader
	history  History
	settings config.Settings
	log      logrus.FieldLogger
}

// NewServer builds the router
func NewServer(settings config.Settings, history History, log logrus.FieldLogger) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		history:  history,
		settings: settings,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.handleWebSocket)
	s.router.HandleFunc("GET", URI_MODES, s.handleModes)
	s.router.HandleFunc("GET", URI_HIGHSCORE, s.handleHighScore)
	s.router.HandleFunc("GET", URI_GAMES, s.handleGames)
	s.router.Handle("GET", "/...", http.FileServer(http.Dir(s.settings.StaticDir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("Failed to write response")
	}
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	modes := game.Modes()
	infos := make([]game.ModeInfo, len(modes))
	for i, m := range modes {
		infos[i] = m.Info()
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleHighScore(w http.ResponseWriter, r *http.Request) {
	v, _, err := s.history.Get(config.HighScoreKey)
	if err != nil {
		s.log.WithError(err).Error("Failed to read high score")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"highScore": v})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1..100"})
			return
		}
		limit = n
	}
	games, err := s.history.RecentGames(limit)
	if err != nil {
		s.log.WithError(err).Error("Failed to list games")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	codec, err := transport.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("Upgrade error")
		return
	}

	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"session": id, "remote": r.RemoteAddr})
	log.Info("New WebSocket connection")

	conn := transport.NewConn(ws, codec, log)
	defer conn.Close()

	session, closeSession, err := s.newSession(id, log)
	if err != nil {
		log.WithError(err).Error("Failed to create session")
		return
	}
	defer closeSession()

	session.OnEvent(func(e game.Event) {
		if e.Type != game.EventTick {
			ev := e
			s.send(conn, log, ServerMessage{Type: "event", Event: &ev})
		}
		snap := session.Snapshot()
		s.send(conn, log, ServerMessage{Type: "snapshot", Snapshot: &snap})
	})

	modes := game.Modes()
	infos := make([]game.ModeInfo, len(modes))
	for i, m := range modes {
		infos[i] = m.Info()
	}
	s.send(conn, log, ServerMessage{Type: "catalog", Modes: infos, Characters: game.Characters()})
	snap := session.Snapshot()
	s.send(conn, log, ServerMessage{Type: "snapshot", Snapshot: &snap})

	for {
		var msg ClientMessage
		if err := conn.Read(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Read error")
			}
			break
		}
		if err := handleAction(session, msg); err != nil {
			log.WithError(err).WithField("action", msg.Action).Debug("Rejected action")
			s.send(conn, log, ServerMessage{Type: "error", Error: err.Error()})
		}
		// Immediate state update for UI responsiveness
		snap := session.Snapshot()
		s.send(conn, log, ServerMessage{Type: "snapshot", Snapshot: &snap})
	}
	log.Info("Connection closed")
}

// newSession wires a session to the store and, when enabled, a recorder
func (s *Server) newSession(id string, log *logrus.Entry) (*game.Session, func(), error) {
	opts := []game.Option{
		game.WithID(id),
		game.WithStore(s.history),
		game.WithResultSink(s.history),
		game.WithLogger(log),
	}
	if s.settings.Seed != 0 {
		opts = append(opts, game.WithSpawner(game.NewSpawner(s.settings.Seed)))
	}

	var rec *game.GameRecorder
	if s.settings.Record {
		var err error
		rec, err = game.NewRecorder(s.settings.RecordDir, id, log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, game.WithRecorder(rec))
	}

	session := game.NewSession(opts...)
	return session, func() {
		session.Close()
		if rec != nil {
			if err := rec.Close(); err != nil {
				log.WithError(err).Warn("Failed to close recorder")
			}
		}
	}, nil
}

func (s *Server) send(conn *transport.Conn, log logrus.FieldLogger, msg ServerMessage) {
	if err := conn.Send(msg); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		log.WithError(err).Debug("Dropped message")
	}
}

// handleAction maps a client message onto the session
func handleAction(session *game.Session, msg ClientMessage) error {
	if dir, ok := game.ParseDirection(msg.Action); ok {
		session.Steer(dir)
		return nil
	}
	switch msg.Action {
	case "character":
		return session.SelectCharacter(game.Character(msg.Value))
	case "mode":
		return session.SelectMode(game.ModeID(msg.Value))
	case "again":
		return session.PlayAgain()
	case "back":
		return session.ChangeMode()
	}
	return fmt.Errorf("unknown action %q", msg.Action)
}
