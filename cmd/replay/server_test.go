package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nityasav/wyldstoneja/pkg/game"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writeRecording plays a few manual ticks into a recorder
func writeRecording(t *testing.T, dir string) string {
	t.Helper()
	rec, err := game.NewRecorder(dir, "sess-1", quietLog())
	require.NoError(t, err)

	s := game.NewSession(
		game.WithoutTimers(),
		game.WithID("sess-1"),
		game.WithSpawner(game.NewSpawner(3).WithPowerUpChance(0)),
		game.WithRecorder(rec),
		game.WithLogger(quietLog()),
	)
	require.NoError(t, s.SelectCharacter(game.Turtle))
	require.NoError(t, s.SelectMode(game.ModeZen))
	for i := 0; i < 4; i++ {
		s.Tick()
	}
	s.Close()
	require.NoError(t, rec.Close())
	return filepath.Base(rec.Path())
}

func TestListRecords(t *testing.T) {
	dir := t.TempDir()
	name := writeRecording(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	records, err := listRecords(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, name, records[0].Name)
	assert.Equal(t, "sess-1", records[0].SessionID)

	records, err = listRecords(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIndexPage(t *testing.T) {
	dir := t.TempDir()
	name := writeRecording(t, dir)
	ts := httptest.NewServer(NewReplayServer(dir, t.TempDir(), quietLog()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), name)
}

func TestReplayStreamsRecording(t *testing.T) {
	dir := t.TempDir()
	name := writeRecording(t, dir)
	srv := NewReplayServer(dir, t.TempDir(), quietLog())
	srv.delay = time.Millisecond
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/replay?file=" + name
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	var ticks []int
	for {
		ws.SetReadDeadline(time.Now().Add(3 * time.Second))
		var msg ReplayMessage
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Type == "end" {
			break
		}
		require.Equal(t, "state", msg.Type)
		require.NotNil(t, msg.State)
		assert.Equal(t, game.ModeZen, msg.State.Mode)
		ticks = append(ticks, msg.Tick)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ticks)
}

func TestReplayMissingFile(t *testing.T) {
	ts := httptest.NewServer(NewReplayServer(t.TempDir(), t.TempDir(), quietLog()))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/replay?file=../etc/passwd"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViewRedirectEscapesFile(t *testing.T) {
	ts := httptest.NewServer(NewReplayServer(t.TempDir(), t.TempDir(), quietLog()))
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/view?file=" + url.QueryEscape("a&b c.jsonl"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/static/replay.html", loc.Path)
	assert.Equal(t, "a&b c.jsonl", loc.Query().Get("file"))
}
