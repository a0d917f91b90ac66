package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/tracking"
)

func readEvent(t *testing.T, conn *websocket.Conn) tracking.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event tracking.Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestServer_StreamsSessionUpdates(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	go hub.Run()
	defer hub.Stop()

	registry := tracking.NewRegistry(hub, log)
	session := registry.Add(tracking.NewSession("Sokol vs Tatran", "Sokol", "", []florbal.RosterPlayer{
		{Number: "7", Name: "Jan Novák"},
	}))
	other := registry.Add(tracking.NewSession("", "", "", nil))

	srv := httptest.NewServer(NewServer(hub, registry, log).Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live/" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEvent(t, conn)
	assert.Equal(t, tracking.EventUpdated, first.Type)
	assert.Equal(t, session.ID, first.Session.ID)
	assert.Equal(t, 1, hub.ClientCount())

	_, err = registry.Update(other.ID, func(s *tracking.Session) error { return s.Score(tracking.SideOurs) })
	require.NoError(t, err)

	playerID := session.Players[0].ID
	_, err = registry.Update(session.ID, func(s *tracking.Session) error { return s.Tap(playerID, tracking.StatGoals) })
	require.NoError(t, err)

	update := readEvent(t, conn)
	assert.Equal(t, session.ID, update.Session.ID, "updates of other sessions are not delivered")
	assert.Equal(t, 1, update.Session.Players[0].Goals)

	_, err = registry.Finish(session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, tracking.EventFinished, readEvent(t, conn).Type)
}

func TestServer_SnapshotGoesOnlyToNewClient(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	go hub.Run()
	defer hub.Stop()

	registry := tracking.NewRegistry(hub, log)
	session := registry.Add(tracking.NewSession("", "", "", []florbal.RosterPlayer{{Number: "7", Name: "Jan Novák"}}))
	playerID := session.Players[0].ID
	tapGoal := func() {
		_, err := registry.Update(session.ID, func(s *tracking.Session) error { return s.Tap(playerID, tracking.StatGoals) })
		require.NoError(t, err)
	}

	srv := httptest.NewServer(NewServer(hub, registry, log).Handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live/" + session.ID

	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer first.Close()
	assert.Zero(t, readEvent(t, first).Session.Players[0].Goals)

	tapGoal()
	assert.Equal(t, 1, readEvent(t, first).Session.Players[0].Goals)

	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, 1, readEvent(t, second).Session.Players[0].Goals)

	tapGoal()
	assert.Equal(t, 2, readEvent(t, first).Session.Players[0].Goals, "the second viewer's snapshot is not replayed to the first")
	assert.Equal(t, 2, readEvent(t, second).Session.Players[0].Goals)
}

func TestServer_UnknownSession(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(NewServer(hub, tracking.NewRegistry(nil, log), log).Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/ws/live/missing")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_Health(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	go hub.Run()
	defer hub.Stop()

	rec := httptest.NewRecorder()
	NewServer(hub, tracking.NewRegistry(nil, log), log).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","clients":0}`, rec.Body.String())
}
