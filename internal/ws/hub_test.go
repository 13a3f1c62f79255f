package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"polls-service/internal/ports/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snapshot := func(_ context.Context, id uint) (*models.QuestionResults, error) {
		return &models.QuestionResults{QuestionID: id, Text: "snapshot"}, nil
	}
	r := gin.New()
	r.GET("/ws/questions/:id/results", ServeResults(hub, snapshot))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readResults(t *testing.T, conn *websocket.Conn) models.QuestionResults {
	t.Helper()

	var res models.QuestionResults
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&res))
	return res
}

func TestServeResultsStreamsTallies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)
	srv := startServer(t, hub)

	watcher := dial(t, srv, "/ws/questions/7/results")
	other := dial(t, srv, "/ws/questions/8/results")

	assert.Equal(t, "snapshot", readResults(t, watcher).Text)
	assert.Equal(t, "snapshot", readResults(t, other).Text)

	hub.BroadcastResults(&models.QuestionResults{QuestionID: 7, Text: "update", Total: 3})

	got := readResults(t, watcher)
	assert.Equal(t, uint(7), got.QuestionID)
	assert.Equal(t, int64(3), got.Total)

	// the other room sees nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestServeResultsRejectsBadID(t *testing.T) {
	hub := NewHub()
	srv := startServer(t, hub)

	resp, err := http.Get(srv.URL + "/ws/questions/abc/results")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Register(&Client{questionID: 1, send: make(chan *models.QuestionResults, 1)}))
}

func TestBroadcastDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.BroadcastResults(&models.QuestionResults{QuestionID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastResults blocked")
	}
}

func TestHubRemovesClientsOnUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	c := &Client{questionID: 3, send: make(chan *models.QuestionResults, 1)}
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHubDropsOutOfOrderTallies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	c := &Client{questionID: 4, send: make(chan *models.QuestionResults, 4)}
	require.True(t, hub.Register(c))

	hub.BroadcastResults(&models.QuestionResults{QuestionID: 4, Total: 5, Seq: 5})
	hub.BroadcastResults(&models.QuestionResults{QuestionID: 4, Total: 3, Seq: 3})
	hub.BroadcastResults(&models.QuestionResults{QuestionID: 4, Total: 6, Seq: 6})

	var totals []int64
	for len(totals) < 2 {
		select {
		case res := <-c.send:
			totals = append(totals, res.Total)
		case <-time.After(2 * time.Second):
			t.Fatalf("got %v, want two tallies", totals)
		}
	}
	assert.Equal(t, []int64{5, 6}, totals)

	select {
	case res := <-c.send:
		t.Fatalf("unexpected tally %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
}
