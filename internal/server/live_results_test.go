package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"polls-service/internal/ports/models"
	"polls-service/internal/testutil"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveResultsFollowVotes(t *testing.T) {
	app := newTestApp(t)
	q := testutil.CreateTestQuestion(t, app.db, "Live", app.now, -time.Hour, time.Hour, "red", "blue")
	voter := testutil.CreateTestUser(t, app.db, "alice", false)

	live, err := NewApp(testutil.GetTestConfig(), Dependencies{DB: app.db, Clock: func() time.Time { return app.now }})
	require.NoError(t, err)
	runCtx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)
	live.Start(runCtx)

	srv := httptest.NewServer(live.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/ws/questions/%d/results", q.ID)
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var snapshot models.QuestionResults
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, q.ID, snapshot.QuestionID)
	assert.Equal(t, int64(0), snapshot.Total)

	rr := testutil.MakeRequest(t, live.Handler(), http.MethodPost, fmt.Sprintf("/api/v1/questions/%d/vote", q.ID),
		models.VoteRequest{Choice: &q.Choices[1].ID}, app.bearer(voter))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var update models.QuestionResults
	require.NoError(t, wsjson.Read(ctx, conn, &update))
	assert.Equal(t, int64(1), update.Total)
	require.Len(t, update.Choices, 2)
	assert.Equal(t, int64(0), update.Choices[0].Votes)
	assert.Equal(t, int64(1), update.Choices[1].Votes)

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestLiveResultsUnknownQuestion(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/ws/questions/777/results")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
