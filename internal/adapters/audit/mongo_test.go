package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"polls-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAuthEventDocument(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := bson.Marshal(AuthEvent{Type: EventLoginFailed, Username: "alice", ClientIP: "10.0.0.1", At: at})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "login.failed", doc["type"])
	assert.Equal(t, "alice", doc["username"])
	assert.Equal(t, "10.0.0.1", doc["client_ip"])
	assert.Contains(t, doc, "at")
}

// Runs against a live server when MONGO_TEST_URI is set
func TestMongoAuditLogRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	log, err := NewMongoAuditLog(ctx, config.MongoConfig{URI: uri, Database: "polls_test", Collection: "auth_events_test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		log.coll.Drop(ctx)
		log.Close(ctx)
	})

	log.LoginFailed(ctx, "alice", "10.0.0.1")
	log.LoginSucceeded(ctx, "alice", "10.0.0.1")

	events, err := log.recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []string{EventLoginFailed, EventLoginSucceeded}, []string{events[0].Type, events[1].Type})
}
