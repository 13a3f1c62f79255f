package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polls-service/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventLoginSucceeded = "login.succeeded"
	EventLoginFailed    = "login.failed"
	EventLoggedOut      = "logout"
)

const writeTimeout = 5 * time.Second

// AuthEvent is one document of the audit collection
type AuthEvent struct {
	Type     string    `bson:"type"`
	Username string    `bson:"username"`
	ClientIP string    `bson:"client_ip"`
	At       time.Time `bson:"at"`
}

// MongoAuditLog stores authentication outcomes in a MongoDB collection
type MongoAuditLog struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoAuditLog connects to cfg.URI and pings the server
func NewMongoAuditLog(ctx context.Context, cfg config.MongoConfig) (*MongoAuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		slog.Warn("Failed to create audit index", "error", err)
	}

	return &MongoAuditLog{client: client, coll: coll, now: time.Now}, nil
}

func (l *MongoAuditLog) LoginSucceeded(ctx context.Context, username, clientIP string) {
	l.record(ctx, EventLoginSucceeded, username, clientIP)
}

func (l *MongoAuditLog) LoginFailed(ctx context.Context, username, clientIP string) {
	l.record(ctx, EventLoginFailed, username, clientIP)
}

func (l *MongoAuditLog) LoggedOut(ctx context.Context, username, clientIP string) {
	l.record(ctx, EventLoggedOut, username, clientIP)
}

func (l *MongoAuditLog) record(ctx context.Context, kind, username, clientIP string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	event := AuthEvent{Type: kind, Username: username, ClientIP: clientIP, At: l.now().UTC()}
	if _, err := l.coll.InsertOne(ctx, event); err != nil {
		slog.Error("Failed to write audit event", "type", kind, "username", username, "error", err)
	}
}

// recent returns the latest events of a user, newest first
func (l *MongoAuditLog) recent(ctx context.Context, username string, limit int64) ([]AuthEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := l.coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var events []AuthEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	return events, nil
}

func (l *MongoAuditLog) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}
