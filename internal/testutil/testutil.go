package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"polls-service/internal/adapters/database"
	"polls-service/internal/config"
	"polls-service/internal/ports/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestJWTSecret signs tokens issued in tests
const TestJWTSecret = "test-secret"

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "password123"

// SetupTestDB opens a migrated in-memory sqlite database private to t
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxRetries: 1})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// GetTestConfig returns a configuration with every optional backend disabled
func GetTestConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		JWT:      config.JWTConfig{Secret: TestJWTSecret, ExpirationTime: time.Hour},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
			Limit:   5,
			Window:  time.Minute,
		},
		LogLevel: "error",
	}
}

// CreateTestQuestion stores a question whose window is [now+publishIn, now+endIn]
func CreateTestQuestion(t *testing.T, db *gorm.DB, text string, now time.Time, publishIn, endIn time.Duration, choices ...string) *models.Question {
	t.Helper()

	q := &models.Question{
		Text:      text,
		PublishAt: now.Add(publishIn),
		EndAt:     now.Add(endIn),
	}
	for _, c := range choices {
		q.Choices = append(q.Choices, models.Choice{Text: c})
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}
	return q
}

// CreateTestUser stores a user with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, username string, staff bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsStaff:  staff,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CountVotes returns the number of vote rows for a question
func CountVotes(t *testing.T, db *gorm.DB, questionID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Vote{}).Where("question_id = ?", questionID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return count
}

// MakeRequest performs a JSON request against handler
func MakeRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// MakeFormRequest performs a form-encoded request against handler
func MakeFormRequest(t *testing.T, handler http.Handler, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON unmarshals the response body into v
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}
