package main

import (
	"log"
	"log/slog"
	"time"

	"polls-service/internal/adapters/database"
	"polls-service/internal/config"
	"polls-service/internal/ports/models"
	"polls-service/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	username string
	email    string
	password string
	staff    bool
}

type seedQuestion struct {
	text      string
	publishIn time.Duration
	endIn     time.Duration
	choices   []string
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Setup(cfg.SlogLevel(), false)

	slog.Info("Starting database seeding...")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	slog.Info("Creating initial users...")
	users := []seedUser{
		{"admin", "admin@polls.local", "123456", true},
		{"alice", "alice@polls.local", "123456", false},
		{"bob", "bob@polls.local", "123456", false},
	}
	for _, u := range users {
		seedAccount(db, u)
	}

	slog.Info("Creating sample questions...")
	day := 24 * time.Hour
	questions := []seedQuestion{
		{"What's your favourite programming language?", -5 * day, day, []string{"Go", "Python", "Rust"}},
		{"Which editor do you use?", -2 * time.Hour, 7 * day, []string{"Vim", "Emacs", "VS Code", "GoLand"}},
		{"Was last year's conference worth it?", -30 * day, -day, []string{"Yes", "No"}},
		{"Where should the next meetup be?", 5 * day, 10 * day, []string{"Berlin", "Lisbon"}},
	}
	now := time.Now().UTC()
	for _, q := range questions {
		seedPoll(db, now, q)
	}

	slog.Info("Seeding completed")
}

func seedAccount(db *gorm.DB, u seedUser) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	user := &models.User{
		Username: u.username,
		Email:    u.email,
		Password: string(hashedPassword),
		IsStaff:  u.staff,
	}
	if err := db.Create(user).Error; err != nil {
		slog.Warn("User might already exist", "username", u.username, "error", err)
		return
	}
	slog.Info("Created user", "username", u.username, "id", user.ID, "staff", u.staff)
}

func seedPoll(db *gorm.DB, now time.Time, q seedQuestion) {
	var existing int64
	db.Model(&models.Question{}).Where("question_text = ?", q.text).Count(&existing)
	if existing > 0 {
		slog.Info("Question already present", "text", q.text)
		return
	}

	question := &models.Question{
		Text:      q.text,
		PublishAt: now.Add(q.publishIn),
		EndAt:     now.Add(q.endIn),
	}
	for _, c := range q.choices {
		question.Choices = append(question.Choices, models.Choice{Text: c})
	}
	if err := db.Create(question).Error; err != nil {
		slog.Error("Failed to create question", "text", q.text, "error", err)
		return
	}
	slog.Info("Created question", "id", question.ID, "text", q.text)
}
