package service

import (
	"context"
	"mime/multipart"
	"time"

	"polls-service/internal/ports/models"
)

// Clock returns the current time. Services call it once per operation.
type Clock func() time.Time

type QuestionStore interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id uint) (*models.Question, error)
	ListOpen(ctx context.Context, now time.Time) ([]models.Question, error)
	Search(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	Update(ctx context.Context, question *models.Question, choices []models.Choice) error
	SetImageURL(ctx context.Context, id uint, url string) error
	Delete(ctx context.Context, id uint) error
}

type VoteStore interface {
	Upsert(ctx context.Context, userID, questionID, choiceID uint, at time.Time) (*models.Vote, error)
	FindByUserAndQuestion(ctx context.Context, userID, questionID uint) (*models.Vote, error)
	CountByChoice(ctx context.Context, questionID uint) (map[uint]int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
}

// VotePublisher is notified after a vote has been stored
type VotePublisher interface {
	PublishVote(ctx context.Context, msg models.VoteMessage) error
}

// ResultsBroadcaster pushes a fresh tally to live subscribers
type ResultsBroadcaster interface {
	BroadcastResults(results *models.QuestionResults)
}

type ImageStore interface {
	UploadImage(ctx context.Context, questionID uint, file *multipart.FileHeader) (string, error)
}

// RateLimiter reports whether another request under key fits the window
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
