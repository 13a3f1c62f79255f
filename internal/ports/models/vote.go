package models

import (
	"time"
)

// Vote represents a user's choice for a question. There is at most one row
// per (user_id, question_id).
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"column:user_id;not null;uniqueIndex:idx_votes_user_question" json:"user_id"`
	QuestionID uint      `gorm:"column:question_id;not null;uniqueIndex:idx_votes_user_question;index" json:"question_id"`
	ChoiceID   uint      `gorm:"column:choice_id;not null;index" json:"choice_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

// VoteRequest defines the JSON input for casting a vote
type VoteRequest struct {
	Choice *uint `json:"choice"`
}

// VoteResponse is returned by the JSON vote endpoint
type VoteResponse struct {
	QuestionID uint   `json:"question_id"`
	ChoiceID   uint   `json:"choice_id"`
	ResultsURL string `json:"results_url"`
}

// VoteMessage is the event published after a vote has been stored
type VoteMessage struct {
	EventID    string    `json:"event_id"`
	UserID     uint      `json:"user_id"`
	QuestionID uint      `json:"question_id"`
	ChoiceID   uint      `json:"choice_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
