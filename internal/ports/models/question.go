package models

import (
	"time"
)

// RecentWindow is how far back a publish date may lie for a question to count
// as published recently.
const RecentWindow = 24 * time.Hour

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"column:question_text;size:200;not null" json:"text"`
	PublishAt time.Time `gorm:"column:publish_at;not null;index" json:"publish_at"`
	EndAt     time.Time `gorm:"column:end_at;not null" json:"end_at"`
	ImageURL  string    `gorm:"column:image_url;size:512" json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Choices []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

// TableName specifies the table name for Question
func (Question) TableName() string {
	return "questions"
}

// IsPublished reports whether the question is publicly visible at now.
func (q Question) IsPublished(now time.Time) bool {
	return !now.Before(q.PublishAt)
}

// CanVote reports whether now falls inside the voting window
// [PublishAt, EndAt], both ends inclusive. An inverted window never votes.
func (q Question) CanVote(now time.Time) bool {
	return q.IsPublished(now) && !now.After(q.EndAt)
}

// WasPublishedRecently reports whether PublishAt lies within the last day
// up to and including now. It ignores EndAt and is meant for admin listings.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return !q.PublishAt.Before(now.Add(-RecentWindow)) && !q.PublishAt.After(now)
}

// CreateQuestionRequest defines the input for creating a question with its choices
type CreateQuestionRequest struct {
	Text      string    `json:"text" binding:"required,max=200"`
	PublishAt time.Time `json:"publish_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
	Choices   []string  `json:"choices" binding:"dive,required,max=200"`
}

// UpdateQuestionRequest replaces the editable fields of a question. A nil
// Choices slice leaves the existing choices untouched.
type UpdateQuestionRequest struct {
	Text      string    `json:"text" binding:"required,max=200"`
	PublishAt time.Time `json:"publish_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
	Choices   []string  `json:"choices" binding:"omitempty,dive,required,max=200"`
}

// QuestionFilter narrows the admin question listing
type QuestionFilter struct {
	Search         string     `form:"search"`
	PublishedAfter *time.Time `form:"published_after" time_format:"2006-01-02"`
}

// AdminQuestionItem is one row of the admin listing
type AdminQuestionItem struct {
	ID                   uint      `json:"id"`
	Text                 string    `json:"text"`
	PublishAt            time.Time `json:"publish_at"`
	EndAt                time.Time `json:"end_at"`
	WasPublishedRecently bool      `json:"was_published_recently"`
	ChoiceCount          int       `json:"choice_count"`
}

// QuestionDetail is what the detail view renders
type QuestionDetail struct {
	Question     Question `json:"question"`
	CanVote      bool     `json:"can_vote"`
	MyChoiceID   *uint    `json:"my_choice_id,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}
