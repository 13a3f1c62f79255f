package models

type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"column:question_id;not null;index" json:"question_id"`
	Text       string `gorm:"column:choice_text;size:200;not null" json:"text"`
	// VoteCount is a legacy column. Tallies come from the votes table.
	VoteCount int `gorm:"column:vote_count;not null;default:0" json:"-"`
}

// TableName specifies the table name for Choice
func (Choice) TableName() string {
	return "choices"
}

// ChoiceResult is a choice together with the number of votes it holds
type ChoiceResult struct {
	ChoiceID uint   `json:"choice_id"`
	Text     string `json:"text"`
	Votes    int64  `json:"votes"`
}

// QuestionResults is a point-in-time tally of a question
type QuestionResults struct {
	QuestionID uint           `json:"question_id"`
	Text       string         `json:"text"`
	Choices    []ChoiceResult `json:"choices"`
	Total      int64          `json:"total"`
	// Seq orders broadcast tallies of a question; a later tally has a larger Seq.
	Seq uint64 `json:"seq,omitempty"`
}
