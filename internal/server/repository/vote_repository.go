package repository

import (
	"context"
	"fmt"
	"time"

	"polls-service/internal/ports/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert stores the user's choice for a question in a single statement,
// replacing any earlier choice. It relies on idx_votes_user_question.
func (r *VoteRepository) Upsert(ctx context.Context, userID, questionID, choiceID uint, at time.Time) (*models.Vote, error) {
	vote := &models.Vote{
		UserID:     userID,
		QuestionID: questionID,
		ChoiceID:   choiceID,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"choice_id", "updated_at"}),
	}).Create(vote).Error
	if err != nil {
		return nil, fmt.Errorf("upsert vote: %w", err)
	}
	return vote, nil
}

// FindByUserAndQuestion returns the user's current vote on a question
func (r *VoteRepository) FindByUserAndQuestion(ctx context.Context, userID, questionID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

// CountByChoice tallies the votes of a question per choice id
func (r *VoteRepository) CountByChoice(ctx context.Context, questionID uint) (map[uint]int64, error) {
	var rows []struct {
		ChoiceID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("choice_id, COUNT(*) AS total").
		Where("question_id = ?", questionID).
		Group("choice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ChoiceID] = row.Total
	}
	return counts, nil
}

// CountByQuestion returns how many rows a question holds
func (r *VoteRepository) CountByQuestion(ctx context.Context, questionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
