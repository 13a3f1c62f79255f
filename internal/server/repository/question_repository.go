package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"polls-service/internal/ports/models"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a question together with its choices
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// FindByID loads a question with its choices ordered by id
func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&question, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

// ListOpen returns questions whose voting window contains now, newest first
func (r *QuestionRepository) ListOpen(ctx context.Context, now time.Time) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("publish_at <= ? AND end_at >= ?", now, now).
		Order("publish_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list open questions: %w", err)
	}
	return questions, nil
}

// Search lists questions for the admin view, newest first
func (r *QuestionRepository) Search(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	query := r.db.WithContext(ctx).Model(&models.Question{}).Preload("Choices")
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(question_text) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.PublishedAfter != nil {
		query = query.Where("publish_at >= ?", *filter.PublishedAfter)
	}

	var questions []models.Question
	if err := query.Order("publish_at DESC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return questions, nil
}

// Update saves the question fields and, when choices is non-nil, syncs its
// choices by text. A choice whose text is resubmitted keeps its id and its
// votes; only texts that disappeared are deleted and only new texts are
// inserted. Votes for deleted choices are left dangling.
func (r *QuestionRepository) Update(ctx context.Context, question *models.Question, choices []models.Choice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Question{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
			"question_text": question.Text,
			"publish_at":    question.PublishAt,
			"end_at":        question.EndAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if choices == nil {
			return nil
		}
		return syncChoices(tx, question.ID, choices)
	})
}

func syncChoices(tx *gorm.DB, questionID uint, choices []models.Choice) error {
	var existing []models.Choice
	if err := tx.Where("question_id = ?", questionID).Order("id ASC").Find(&existing).Error; err != nil {
		return err
	}

	byText := make(map[string][]uint, len(existing))
	for _, c := range existing {
		byText[c.Text] = append(byText[c.Text], c.ID)
	}

	kept := make(map[uint]struct{}, len(existing))
	var added []models.Choice
	for _, c := range choices {
		if ids := byText[c.Text]; len(ids) > 0 {
			kept[ids[0]] = struct{}{}
			byText[c.Text] = ids[1:]
			continue
		}
		added = append(added, models.Choice{QuestionID: questionID, Text: c.Text})
	}

	var removed []uint
	for _, c := range existing {
		if _, ok := kept[c.ID]; !ok {
			removed = append(removed, c.ID)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("id IN ?", removed).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
	}
	if len(added) > 0 {
		return tx.Create(&added).Error
	}
	return nil
}

// SetImageURL records the uploaded image of a question
func (r *QuestionRepository) SetImageURL(ctx context.Context, id uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question with its choices and votes
func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
