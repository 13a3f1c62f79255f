package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/repository"
)

type QuestionService struct {
	questions QuestionStore
	votes     VoteStore
	images    ImageStore
	now       Clock
}

func NewQuestionService(questions QuestionStore, votes VoteStore, images ImageStore, now Clock) *QuestionService {
	return &QuestionService{
		questions: questions,
		votes:     votes,
		images:    images,
		now:       now,
	}
}

// ListOpen returns the questions currently accepting votes, newest first
func (s *QuestionService) ListOpen(ctx context.Context) ([]models.Question, error) {
	return s.questions.ListOpen(ctx, s.now())
}

// Get loads a question regardless of its window
func (s *QuestionService) Get(ctx context.Context, id uint) (*models.Question, error) {
	q, err := s.questions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}
	return q, nil
}

// Detail returns a published question with the caller's current vote.
// Unpublished questions are reported as not found.
func (s *QuestionService) Detail(ctx context.Context, id, userID uint) (*models.QuestionDetail, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !q.IsPublished(now) {
		return nil, ErrQuestionNotFound
	}

	detail := &models.QuestionDetail{Question: *q, CanVote: q.CanVote(now)}
	if userID != 0 {
		vote, err := s.votes.FindByUserAndQuestion(ctx, userID, id)
		switch {
		case err == nil:
			detail.MyChoiceID = &vote.ChoiceID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("find vote: %w", err)
		}
	}
	return detail, nil
}

// Results tallies the votes of a question. Every choice is listed, votes
// pointing at removed choices are ignored.
func (s *QuestionService) Results(ctx context.Context, id uint) (*models.QuestionResults, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return tally(ctx, s.votes, q)
}

func tally(ctx context.Context, votes VoteStore, q *models.Question) (*models.QuestionResults, error) {
	counts, err := votes.CountByChoice(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	results := &models.QuestionResults{
		QuestionID: q.ID,
		Text:       q.Text,
		Choices:    make([]models.ChoiceResult, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		n := counts[c.ID]
		results.Choices = append(results.Choices, models.ChoiceResult{ChoiceID: c.ID, Text: c.Text, Votes: n})
		results.Total += n
	}
	return results, nil
}

// AdminList lists questions for staff with the recency flag evaluated now
func (s *QuestionService) AdminList(ctx context.Context, filter models.QuestionFilter) ([]models.AdminQuestionItem, error) {
	questions, err := s.questions.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]models.AdminQuestionItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, models.AdminQuestionItem{
			ID:                   q.ID,
			Text:                 q.Text,
			PublishAt:            q.PublishAt,
			EndAt:                q.EndAt,
			WasPublishedRecently: q.WasPublishedRecently(now),
			ChoiceCount:          len(q.Choices),
		})
	}
	return items, nil
}

func buildChoices(texts []string) []models.Choice {
	choices := make([]models.Choice, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			choices = append(choices, models.Choice{Text: t})
		}
	}
	return choices
}

// Create stores a new question with its choices
func (s *QuestionService) Create(ctx context.Context, req models.CreateQuestionRequest) (*models.Question, error) {
	if req.EndAt.Before(req.PublishAt) {
		return nil, ErrInvalidQuestion
	}

	q := &models.Question{
		Text:      strings.TrimSpace(req.Text),
		PublishAt: req.PublishAt.UTC(),
		EndAt:     req.EndAt.UTC(),
		Choices:   buildChoices(req.Choices),
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update replaces the fields of a question, and its choices when given
func (s *QuestionService) Update(ctx context.Context, id uint, req models.UpdateQuestionRequest) (*models.Question, error) {
	if req.EndAt.Before(req.PublishAt) {
		return nil, ErrInvalidQuestion
	}

	q := &models.Question{
		ID:        id,
		Text:      strings.TrimSpace(req.Text),
		PublishAt: req.PublishAt.UTC(),
		EndAt:     req.EndAt.UTC(),
	}
	var choices []models.Choice
	if req.Choices != nil {
		choices = buildChoices(req.Choices)
	}

	err := s.questions.Update(ctx, q, choices)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update question %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	err := s.questions.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

// AttachImage uploads file and records it as the question's image
func (s *QuestionService) AttachImage(ctx context.Context, id uint, file *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", ErrImageStoreDisabled
	}
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}

	url, err := s.images.UploadImage(ctx, id, file)
	if err != nil {
		return "", err
	}
	if err := s.questions.SetImageURL(ctx, id, url); err != nil {
		return "", fmt.Errorf("set image url: %w", err)
	}
	return url, nil
}
