package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/repository"

	"github.com/google/uuid"
)

type VoteService struct {
	questions   QuestionStore
	votes       VoteStore
	publisher   VotePublisher
	broadcaster ResultsBroadcaster
	now         Clock
	tallySeq    atomic.Uint64
}

// NewVoteService wires the vote path. publisher and broadcaster may be nil.
func NewVoteService(questions QuestionStore, votes VoteStore, publisher VotePublisher, broadcaster ResultsBroadcaster, now Clock) *VoteService {
	return &VoteService{
		questions:   questions,
		votes:       votes,
		publisher:   publisher,
		broadcaster: broadcaster,
		now:         now,
	}
}

// CheckEligibility loads the question and evaluates its voting window
// against a fresh clock reading.
func (s *VoteService) CheckEligibility(ctx context.Context, questionID uint) (*models.Question, error) {
	q, err := s.questions.FindByID(ctx, questionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question %d: %w", questionID, err)
	}
	if !q.CanVote(s.now()) {
		return q, ErrNotInPollingPeriod
	}
	return q, nil
}

// ResolveChoice maps the raw submitted value onto one of the question's
// choices.
func ResolveChoice(q *models.Question, submitted string) (models.Choice, error) {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return models.Choice{}, ErrChoiceNotSelected
	}
	id, err := strconv.ParseUint(submitted, 10, 64)
	if err != nil {
		return models.Choice{}, ErrInvalidChoice
	}
	for _, c := range q.Choices {
		if uint64(c.ID) == id {
			return c, nil
		}
	}
	return models.Choice{}, ErrInvalidChoice
}

// CastVote gates, resolves and records the user's choice. Nothing is
// written unless every check passes.
func (s *VoteService) CastVote(ctx context.Context, userID, questionID uint, submitted string) (*models.Vote, error) {
	q, err := s.CheckEligibility(ctx, questionID)
	if err != nil {
		return nil, err
	}

	choice, err := ResolveChoice(q, submitted)
	if err != nil {
		return nil, err
	}

	vote, err := s.votes.Upsert(ctx, userID, q.ID, choice.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	slog.Debug("Vote recorded", "user_id", userID, "question_id", q.ID, "choice_id", choice.ID)

	s.notify(ctx, q, vote)
	return vote, nil
}

func (s *VoteService) notify(ctx context.Context, q *models.Question, vote *models.Vote) {
	if s.publisher != nil {
		msg := models.VoteMessage{
			EventID:    uuid.NewString(),
			UserID:     vote.UserID,
			QuestionID: vote.QuestionID,
			ChoiceID:   vote.ChoiceID,
			RecordedAt: vote.UpdatedAt,
		}
		if err := s.publisher.PublishVote(ctx, msg); err != nil {
			slog.Warn("Failed to publish vote event", "question_id", q.ID, "error", err)
		}
	}

	if s.broadcaster != nil {
		// taken before counting: a tally with a larger seq sees every vote a smaller one saw
		seq := s.tallySeq.Add(1)
		results, err := tally(ctx, s.votes, q)
		if err != nil {
			slog.Warn("Failed to tally results for broadcast", "question_id", q.ID, "error", err)
			return
		}
		results.Seq = seq
		s.broadcaster.BroadcastResults(results)
	}
}
