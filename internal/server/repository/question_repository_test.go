package repository

import (
	"context"
	"testing"
	"time"

	"polls-service/internal/ports/models"
	"polls-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now().UTC()
	older := testutil.CreateTestQuestion(t, db, "Older open", now, -2*time.Hour, time.Hour)
	newer := testutil.CreateTestQuestion(t, db, "Newer open", now, -time.Hour, time.Hour)
	testutil.CreateTestQuestion(t, db, "Future", now, time.Hour, 2*time.Hour)
	testutil.CreateTestQuestion(t, db, "Ended", now, -2*time.Hour, -time.Hour)

	questions, err := NewQuestionRepository(db).ListOpen(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, questions, 2)
	assert.Equal(t, newer.ID, questions[0].ID)
	assert.Equal(t, older.ID, questions[1].ID)
}

func TestFindByIDLoadsChoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := testutil.CreateTestQuestion(t, db, "Pick one", time.Now().UTC(), -time.Hour, time.Hour, "a", "b")
	repo := NewQuestionRepository(db)

	got, err := repo.FindByID(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, got.Choices, 2)
	assert.Equal(t, "a", got.Choices[0].Text)

	_, err = repo.FindByID(context.Background(), q.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now().UTC()
	testutil.CreateTestQuestion(t, db, "What is your favourite Colour?", now, -48*time.Hour, time.Hour)
	recent := testutil.CreateTestQuestion(t, db, "Favourite food?", now, -time.Hour, time.Hour)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	got, err := repo.Search(ctx, models.QuestionFilter{Search: "colour"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "Colour")

	since := now.Add(-24 * time.Hour)
	got, err = repo.Search(ctx, models.QuestionFilter{PublishedAfter: &since})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)

	got, err = repo.Search(ctx, models.QuestionFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateReplacesChoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now().UTC()
	q := testutil.CreateTestQuestion(t, db, "Old", now, -time.Hour, time.Hour, "x", "y")
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	q.Text = "New"
	require.NoError(t, repo.Update(ctx, q, []models.Choice{{Text: "z"}}))

	got, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Text)
	require.Len(t, got.Choices, 1)
	assert.Equal(t, "z", got.Choices[0].Text)

	got.Text = "Newer"
	require.NoError(t, repo.Update(ctx, got, nil))
	got, err = repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Choices, 1)

	missing := &models.Question{ID: q.ID + 100, Text: "nope", PublishAt: now, EndAt: now}
	assert.ErrorIs(t, repo.Update(ctx, missing, nil), ErrNotFound)
}

func TestUpdateKeepsResubmittedChoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now().UTC()
	q := testutil.CreateTestQuestion(t, db, "Colour?", now, -time.Hour, time.Hour, "red", "green", "blue")
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	q.Text = "Favourite colour?"
	require.NoError(t, repo.Update(ctx, q, []models.Choice{{Text: "blue"}, {Text: "red"}, {Text: "purple"}}))

	got, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Choices, 3)
	assert.Equal(t, q.Choices[0].ID, got.Choices[0].ID)
	assert.Equal(t, "red", got.Choices[0].Text)
	assert.Equal(t, q.Choices[2].ID, got.Choices[1].ID)
	assert.Equal(t, "blue", got.Choices[1].Text)
	assert.Equal(t, "purple", got.Choices[2].Text)

	var green int64
	require.NoError(t, db.Model(&models.Choice{}).Where("id = ?", q.Choices[1].ID).Count(&green).Error)
	assert.Zero(t, green)
}

func TestDeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now().UTC()
	q := testutil.CreateTestQuestion(t, db, "Doomed", now, -time.Hour, time.Hour, "a")
	u := testutil.CreateTestUser(t, db, "carol", false)
	_, err := NewVoteRepository(db).Upsert(context.Background(), u.ID, q.ID, q.Choices[0].ID, now)
	require.NoError(t, err)
	repo := NewQuestionRepository(db)

	require.NoError(t, repo.Delete(context.Background(), q.ID))

	assert.Equal(t, int64(0), testutil.CountVotes(t, db, q.ID))
	var choices int64
	require.NoError(t, db.Model(&models.Choice{}).Where("question_id = ?", q.ID).Count(&choices).Error)
	assert.Zero(t, choices)
	assert.ErrorIs(t, repo.Delete(context.Background(), q.ID), ErrNotFound)
}

func TestSetImageURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := testutil.CreateTestQuestion(t, db, "Pic", time.Now().UTC(), -time.Hour, time.Hour)
	repo := NewQuestionRepository(db)

	require.NoError(t, repo.SetImageURL(context.Background(), q.ID, "http://img/1.png"))
	got, err := repo.FindByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://img/1.png", got.ImageURL)

	assert.ErrorIs(t, repo.SetImageURL(context.Background(), 999, "x"), ErrNotFound)
}
