package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"polls-service/internal/ports/models"
	"polls-service/internal/testutil"
	"polls-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	rr := testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/auth/register",
		models.RegisterRequest{Username: "newbie", Email: "newbie@example.com", Password: "secret1"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/auth/register",
		models.RegisterRequest{Username: "newbie", Email: "again@example.com", Password: "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"username": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/auth/login",
		models.LoginRequest{Username: "newbie", Password: "secret1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var login models.LoginResponse
	testutil.DecodeJSON(t, rr, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "newbie", login.User.Username)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/auth/login",
		models.LoginRequest{Username: "newbie", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPIVoteFlow(t *testing.T) {
	app := newTestApp(t)
	user := testutil.CreateTestUser(t, app.db, "alice", false)
	open := testutil.CreateTestQuestion(t, app.db, "Open", app.now, -time.Hour, time.Hour, "a", "b")
	ended := testutil.CreateTestQuestion(t, app.db, "Ended", app.now, -2*time.Hour, -time.Hour, "a")
	auth := app.bearer(user)

	rr := testutil.MakeRequest(t, app.handler, http.MethodGet, "/api/v1/questions", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Question
	testutil.DecodeJSON(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)

	votePath := fmt.Sprintf("/api/v1/questions/%d/vote", open.ID)
	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, votePath, models.VoteRequest{Choice: &open.Choices[1].ID}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, votePath, models.VoteRequest{Choice: &open.Choices[1].ID}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var voted models.VoteResponse
	testutil.DecodeJSON(t, rr, &voted)
	assert.Equal(t, open.Choices[1].ID, voted.ChoiceID)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, votePath, map[string]interface{}{}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var apiErr models.ErrorResponse
	testutil.DecodeJSON(t, rr, &apiErr)
	assert.Equal(t, response.ErrCodeChoiceMissing, apiErr.Code)
	assert.Equal(t, "You didn't select a choice.", apiErr.Message)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, fmt.Sprintf("/api/v1/questions/%d/vote", ended.ID),
		models.VoteRequest{Choice: &ended.Choices[0].ID}, auth)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/questions/9999/vote",
		models.VoteRequest{Choice: &open.Choices[0].ID}, auth)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodGet, fmt.Sprintf("/api/v1/questions/%d", open.ID), nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail models.QuestionDetail
	testutil.DecodeJSON(t, rr, &detail)
	require.NotNil(t, detail.MyChoiceID)
	assert.Equal(t, open.Choices[1].ID, *detail.MyChoiceID)

	rr = testutil.MakeRequest(t, app.handler, http.MethodGet, fmt.Sprintf("/api/v1/questions/%d/results", open.ID), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var results models.QuestionResults
	testutil.DecodeJSON(t, rr, &results)
	assert.Equal(t, int64(1), results.Total)
	assert.Equal(t, int64(1), results.Choices[1].Votes)
}

func TestAPIAdmin(t *testing.T) {
	app := newTestApp(t)
	staff := testutil.CreateTestUser(t, app.db, "admin", true)
	voter := testutil.CreateTestUser(t, app.db, "voter", false)
	body := models.CreateQuestionRequest{
		Text:      "New poll",
		PublishAt: app.now.Add(-time.Hour),
		EndAt:     app.now.Add(time.Hour),
		Choices:   []string{"one", "two"},
	}

	rr := testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/admin/questions", body, app.bearer(voter))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/admin/questions", body, app.bearer(staff))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.Question
	testutil.DecodeJSON(t, rr, &created)
	assert.Len(t, created.Choices, 2)

	inverted := body
	inverted.EndAt = body.PublishAt.Add(-time.Minute)
	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, "/api/v1/admin/questions", inverted, app.bearer(staff))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodGet, "/api/v1/admin/questions?search=new", nil, app.bearer(staff))
	require.Equal(t, http.StatusOK, rr.Code)
	var items []models.AdminQuestionItem
	testutil.DecodeJSON(t, rr, &items)
	require.Len(t, items, 1)
	assert.True(t, items[0].WasPublishedRecently)

	update := models.UpdateQuestionRequest{Text: "Renamed", PublishAt: body.PublishAt, EndAt: body.EndAt}
	rr = testutil.MakeRequest(t, app.handler, http.MethodPut, fmt.Sprintf("/api/v1/admin/questions/%d", created.ID), update, app.bearer(staff))
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.Question
	testutil.DecodeJSON(t, rr, &updated)
	assert.Equal(t, "Renamed", updated.Text)
	assert.Len(t, updated.Choices, 2)

	rr = testutil.MakeRequest(t, app.handler, http.MethodPost, fmt.Sprintf("/api/v1/admin/questions/%d/image", created.ID), nil, app.bearer(staff))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = testutil.MakeRequest(t, app.handler, http.MethodDelete, fmt.Sprintf("/api/v1/admin/questions/%d", created.ID), nil, app.bearer(staff))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = testutil.MakeRequest(t, app.handler, http.MethodDelete, fmt.Sprintf("/api/v1/admin/questions/%d", created.ID), nil, app.bearer(staff))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
