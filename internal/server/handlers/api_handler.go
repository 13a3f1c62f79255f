package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/service"
	"polls-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// APIHandler is the JSON mirror of the poll pages
type APIHandler struct {
	questionService *service.QuestionService
	voteService     *service.VoteService
}

func NewAPIHandler(questionService *service.QuestionService, voteService *service.VoteService) *APIHandler {
	return &APIHandler{
		questionService: questionService,
		voteService:     voteService,
	}
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrChoiceNotFound):
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
	case errors.Is(err, service.ErrNotInPollingPeriod):
		writeError(c, http.StatusForbidden, response.ErrCodeNotInPeriod, "")
	case errors.Is(err, service.ErrChoiceNotSelected), errors.Is(err, service.ErrInvalidChoice):
		writeError(c, http.StatusBadRequest, response.ErrCodeChoiceMissing, err.Error())
	case errors.Is(err, service.ErrInvalidQuestion):
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "")
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeError(c, http.StatusConflict, response.ErrCodeUserExists, "")
	case errors.Is(err, service.ErrImageStoreDisabled):
		writeError(c, http.StatusServiceUnavailable, response.ErrCodeImageDisabled, "")
	default:
		writeInternalError(c, err)
	}
}

// @Summary List open questions
// @Description Questions whose voting window contains the current time, newest first
// @Tags questions
// @Produce json
// @Success 200 {array} models.Question
// @Router /questions [get]
func (h *APIHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.ListOpen(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// @Summary Get a question
// @Description Published question with its choices and the caller's vote
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} models.QuestionDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id} [get]
func (h *APIHandler) GetQuestion(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	detail, err := h.questionService.Detail(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary Get question results
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.QuestionResults
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/results [get]
func (h *APIHandler) GetResults(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	results, err := h.questionService.Results(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// @Summary Vote on a question
// @Description Records or replaces the caller's choice
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body models.VoteRequest true "Vote Request"
// @Success 200 {object} models.VoteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/vote [post]
func (h *APIHandler) Vote(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}
	submitted := ""
	if req.Choice != nil {
		submitted = strconv.FormatUint(uint64(*req.Choice), 10)
	}

	vote, err := h.voteService.CastVote(c.Request.Context(), userID(c), id, submitted)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VoteResponse{
		QuestionID: vote.QuestionID,
		ChoiceID:   vote.ChoiceID,
		ResultsURL: fmt.Sprintf("/api/v1/questions/%d/results", id),
	})
}
