package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"polls-service/internal/server/service"
	"polls-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// PollHandler serves the server-rendered poll pages
type PollHandler struct {
	questionService *service.QuestionService
	voteService     *service.VoteService
}

func NewPollHandler(questionService *service.QuestionService, voteService *service.VoteService) *PollHandler {
	return &PollHandler{
		questionService: questionService,
		voteService:     voteService,
	}
}

// Index lists the questions currently open for voting
func (h *PollHandler) Index(c *gin.Context) {
	questions, err := h.questionService.ListOpen(c.Request.Context())
	if err != nil {
		internalErrorPage(c, err)
		return
	}
	page(c, http.StatusOK, "index.tmpl", gin.H{"Questions": questions})
}

// Detail shows the voting form. Closed questions bounce back to the index.
func (h *PollHandler) Detail(c *gin.Context) {
	h.renderDetail(c, "")
}

func (h *PollHandler) renderDetail(c *gin.Context, errorMessage string) {
	id, err := parseID(c)
	if err != nil {
		notFoundPage(c)
		return
	}

	detail, err := h.questionService.Detail(c.Request.Context(), id, userID(c))
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		notFoundPage(c)
		return
	case err != nil:
		internalErrorPage(c, err)
		return
	}

	if !detail.CanVote {
		setFlash(c, response.Message(response.ErrCodeNotInPeriod))
		c.Redirect(http.StatusFound, "/")
		return
	}

	page(c, http.StatusOK, "detail.tmpl", gin.H{
		"Title":        detail.Question.Text,
		"Detail":       detail,
		"ErrorMessage": errorMessage,
	})
}

// Results shows the tally without any eligibility check
func (h *PollHandler) Results(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		notFoundPage(c)
		return
	}

	results, err := h.questionService.Results(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		notFoundPage(c)
		return
	case err != nil:
		internalErrorPage(c, err)
		return
	}

	page(c, http.StatusOK, "results.tmpl", gin.H{"Title": results.Text, "Results": results})
}

// Vote records the submitted form field "choice"
func (h *PollHandler) Vote(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		notFoundPage(c)
		return
	}

	_, err = h.voteService.CastVote(c.Request.Context(), userID(c), id, c.PostForm("choice"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, fmt.Sprintf("/%d/results/", id))
	case errors.Is(err, service.ErrQuestionNotFound):
		notFoundPage(c)
	case errors.Is(err, service.ErrNotInPollingPeriod):
		setFlash(c, response.Message(response.ErrCodeNotInPeriod))
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrChoiceNotSelected), errors.Is(err, service.ErrInvalidChoice):
		h.renderDetail(c, response.Message(response.ErrCodeChoiceMissing))
	default:
		internalErrorPage(c, err)
	}
}
