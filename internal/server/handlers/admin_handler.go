package handlers

import (
	"net/http"
	"strings"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/service"
	"polls-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

type AdminHandler struct {
	questionService *service.QuestionService
}

func NewAdminHandler(questionService *service.QuestionService) *AdminHandler {
	return &AdminHandler{questionService: questionService}
}

// @Summary List questions
// @Description Staff listing with search and publish-date filter
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in question text"
// @Param published_after query string false "YYYY-MM-DD"
// @Success 200 {array} models.AdminQuestionItem
// @Router /admin/questions [get]
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	var filter models.QuestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}

	items, err := h.questionService.AdminList(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Create a question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateQuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/questions [post]
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// @Summary Update a question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body models.UpdateQuestionRequest true "Question"
// @Success 200 {object} models.Question
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/questions/{id} [put]
func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	var req models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// @Summary Delete a question
// @Description Removes the question with its choices and votes
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/questions/{id} [delete]
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Upload a question image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param image formData file true "Image file"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/questions/{id}/image [post]
func (h *AdminHandler) UploadImage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, http.StatusNotFound, response.ErrCodeQuestionMissing, "")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, "image file is required")
		return
	}
	if file.Size > maxImageSize {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, "image exceeds 5MB")
		return
	}
	if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, "file is not an image")
		return
	}

	url, err := h.questionService.AttachImage(c.Request.Context(), id, file)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
