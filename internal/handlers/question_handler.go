package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuestionHandler struct {
	BaseHandler
	questionService     services.QuestionService
	importExportService services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:         NewBaseHandler(logger),
		questionService:     questionService,
		importExportService: importExportService,
	}
}

// CreateQuestion creates a new question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req models.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question with its hierarchy context
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateQuestion updates a question owned by the caller
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.QuestionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question owned by the caller
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question deleted successfully",
	})
}

// ListQuestions searches questions with AND-combined filters
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	params := h.parseListParams(c)

	result, err := h.questionService.List(c.Request.Context(), params, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportQuestions streams the filtered question set as an xlsx workbook
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	if _, ok := h.getActor(c); !ok {
		return
	}

	params := h.parseListParams(c)

	data, filename, err := h.importExportService.Export(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ImportQuestions accepts an xlsx upload and reports per-row results
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Multipart field 'file' is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	result, err := h.importExportService.Import(c.Request.Context(), file, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuestionHandler) parseListParams(c *gin.Context) models.ListQuestionsParams {
	params := models.ListQuestionsParams{
		Page:      h.parseIntQuery(c, "page", 1),
		Size:      h.parseIntQuery(c, "size", 20),
		SubjectID: h.parseUintQueryPtr(c, "subject_id"),
		ModuleID:  h.parseUintQueryPtr(c, "module_id"),
		TopicID:   h.parseUintQueryPtr(c, "topic_id"),
		Search:    c.Query("search"),
	}
	if raw := c.Query("difficulty"); raw != "" {
		d := models.DifficultyLevel(raw)
		params.Difficulty = &d
	}
	if raw := c.Query("cognitive_level"); raw != "" {
		cl := models.CognitiveLevel(raw)
		params.CognitiveLevel = &cl
	}
	if raw := c.Query("co"); raw != "" {
		params.CO = &raw
	}
	if raw := c.Query("po"); raw != "" {
		params.PO = &raw
	}
	return params
}
