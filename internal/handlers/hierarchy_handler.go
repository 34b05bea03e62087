package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

// ===== SUBJECTS =====

type SubjectHandler struct {
	BaseHandler
	subjectService services.SubjectService
}

func NewSubjectHandler(subjectService services.SubjectService, logger utils.Logger) *SubjectHandler {
	return &SubjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
	}
}

func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req models.SubjectCreateRequest
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

	subject, err := h.subjectService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	subject, err := h.subjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjectService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.SubjectUpdateRequest
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

	subject, err := h.subjectService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Subject deleted successfully",
	})
}

// ===== MODULES =====

type ModuleHandler struct {
	BaseHandler
	moduleService services.ModuleService
}

func NewModuleHandler(moduleService services.ModuleService, logger utils.Logger) *ModuleHandler {
	return &ModuleHandler{
		BaseHandler:   NewBaseHandler(logger),
		moduleService: moduleService,
	}
}

func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req models.ModuleCreateRequest
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

	module, err := h.moduleService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

func (h *ModuleHandler) GetModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	module, err := h.moduleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

func (h *ModuleHandler) ListModulesBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	modules, err := h.moduleService.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.ModuleUpdateRequest
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

	module, err := h.moduleService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.moduleService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Module deleted successfully",
	})
}

// ===== TOPICS =====

type TopicHandler struct {
	BaseHandler
	topicService services.TopicService
}

func NewTopicHandler(topicService services.TopicService, logger utils.Logger) *TopicHandler {
	return &TopicHandler{
		BaseHandler:  NewBaseHandler(logger),
		topicService: topicService,
	}
}

func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req models.TopicCreateRequest
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

	topic, err := h.topicService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, topic)
}

func (h *TopicHandler) GetTopic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	topic, err := h.topicService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) ListTopicsByModule(c *gin.Context) {
	moduleID := h.parseIDParam(c, "id")
	if moduleID == 0 {
		return
	}

	topics, err := h.topicService.ListByModule(c.Request.Context(), moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.TopicUpdateRequest
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

	topic, err := h.topicService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.topicService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Topic deleted successfully",
	})
}
