package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

type ActivityLogHandler struct {
	BaseHandler
	activityService services.ActivityLogService
}

func NewActivityLogHandler(activityService services.ActivityLogService, logger utils.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
	}
}

// ListLogs returns the newest activity entries first
func (h *ActivityLogHandler) ListLogs(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	result, err := h.activityService.List(c.Request.Context(), page, size, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
