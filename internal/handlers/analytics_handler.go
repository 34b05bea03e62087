package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// Aggregate returns question counts grouped by the requested dimension
func (h *AnalyticsHandler) Aggregate(c *gin.Context) {
	dimension := c.Param("dimension")

	result, err := h.analyticsService.Aggregate(c.Request.Context(), dimension)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubjectSummaries returns per-subject totals with difficulty breakdowns
func (h *AnalyticsHandler) SubjectSummaries(c *gin.Context) {
	summaries, err := h.analyticsService.SubjectSummaries(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": summaries})
}
