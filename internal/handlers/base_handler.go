package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every HTTP handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// getActor extracts the authenticated identity set by the auth middleware.
// A missing identity aborts with 401.
func (h *BaseHandler) getActor(c *gin.Context) (services.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}
	return services.Actor{
		ID:       userID.(uint),
		Username: c.GetString("username"),
		Role:     models.UserRole(c.GetString("user_role")),
	}, true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param + " parameter",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	raw := c.Query(param)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQueryPtr(c *gin.Context, param string) *uint {
	raw := c.Query(param)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(value)
	return &v
}

// handleServiceError maps service-layer failures onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var dependentsError *services.DependentsExistError
	if errors.As(err, &dependentsError) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: dependentsError.Error(),
			Details: map[string]interface{}{
				"resource":  dependentsError.Resource,
				"dependent": dependentsError.Dependent,
			},
		})
		return
	}

	var underfilledError *services.BucketUnderfilledError
	if errors.As(err, &underfilledError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: underfilledError.Error(),
			Details: map[string]interface{}{
				"bucket":    string(underfilledError.Bucket),
				"requested": underfilledError.Requested,
				"available": underfilledError.Available,
			},
		})
		return
	}

	var dimensionError *services.UnknownDimensionError
	if errors.As(err, &dimensionError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: dimensionError.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid username or password",
		})
	case errors.Is(err, services.ErrUserInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "User account is deactivated",
		})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSubjectNotFound),
		errors.Is(err, services.ErrModuleNotFound),
		errors.Is(err, services.ErrTopicNotFound),
		errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateUsername),
		errors.Is(err, services.ErrDuplicateSubject),
		errors.Is(err, services.ErrDuplicateModule),
		errors.Is(err, services.ErrDuplicateTopic),
		errors.Is(err, services.ErrDuplicateQuestion):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrQuestionSubjectMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	default:
		utils.FromContext(c.Request.Context(), h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
