package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/question-bank-service/internal/auth"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/services"
	"github.com/SAP-F-2025/question-bank-service/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	userHandler      *UserHandler
	subjectHandler   *SubjectHandler
	moduleHandler    *ModuleHandler
	topicHandler     *TopicHandler
	questionHandler  *QuestionHandler
	paperHandler     *PaperHandler
	analyticsHandler *AnalyticsHandler
	activityHandler  *ActivityLogHandler
	authMiddleware   *AuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	jwtManager *auth.JWTManager,
	userRepo repositories.UserRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:      NewUserHandler(serviceManager.User(), logger),
		subjectHandler:   NewSubjectHandler(serviceManager.Subject(), logger),
		moduleHandler:    NewModuleHandler(serviceManager.Module(), logger),
		topicHandler:     NewTopicHandler(serviceManager.Topic(), logger),
		questionHandler:  NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), logger),
		paperHandler:     NewPaperHandler(serviceManager.Paper(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		activityHandler:  NewActivityLogHandler(serviceManager.ActivityLog(), logger),
		authMiddleware:   NewAuthMiddleware(jwtManager, userRepo),
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Login is the only unauthenticated API route.
	v1.POST("/auth/login", hm.authHandler.Login)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.RequireAuth())
	{
		adminOnly := hm.authMiddleware.RequireRole(models.RoleAdmin)

		// User management - admin only
		users := authed.Group("/users")
		{
			users.POST("", adminOnly, hm.userHandler.CreateUser)
			users.GET("", adminOnly, hm.userHandler.ListUsers)
			users.PATCH("/:id/active", adminOnly, hm.userHandler.SetUserActive)
		}

		// Subject hierarchy
		subjects := authed.Group("/subjects")
		{
			subjects.POST("", hm.subjectHandler.CreateSubject)
			subjects.GET("", hm.subjectHandler.ListSubjects)
			subjects.GET("/:id", hm.subjectHandler.GetSubject)
			subjects.PUT("/:id", hm.subjectHandler.UpdateSubject)
			subjects.DELETE("/:id", adminOnly, hm.subjectHandler.DeleteSubject)
			subjects.GET("/:id/modules", hm.moduleHandler.ListModulesBySubject)
		}

		modules := authed.Group("/modules")
		{
			modules.POST("", hm.moduleHandler.CreateModule)
			modules.GET("/:id", hm.moduleHandler.GetModule)
			modules.PUT("/:id", hm.moduleHandler.UpdateModule)
			modules.DELETE("/:id", adminOnly, hm.moduleHandler.DeleteModule)
			modules.GET("/:id/topics", hm.topicHandler.ListTopicsByModule)
		}

		topics := authed.Group("/topics")
		{
			topics.POST("", hm.topicHandler.CreateTopic)
			topics.GET("/:id", hm.topicHandler.GetTopic)
			topics.PUT("/:id", hm.topicHandler.UpdateTopic)
			topics.DELETE("/:id", adminOnly, hm.topicHandler.DeleteTopic)
		}

		// Question bank
		questions := authed.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)

			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
		}

		// Paper assembly
		authed.POST("/papers", hm.paperHandler.GeneratePaper)

		// Analytics
		analytics := authed.Group("/analytics")
		{
			analytics.GET("/subjects", hm.analyticsHandler.SubjectSummaries)
			analytics.GET("/:dimension", hm.analyticsHandler.Aggregate)
		}

		// Activity log - admin only
		authed.GET("/logs", adminOnly, hm.activityHandler.ListLogs)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{
		"status":    "healthy",
		"service":   "question-bank-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}

	c.JSON(status, health)
}
