package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/question-bank-service/internal/auth"
	"github.com/SAP-F-2025/question-bank-service/internal/cache"
	"github.com/SAP-F-2025/question-bank-service/internal/events"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// InstitutionName is printed on generated paper headers.
	InstitutionName string

	// Service-specific configurations
	Question     ServiceConfig
	ImportExport ServiceConfig
	Paper        ServiceConfig
	Analytics    ServiceConfig

	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled         bool
	CacheEnabled    bool
	CacheTTL        time.Duration
	AuditingEnabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	cache      *cache.CacheManager
	events     *events.Publisher
	jwtManager *auth.JWTManager
	config     ServiceManagerConfig

	// Service instances
	authService         AuthService
	userService         UserService
	subjectService      SubjectService
	moduleService       ModuleService
	topicService        TopicService
	questionService     QuestionService
	importExportService ImportExportService
	paperService        PaperService
	analyticsService    AnalyticsService
	activityLogService  ActivityLogService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheManager *cache.CacheManager,
	publisher *events.Publisher,
	jwtManager *auth.JWTManager,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		repo:       repo,
		logger:     logger,
		validator:  validator,
		cache:      cacheManager,
		events:     publisher,
		jwtManager: jwtManager,
		config:     config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheManager *cache.CacheManager,
	publisher *events.Publisher,
	jwtManager *auth.JWTManager,
	institution string,
) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		InstitutionName:    institution,

		Question: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			AuditingEnabled: true,
		},
		ImportExport: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			AuditingEnabled: true,
		},
		Paper: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			AuditingEnabled: true,
		},
		Analytics: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        2 * time.Minute,
			AuditingEnabled: false,
		},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(repo, logger, validator, cacheManager, publisher, jwtManager, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.jwtManager, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.subjectService = NewSubjectService(sm.repo, sm.logger, sm.validator)
	sm.moduleService = NewModuleService(sm.repo, sm.logger, sm.validator)
	sm.topicService = NewTopicService(sm.repo, sm.logger, sm.validator)

	if sm.config.Question.Enabled {
		sm.questionService = NewQuestionService(sm.repo, sm.logger, sm.validator, sm.events)
		sm.logger.Info("Question service initialized")
	}
	if sm.config.ImportExport.Enabled {
		sm.importExportService = NewImportExportService(sm.repo, sm.logger, sm.validator, sm.events)
		sm.logger.Info("ImportExport service initialized")
	}
	if sm.config.Paper.Enabled {
		sm.paperService = NewPaperService(sm.repo, sm.logger, sm.validator, sm.config.InstitutionName)
		sm.logger.Info("Paper service initialized")
	}
	if sm.config.Analytics.Enabled {
		sm.analyticsService = NewAnalyticsService(sm.repo, sm.cache, sm.logger)
		sm.logger.Info("Analytics service initialized")
	}

	sm.activityLogService = NewActivityLogService(sm.repo, sm.logger)

	// Seed the admin account before the first request can hit login.
	if err := sm.userService.EnsureDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("failed to ensure default admin: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.subjectService
}

func (sm *serviceManager) Module() ModuleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.moduleService
}

func (sm *serviceManager) Topic() TopicService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.topicService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Question.Enabled && sm.questionService != nil {
		return sm.questionService
	}
	panic("question service not enabled or not initialized")
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.ImportExport.Enabled && sm.importExportService != nil {
		return sm.importExportService
	}
	panic("import/export service not enabled or not initialized")
}

func (sm *serviceManager) Paper() PaperService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Paper.Enabled && sm.paperService != nil {
		return sm.paperService
	}
	panic("paper service not enabled or not initialized")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Analytics.Enabled && sm.analyticsService != nil {
		return sm.analyticsService
	}
	panic("analytics service not enabled or not initialized")
}

func (sm *serviceManager) ActivityLog() ActivityLogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.activityLogService
}

// HealthCheck verifies the dependencies the services rely on.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown releases event and repository resources.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.events != nil {
		if err := sm.events.Close(); err != nil {
			sm.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}
