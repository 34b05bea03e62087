package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
)

// Actor is the request-scoped identity extracted from the session token. It
// is passed explicitly to every operation that needs authorization.
type Actor struct {
	ID       uint
	Username string
	Role     models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ===== AUTH & USERS =====

type AuthService interface {
	// Login verifies credentials and issues a session token. Unknown
	// usernames and wrong passwords fail identically with
	// ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
}

type UserService interface {
	Create(ctx context.Context, req *models.UserCreateRequest, actor Actor) (*models.UserInfo, error)
	List(ctx context.Context, page, size int) ([]models.UserInfo, int64, error)
	SetActive(ctx context.Context, id uint, active bool, actor Actor) error

	// EnsureDefaultAdmin seeds the admin account when the user table is empty.
	EnsureDefaultAdmin(ctx context.Context) error
}

// ===== HIERARCHY =====

type SubjectService interface {
	Create(ctx context.Context, req *models.SubjectCreateRequest, actor Actor) (*models.Subject, error)
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	Update(ctx context.Context, id uint, req *models.SubjectUpdateRequest, actor Actor) (*models.Subject, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type ModuleService interface {
	Create(ctx context.Context, req *models.ModuleCreateRequest, actor Actor) (*models.Module, error)
	GetByID(ctx context.Context, id uint) (*models.Module, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]*models.Module, error)
	Update(ctx context.Context, id uint, req *models.ModuleUpdateRequest, actor Actor) (*models.Module, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type TopicService interface {
	Create(ctx context.Context, req *models.TopicCreateRequest, actor Actor) (*models.Topic, error)
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	ListByModule(ctx context.Context, moduleID uint) ([]*models.Topic, error)
	Update(ctx context.Context, id uint, req *models.TopicUpdateRequest, actor Actor) (*models.Topic, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

// ===== QUESTIONS =====

type QuestionService interface {
	Create(ctx context.Context, req *models.QuestionCreateRequest, actor Actor) (*models.QuestionResponse, error)
	GetByID(ctx context.Context, id uint, actor Actor) (*models.QuestionResponse, error)
	Update(ctx context.Context, id uint, req *models.QuestionUpdateRequest, actor Actor) (*models.QuestionResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, params models.ListQuestionsParams, actor Actor) (*models.QuestionListResponse, error)
}

// ===== IMPORT / EXPORT =====

type ImportExportService interface {
	// Export serializes the filtered question set into an xlsx workbook.
	Export(ctx context.Context, params models.ListQuestionsParams) ([]byte, string, error)

	// Import reads an xlsx upload, creating missing hierarchy nodes and
	// collecting per-row errors. Valid rows are inserted in one transaction;
	// row failures never abort the batch.
	Import(ctx context.Context, file io.Reader, actor Actor) (*models.ImportResult, error)
}

// ===== PAPER ASSEMBLY =====

type PaperService interface {
	// Assemble renders a question paper PDF from explicit question IDs or
	// per-difficulty quotas. Underfilled quotas fail with
	// BucketUnderfilledError.
	Assemble(ctx context.Context, req *models.PaperRequest, actor Actor) ([]byte, string, error)
}

// ===== ANALYTICS =====

type AnalyticsService interface {
	Aggregate(ctx context.Context, dimension string) (*models.AnalyticsResponse, error)
	SubjectSummaries(ctx context.Context) ([]*models.SubjectSummary, error)
}

// ===== ACTIVITY LOG =====

type ActivityLogService interface {
	List(ctx context.Context, page, size int, actor Actor) (*models.ActivityLogListResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Subject() SubjectService
	Module() ModuleService
	Topic() TopicService
	Question() QuestionService
	ImportExport() ImportExportService
	Paper() PaperService
	Analytics() AnalyticsService
	ActivityLog() ActivityLogService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
