package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

type paperService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	institution string
}

func NewPaperService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	institution string,
) PaperService {
	return &paperService{
		repo:        repo,
		logger:      logger,
		validator:   validator,
		institution: institution,
	}
}

func (s *paperService) Assemble(ctx context.Context, req *models.PaperRequest, actor Actor) ([]byte, string, error) {
	if errs := s.validator.GetBusinessValidator().ValidatePaperRequest(req); len(errs) > 0 {
		return nil, "", errs
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrSubjectNotFound
		}
		return nil, "", fmt.Errorf("failed to get subject: %w", err)
	}

	var questions []*models.Question
	if len(req.QuestionIDs) > 0 {
		questions, err = s.selectExplicit(ctx, req, subject)
	} else {
		questions, err = s.fillBuckets(ctx, req)
	}
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err := s.renderPaper(req, subject, questions)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render paper: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return logActivity(ctx, txRepo, actor.ID, "paper.generate", map[string]any{
			"subject_id":     subject.ID,
			"title":          req.Title,
			"question_count": len(questions),
		})
	})
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("paper_%s_%s.pdf", subject.Code, time.Now().Format("20060102_150405"))

	s.logger.InfoContext(ctx, "Paper assembled",
		slog.Uint64("subject_id", uint64(subject.ID)),
		slog.Int("questions", len(questions)),
		slog.Uint64("actor_id", uint64(actor.ID)))

	return pdfBytes, filename, nil
}

// selectExplicit resolves an explicit ID list, preserving the requested
// order. Every question must exist and belong to the paper's subject.
func (s *paperService) selectExplicit(ctx context.Context, req *models.PaperRequest, subject *models.Subject) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		q, err := s.repo.Question().GetByIDWithDetails(ctx, nil, id)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrQuestionNotFound
			}
			return nil, fmt.Errorf("failed to get question %d: %w", id, err)
		}
		if q.Topic == nil || q.Topic.Module == nil || q.Topic.Module.SubjectID != subject.ID {
			return nil, fmt.Errorf("question %d: %w", id, ErrQuestionSubjectMismatch)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// fillBuckets satisfies per-difficulty quotas in the fixed Easy, Medium,
// Hard order. Each bucket draws the oldest matching questions first, so the
// same bank state always yields the same paper.
func (s *paperService) fillBuckets(ctx context.Context, req *models.PaperRequest) ([]*models.Question, error) {
	var (
		questions []*models.Question
		usedIDs   []uint
	)
	for _, difficulty := range models.DifficultyLevels {
		want := req.Counts[string(difficulty)]
		if want <= 0 {
			continue
		}

		pool, err := s.repo.Question().GetPaperPool(ctx, nil, repositories.PaperPoolFilters{
			SubjectID:  req.SubjectID,
			Difficulty: difficulty,
			CO:         req.CO,
			ExcludeIDs: usedIDs,
			Limit:      want,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load %s pool: %w", difficulty, err)
		}
		if len(pool) < want {
			return nil, &BucketUnderfilledError{
				Bucket:    difficulty,
				Requested: want,
				Available: len(pool),
			}
		}

		for _, q := range pool {
			usedIDs = append(usedIDs, q.ID)
		}
		questions = append(questions, pool...)
	}
	return questions, nil
}

func (s *paperService) renderPaper(req *models.PaperRequest, subject *models.Subject, questions []*models.Question) ([]byte, error) {
	totalMarks := 0
	for _, q := range questions {
		totalMarks += q.Marks
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(req.Title, true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, s.institution, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s (%s)", subject.Name, subject.Code), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, req.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	meta := fmt.Sprintf("Total Marks: %d", totalMarks)
	if req.DurationMin > 0 {
		meta = fmt.Sprintf("Duration: %d min    %s", req.DurationMin, meta)
	}
	if req.ExamDate != nil {
		meta = fmt.Sprintf("Date: %s    %s", req.ExamDate.Format("02 Jan 2006"), meta)
	}
	pdf.CellFormat(0, 6, meta, "", 1, "C", false, 0, "")

	pdf.SetLineWidth(0.4)
	pdf.Line(10, pdf.GetY()+2, 200, pdf.GetY()+2)
	pdf.Ln(8)

	for i, q := range questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Q%d. [%d marks, %s]", i+1, q.Marks, q.Difficulty),
			"", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, q.Text, "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
