package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/question-bank-service/internal/events"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

const importSheetName = "Questions"

// exportHeaders is the fixed workbook column layout. Import accepts the same
// layout, so an exported file re-imports without edits.
var exportHeaders = []string{
	"Subject", "Module", "Topic", "Question Text",
	"Marks", "Difficulty", "Cognitive Level", "CO", "PO",
}

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    *events.Publisher
}

func NewImportExportService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher *events.Publisher,
) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    publisher,
	}
}

// ===== EXPORT =====

func (s *importExportService) Export(ctx context.Context, params models.ListQuestionsParams) ([]byte, string, error) {
	if err := s.validator.Validate(&params); err != nil {
		return nil, "", err
	}

	filters := repositories.QuestionFilters{
		SubjectID:      params.SubjectID,
		ModuleID:       params.ModuleID,
		TopicID:        params.TopicID,
		Difficulty:     params.Difficulty,
		CognitiveLevel: params.CognitiveLevel,
		CO:             params.CO,
		PO:             params.PO,
		Search:         params.Search,
	}

	questions, _, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load questions for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), importSheetName)

	if err := f.SetSheetRow(importSheetName, "A1", &exportHeaders); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, q := range questions {
		row := []interface{}{
			"", "", "",
			q.Text,
			q.Marks,
			string(q.Difficulty),
			string(q.CognitiveLevel),
			strings.Join(jsonToTags(q.COTags), ","),
			strings.Join(jsonToTags(q.POTags), ","),
		}
		if q.Topic != nil {
			row[2] = q.Topic.Name
			if q.Topic.Module != nil {
				row[1] = q.Topic.Module.Title
				if q.Topic.Module.Subject != nil {
					row[0] = q.Topic.Module.Subject.Name
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(importSheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("questions_export_%s.xlsx", time.Now().Format("20060102_150405"))

	s.logger.InfoContext(ctx, "Questions exported",
		slog.Int("count", len(questions)), slog.String("filename", filename))

	return buf.Bytes(), filename, nil
}

// ===== IMPORT =====

// importRow is one parsed and validated workbook row.
type importRow struct {
	rowNum         int
	subject        string
	module         string
	topic          string
	text           string
	marks          int
	difficulty     models.DifficultyLevel
	cognitiveLevel models.CognitiveLevel
	coTags         []string
	poTags         []string
}

func (s *importExportService) Import(ctx context.Context, file io.Reader, actor Actor) (*models.ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &models.ImportResult{}, nil
	}

	result := &models.ImportResult{TotalRows: len(rows) - 1}

	var parsed []importRow
	seen := make(map[string]int) // topic+text -> row, duplicates inside the file
	for i, cells := range rows[1:] {
		rowNum := i + 2
		row, rowErr := parseImportRow(rowNum, cells)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		dupKey := row.subject + "\x00" + row.module + "\x00" + row.topic + "\x00" + row.text
		if firstRow, ok := seen[dupKey]; ok {
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:    rowNum,
				Reason: fmt.Sprintf("duplicate of row %d", firstRow),
			})
			continue
		}
		seen[dupKey] = rowNum
		parsed = append(parsed, row)
	}

	if len(parsed) == 0 {
		return result, nil
	}

	// Hierarchy resolution and question inserts share one transaction, so a
	// failed batch never leaves half-created subjects behind.
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		resolver := newHierarchyResolver(txRepo)

		var questions []*models.Question
		for _, row := range parsed {
			topicID, err := resolver.resolveTopic(ctx, row.subject, row.module, row.topic)
			if err != nil {
				return err
			}

			exists, err := txRepo.Question().ExistsByTextInTopic(ctx, nil, topicID, row.text, nil)
			if err != nil {
				return fmt.Errorf("failed to check question text: %w", err)
			}
			if exists {
				result.Errors = append(result.Errors, models.ImportRowError{
					Row:    row.rowNum,
					Reason: "question already exists in topic",
				})
				continue
			}

			questions = append(questions, &models.Question{
				TopicID:        topicID,
				Text:           row.text,
				Marks:          row.marks,
				Difficulty:     row.difficulty,
				CognitiveLevel: row.cognitiveLevel,
				COTags:         tagsToJSON(row.coTags),
				POTags:         tagsToJSON(row.poTags),
				CreatedBy:      actor.ID,
			})
		}

		if len(questions) > 0 {
			if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
				return fmt.Errorf("failed to insert imported questions: %w", err)
			}
		}
		result.Created = len(questions)

		return logActivity(ctx, txRepo, actor.ID, "question.import", map[string]any{
			"total_rows": result.TotalRows,
			"created":    result.Created,
			"failed":     len(result.Errors),
		})
	})
	if err != nil {
		return nil, err
	}

	if result.Created > 0 && s.events != nil {
		if err := s.events.PublishQuestionEvent(events.QuestionEvent{
			Type:    "imported",
			Count:   result.Created,
			ActorID: actor.ID,
		}); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish import event",
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "Questions imported",
		slog.Int("total_rows", result.TotalRows),
		slog.Int("created", result.Created),
		slog.Int("failed", len(result.Errors)),
		slog.Uint64("actor_id", uint64(actor.ID)))

	return result, nil
}

func parseImportRow(rowNum int, cells []string) (importRow, *models.ImportRowError) {
	fail := func(reason string) (importRow, *models.ImportRowError) {
		return importRow{}, &models.ImportRowError{Row: rowNum, Reason: reason}
	}

	get := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}

	row := importRow{
		rowNum:  rowNum,
		subject: get(0),
		module:  get(1),
		topic:   get(2),
		text:    get(3),
		marks:   1,
	}

	switch {
	case row.subject == "":
		return fail("subject is required")
	case row.module == "":
		return fail("module is required")
	case row.topic == "":
		return fail("topic is required")
	case row.text == "":
		return fail("question text is required")
	}

	if raw := get(4); raw != "" {
		marks, err := strconv.Atoi(raw)
		if err != nil || marks < 1 || marks > 100 {
			return fail(fmt.Sprintf("invalid marks %q", raw))
		}
		row.marks = marks
	}

	difficulty := models.DifficultyLevel(get(5))
	if !difficulty.Valid() {
		return fail(fmt.Sprintf("invalid difficulty %q", get(5)))
	}
	row.difficulty = difficulty

	cognitive := models.CognitiveLevel(get(6))
	if !cognitive.Valid() {
		return fail(fmt.Sprintf("invalid cognitive level %q", get(6)))
	}
	row.cognitiveLevel = cognitive

	row.coTags = splitTags(get(7))
	row.poTags = splitTags(get(8))

	return row, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// hierarchyResolver caches Subject/Module/Topic lookups for one import run,
// creating missing nodes on first reference.
type hierarchyResolver struct {
	repo     repositories.Repository
	subjects map[string]*models.Subject
	modules  map[string]*models.Module // subjectID \x00 title
	topics   map[string]uint           // moduleID \x00 name
}

func newHierarchyResolver(repo repositories.Repository) *hierarchyResolver {
	return &hierarchyResolver{
		repo:     repo,
		subjects: make(map[string]*models.Subject),
		modules:  make(map[string]*models.Module),
		topics:   make(map[string]uint),
	}
}

func (r *hierarchyResolver) resolveTopic(ctx context.Context, subjectName, moduleTitle, topicName string) (uint, error) {
	subject, err := r.resolveSubject(ctx, subjectName)
	if err != nil {
		return 0, err
	}
	module, err := r.resolveModule(ctx, subject, moduleTitle)
	if err != nil {
		return 0, err
	}

	key := fmt.Sprintf("%d\x00%s", module.ID, topicName)
	if id, ok := r.topics[key]; ok {
		return id, nil
	}

	topic, err := r.repo.Topic().GetByModuleAndName(ctx, nil, module.ID, topicName)
	if err == nil {
		r.topics[key] = topic.ID
		return topic.ID, nil
	}
	if !isNotFound(err) {
		return 0, fmt.Errorf("failed to look up topic %q: %w", topicName, err)
	}

	topic = &models.Topic{ModuleID: module.ID, Name: topicName}
	if err := r.repo.Topic().Create(ctx, nil, topic); err != nil {
		return 0, fmt.Errorf("failed to create topic %q: %w", topicName, err)
	}
	r.topics[key] = topic.ID
	return topic.ID, nil
}

func (r *hierarchyResolver) resolveSubject(ctx context.Context, name string) (*models.Subject, error) {
	if s, ok := r.subjects[name]; ok {
		return s, nil
	}

	all, err := r.repo.Subject().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	for _, s := range all {
		if s.Name == name || s.Code == name {
			r.subjects[name] = s
			return s, nil
		}
	}

	subject := &models.Subject{Code: name, Name: name}
	if err := r.repo.Subject().Create(ctx, nil, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject %q: %w", name, err)
	}
	r.subjects[name] = subject
	return subject, nil
}

func (r *hierarchyResolver) resolveModule(ctx context.Context, subject *models.Subject, title string) (*models.Module, error) {
	key := fmt.Sprintf("%d\x00%s", subject.ID, title)
	if m, ok := r.modules[key]; ok {
		return m, nil
	}

	existing, err := r.repo.Module().GetBySubject(ctx, nil, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	nextNo := 1
	for _, m := range existing {
		if m.Title == title {
			r.modules[key] = m
			return m, nil
		}
		if m.ModuleNo >= nextNo {
			nextNo = m.ModuleNo + 1
		}
	}

	module := &models.Module{SubjectID: subject.ID, ModuleNo: nextNo, Title: title}
	if err := r.repo.Module().Create(ctx, nil, module); err != nil {
		return nil, fmt.Errorf("failed to create module %q: %w", title, err)
	}
	r.modules[key] = module
	return module, nil
}
