package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

func newPaperServiceForTest(f *fakeRepo) PaperService {
	return NewPaperService(f, testLogger(), validator.New(), "Test Institute of Technology")
}

func TestPaperServiceAssembleWithCounts(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	subjectID, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "Easy one.", models.DifficultyEasy, 1)
	seedQuestion(t, f, topicID, "Easy two.", models.DifficultyEasy, 1)
	seedQuestion(t, f, topicID, "Medium one.", models.DifficultyMedium, 1)
	seedQuestion(t, f, topicID, "Hard one.", models.DifficultyHard, 1)
	svc := newPaperServiceForTest(f)

	pdf, filename, err := svc.Assemble(ctx, &models.PaperRequest{
		SubjectID:   subjectID,
		Title:       "Midterm Examination",
		DurationMin: 90,
		Counts:      map[string]int{"Easy": 2, "Hard": 1},
	}, facultyActor(3))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", pdf[:min(8, len(pdf))])
	}
	if filename == "" {
		t.Error("Assemble() returned empty filename")
	}

	entries, _, err := f.ActivityLog().List(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "paper.generate" {
		t.Errorf("activity log = %+v, want one paper.generate entry", entries)
	}
}

func TestPaperServiceAssembleUnderfilledBucket(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	subjectID, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "The only hard one.", models.DifficultyHard, 1)
	svc := newPaperServiceForTest(f)

	_, _, err := svc.Assemble(ctx, &models.PaperRequest{
		SubjectID: subjectID,
		Title:     "Final Examination",
		Counts:    map[string]int{"Hard": 3},
	}, facultyActor(3))

	var underfilled *BucketUnderfilledError
	if !errors.As(err, &underfilled) {
		t.Fatalf("Assemble() error = %v, want BucketUnderfilledError", err)
	}
	if underfilled.Bucket != models.DifficultyHard || underfilled.Requested != 3 || underfilled.Available != 1 {
		t.Errorf("underfilled = %+v, want {Hard 3 1}", underfilled)
	}
}

func TestPaperServiceAssembleExplicitIDs(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	subjectID, _, topicID := seedHierarchy(t, f)
	q1 := seedQuestion(t, f, topicID, "First.", models.DifficultyEasy, 1)
	q2 := seedQuestion(t, f, topicID, "Second.", models.DifficultyMedium, 1)
	svc := newPaperServiceForTest(f)

	pdf, _, err := svc.Assemble(ctx, &models.PaperRequest{
		SubjectID:   subjectID,
		Title:       "Quiz 1",
		QuestionIDs: []uint{q2, q1},
	}, facultyActor(3))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}

	t.Run("unknown question", func(t *testing.T) {
		_, _, err := svc.Assemble(ctx, &models.PaperRequest{
			SubjectID:   subjectID,
			Title:       "Quiz 2",
			QuestionIDs: []uint{999},
		}, facultyActor(3))
		if !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("Assemble() error = %v, want ErrQuestionNotFound", err)
		}
	})
}

func TestPaperServiceAssembleRejectsForeignQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	foreign := seedQuestion(t, f, topicID, "Belongs to CS101.", models.DifficultyEasy, 1)

	other := &models.Subject{Code: "MA101", Name: "Calculus"}
	if err := f.Subject().Create(ctx, nil, other); err != nil {
		t.Fatalf("seed subject: %v", err)
	}

	svc := newPaperServiceForTest(f)
	_, _, err := svc.Assemble(ctx, &models.PaperRequest{
		SubjectID:   other.ID,
		Title:       "Quiz 1",
		QuestionIDs: []uint{foreign},
	}, facultyActor(3))
	if !errors.Is(err, ErrQuestionSubjectMismatch) {
		t.Errorf("Assemble() error = %v, want ErrQuestionSubjectMismatch", err)
	}
}

func TestPaperServiceAssembleValidation(t *testing.T) {
	f := newFakeRepo()
	subjectID, _, _ := seedHierarchy(t, f)
	svc := newPaperServiceForTest(f)

	tests := []struct {
		name string
		req  *models.PaperRequest
	}{
		{
			name: "neither ids nor counts",
			req:  &models.PaperRequest{SubjectID: subjectID, Title: "Quiz"},
		},
		{
			name: "both ids and counts",
			req: &models.PaperRequest{
				SubjectID: subjectID, Title: "Quiz",
				QuestionIDs: []uint{1}, Counts: map[string]int{"Easy": 1},
			},
		},
		{
			name: "unknown bucket",
			req: &models.PaperRequest{
				SubjectID: subjectID, Title: "Quiz",
				Counts: map[string]int{"Trivial": 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Assemble(context.Background(), tt.req, facultyActor(3))
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("Assemble() error = %v, want ValidationErrors", err)
			}
		})
	}
}
