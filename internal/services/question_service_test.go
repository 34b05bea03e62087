package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

func newQuestionServiceForTest(f *fakeRepo) QuestionService {
	return NewQuestionService(f, testLogger(), validator.New(), nil)
}

func TestQuestionServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	svc := newQuestionServiceForTest(f)

	resp, err := svc.Create(ctx, &models.QuestionCreateRequest{
		TopicID:        topicID,
		Text:           "Explain AVL rotations.",
		Difficulty:     models.DifficultyMedium,
		CognitiveLevel: models.CognitiveUnderstand,
		COTags:         []string{"CO1", "CO2"},
	}, facultyActor(5))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Marks != 1 {
		t.Errorf("Marks = %d, want default 1", resp.Marks)
	}
	if resp.CreatedBy != 5 {
		t.Errorf("CreatedBy = %d, want 5", resp.CreatedBy)
	}
	if got := jsonToTags(resp.COTags); !reflect.DeepEqual(got, []string{"CO1", "CO2"}) {
		t.Errorf("COTags = %v, want [CO1 CO2]", got)
	}
	// The hierarchy names come back resolved.
	if resp.SubjectName != "Data Structures" || resp.ModuleTitle != "Trees" || resp.TopicName != "AVL Trees" {
		t.Errorf("hierarchy names = %q/%q/%q, want Data Structures/Trees/AVL Trees",
			resp.SubjectName, resp.ModuleTitle, resp.TopicName)
	}
	if !resp.CanEdit || !resp.CanDelete {
		t.Error("creator should be able to edit and delete their own question")
	}
}

func TestQuestionServiceCreateErrors(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "Define an AVL tree.", models.DifficultyEasy, 5)
	svc := newQuestionServiceForTest(f)

	tests := []struct {
		name    string
		req     *models.QuestionCreateRequest
		wantErr error
	}{
		{
			name: "unknown topic",
			req: &models.QuestionCreateRequest{
				TopicID: 999, Text: "Orphan?",
				Difficulty: models.DifficultyEasy, CognitiveLevel: models.CognitiveRemember,
			},
			wantErr: ErrTopicNotFound,
		},
		{
			name: "duplicate text in topic",
			req: &models.QuestionCreateRequest{
				TopicID: topicID, Text: "Define an AVL tree.",
				Difficulty: models.DifficultyEasy, CognitiveLevel: models.CognitiveRemember,
			},
			wantErr: ErrDuplicateQuestion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.req, facultyActor(5)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("invalid difficulty fails validation", func(t *testing.T) {
		_, err := svc.Create(ctx, &models.QuestionCreateRequest{
			TopicID: topicID, Text: "Bad difficulty",
			Difficulty: "Impossible", CognitiveLevel: models.CognitiveRemember,
		}, facultyActor(5))
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Create() error = %v, want ValidationErrors", err)
		}
	})
}

func TestQuestionServiceUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	questionID := seedQuestion(t, f, topicID, "Define an AVL tree.", models.DifficultyEasy, 5)
	svc := newQuestionServiceForTest(f)

	newText := "Define an AVL tree and its balance factor."

	t.Run("other faculty is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, questionID, &models.QuestionUpdateRequest{Text: &newText}, facultyActor(6))
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Fatalf("Update() error = %v, want PermissionError", err)
		}
	})

	t.Run("owner can update", func(t *testing.T) {
		resp, err := svc.Update(ctx, questionID, &models.QuestionUpdateRequest{Text: &newText}, facultyActor(5))
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.Text != newText {
			t.Errorf("Text = %q, want %q", resp.Text, newText)
		}
	})

	t.Run("admin can update any question", func(t *testing.T) {
		marks := 5
		resp, err := svc.Update(ctx, questionID, &models.QuestionUpdateRequest{Marks: &marks}, adminActor())
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.Marks != 5 {
			t.Errorf("Marks = %d, want 5", resp.Marks)
		}
		// Untouched fields survive a partial update.
		if resp.Text != newText {
			t.Errorf("Text = %q, want unchanged %q", resp.Text, newText)
		}
	})
}

func TestQuestionServiceUpdateDuplicateText(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "First question.", models.DifficultyEasy, 5)
	secondID := seedQuestion(t, f, topicID, "Second question.", models.DifficultyEasy, 5)
	svc := newQuestionServiceForTest(f)

	clash := "First question."
	if _, err := svc.Update(ctx, secondID, &models.QuestionUpdateRequest{Text: &clash}, facultyActor(5)); !errors.Is(err, ErrDuplicateQuestion) {
		t.Errorf("Update() error = %v, want ErrDuplicateQuestion", err)
	}
}

func TestQuestionServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	questionID := seedQuestion(t, f, topicID, "Define an AVL tree.", models.DifficultyEasy, 5)
	svc := newQuestionServiceForTest(f)

	t.Run("other faculty is rejected", func(t *testing.T) {
		err := svc.Delete(ctx, questionID, facultyActor(6))
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Fatalf("Delete() error = %v, want PermissionError", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := svc.Delete(ctx, questionID, facultyActor(5)); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := svc.GetByID(ctx, questionID, facultyActor(5)); !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("GetByID() after delete error = %v, want ErrQuestionNotFound", err)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		if err := svc.Delete(ctx, 999, adminActor()); !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("Delete() error = %v, want ErrQuestionNotFound", err)
		}
	})
}

func TestQuestionServiceListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	subjectID, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "Easy rotation question.", models.DifficultyEasy, 5)
	seedQuestion(t, f, topicID, "Hard rebalancing question.", models.DifficultyHard, 5)
	seedQuestion(t, f, topicID, "Another hard question.", models.DifficultyHard, 6)
	svc := newQuestionServiceForTest(f)

	hard := models.DifficultyHard

	tests := []struct {
		name      string
		params    models.ListQuestionsParams
		wantTotal int64
	}{
		{name: "no filters", params: models.ListQuestionsParams{}, wantTotal: 3},
		{name: "by difficulty", params: models.ListQuestionsParams{Difficulty: &hard}, wantTotal: 2},
		{name: "by subject", params: models.ListQuestionsParams{SubjectID: &subjectID}, wantTotal: 3},
		{name: "by search", params: models.ListQuestionsParams{Search: "rebalancing"}, wantTotal: 1},
		{
			name:      "filters combine with AND",
			params:    models.ListQuestionsParams{Difficulty: &hard, Search: "another"},
			wantTotal: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.List(ctx, tt.params, facultyActor(5))
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if resp.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", resp.Total, tt.wantTotal)
			}
		})
	}

	t.Run("ownership flags per actor", func(t *testing.T) {
		resp, err := svc.List(ctx, models.ListQuestionsParams{}, facultyActor(6))
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		for _, q := range resp.Questions {
			wantOwn := q.CreatedBy == 6
			if q.CanEdit != wantOwn || q.CanDelete != wantOwn {
				t.Errorf("question %d: CanEdit=%v CanDelete=%v, want %v for creator %d",
					q.ID, q.CanEdit, q.CanDelete, wantOwn, q.CreatedBy)
			}
		}
	})
}

func TestQuestionServiceListRejectsUnknownEnumFilter(t *testing.T) {
	ctx := context.Background()
	f := newFakeRepo()
	_, _, topicID := seedHierarchy(t, f)
	seedQuestion(t, f, topicID, "Define an AVL tree.", models.DifficultyEasy, 2)
	svc := newQuestionServiceForTest(f)

	badDifficulty := models.DifficultyLevel("Trivial")
	badCognitive := models.CognitiveLevel("Memorize")

	tests := []struct {
		name   string
		params models.ListQuestionsParams
	}{
		{name: "unknown difficulty", params: models.ListQuestionsParams{Difficulty: &badDifficulty}},
		{name: "unknown cognitive level", params: models.ListQuestionsParams{CognitiveLevel: &badCognitive}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(ctx, tt.params, adminActor())
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("List() error = %v, want ValidationErrors", err)
			}
		})
	}
}
