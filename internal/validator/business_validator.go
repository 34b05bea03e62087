package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errors
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *models.QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateTags("co_tags", req.COTags)...)
	errors = append(errors, bv.validateTags("po_tags", req.POTags)...)

	return errors
}

// ValidateQuestionUpdate validates question update business rules
func (bv *BusinessValidator) ValidateQuestionUpdate(req *models.QuestionUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateTags("co_tags", req.COTags)...)
	errors = append(errors, bv.validateTags("po_tags", req.POTags)...)

	return errors
}

// ValidatePaperRequest validates paper assembly criteria: exactly one of the
// explicit question list or the per-difficulty quotas must be supplied, and
// quota keys must be known difficulty levels.
func (bv *BusinessValidator) ValidatePaperRequest(req *models.PaperRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	hasIDs := len(req.QuestionIDs) > 0
	hasCounts := len(req.Counts) > 0
	if hasIDs == hasCounts {
		errors = append(errors, ValidationError{
			Field:   "question_ids",
			Message: "exactly one of question_ids or counts must be provided",
			Rule:    "business_logic",
		})
	}

	for bucket, count := range req.Counts {
		if !models.DifficultyLevel(bucket).Valid() {
			errors = append(errors, ValidationError{
				Field:   "counts",
				Message: fmt.Sprintf("unknown difficulty bucket %q", bucket),
				Value:   bucket,
				Rule:    "difficulty_level",
			})
		}
		if count < 0 {
			errors = append(errors, ValidationError{
				Field:   "counts",
				Message: fmt.Sprintf("bucket %q count must not be negative", bucket),
				Value:   count,
				Rule:    "min",
			})
		}
	}

	return errors
}

func (bv *BusinessValidator) validateTags(field string, tags []string) ValidationErrors {
	var errors ValidationErrors

	if len(tags) > 10 {
		errors = append(errors, ValidationError{
			Field:   field,
			Message: "cannot have more than 10 tags",
			Value:   len(tags),
			Rule:    "business_logic",
		})
	}

	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "tag cannot be empty",
				Value:   tag,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		return models.DifficultyLevel(fl.Field().String()).Valid()
	})

	bv.validate.RegisterValidation("cognitive_level", func(fl validator.FieldLevel) bool {
		return models.CognitiveLevel(fl.Field().String()).Valid()
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}

func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "difficulty_level":
		return "must be a valid difficulty level"
	case "cognitive_level":
		return "must be a valid cognitive level"
	case "user_role":
		return "must be a valid role"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
