package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

// ValidationErrors is re-exported so handlers can match validation failures
// without importing the validator package directly.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors mapped to HTTP codes at the handler boundary.
var (
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password so login failures reveal nothing about which it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound     = errors.New("user not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrQuestionNotFound = errors.New("question not found")

	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateSubject  = errors.New("subject code already exists")
	ErrDuplicateModule   = errors.New("module number already exists for subject")
	ErrDuplicateTopic    = errors.New("topic already exists in module")
	ErrDuplicateQuestion = errors.New("an identical question already exists in this topic")

	ErrQuestionSubjectMismatch = errors.New("question does not belong to the paper subject")
)

// UnknownDimensionError rejects an analytics dimension outside the supported
// set.
type UnknownDimensionError struct {
	Dimension string
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("unknown analytics dimension %q", e.Dimension)
}

// PermissionError carries the denied actor, resource, and action.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// DependentsExistError rejects hierarchy deletion while children remain. The
// rule is uniform across subjects, modules and topics: remove the children
// first.
type DependentsExistError struct {
	Resource  string
	ID        uint
	Dependent string
}

func (e *DependentsExistError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: %s still exist", e.Resource, e.ID, e.Dependent)
}

// BucketUnderfilledError reports a paper-assembly quota that the question
// pool cannot satisfy.
type BucketUnderfilledError struct {
	Bucket    models.DifficultyLevel
	Requested int
	Available int
}

func (e *BucketUnderfilledError) Error() string {
	return fmt.Sprintf("bucket %s underfilled: requested %d, only %d available", e.Bucket, e.Requested, e.Available)
}
