package services

import (
	"errors"

	apperrors "github.com/prepflow/practice-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidType    = errors.New("invalid question type")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")

	// Submission specific errors
	ErrAnswerShapeInvalid  = errors.New("answer shape does not match question type")
	ErrDuplicateSubmission = errors.New("question already answered")

	// Practice session errors
	ErrSessionNotFound  = errors.New("practice session not found")
	ErrSessionExhausted = errors.New("question bank exhausted")

	// AI specific errors
	ErrChatUnavailable = errors.New("chat completion provider unavailable")

	// Billing specific errors
	ErrPlanNotFound = errors.New("plan not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrPlanNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAnswerShapeInvalid) ||
		errors.Is(err, ErrQuestionInvalidType) ||
		errors.Is(err, ErrQuestionInvalidContent) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission)
}
