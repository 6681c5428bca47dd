package response

import "fmt"

// Generic error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// Workflow error codes
const (
	ErrCodeCapacityExceeded    = "CAPACITY_EXCEEDED"
	ErrCodeDuplicateAssignment = "DUPLICATE_ASSIGNMENT"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeSlotOccupied        = "SLOT_OCCUPIED"
	ErrCodeInvalidRange        = "INVALID_RANGE"
	ErrCodeSignMismatch        = "SIGN_MISMATCH"
	ErrCodeRoundInProgress     = "ROUND_IN_PROGRESS"
)

// AppError is the error type returned by the service layer.
// Details carries the id of the entity the failure is about.
type AppError struct {
	Code      string
	Message   string
	Details   string
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches AppErrors by code so callers can use errors.Is with a sentinel-like value
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: code == ErrCodeSlotOccupied || code == ErrCodeRoundInProgress,
	}
}

func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

func NewForbiddenError(message, details string) *AppError {
	return NewAppError(ErrCodeForbidden, message, details)
}

func NewInternalError(message, details string) *AppError {
	return NewAppError(ErrCodeInternal, message, details)
}

func NewCapacityExceededError(requestID string) *AppError {
	return NewAppError(ErrCodeCapacityExceeded, "Project request has no remaining capacity", requestID)
}

func NewDuplicateAssignmentError(requestID string) *AppError {
	return NewAppError(ErrCodeDuplicateAssignment, "Freelancer already holds an assignment for this request", requestID)
}

func NewInvalidTransitionError(entityID, from, to string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, fmt.Sprintf("Cannot transition from %s to %s", from, to), entityID)
}

func NewSlotOccupiedError(slotKey string) *AppError {
	return NewAppError(ErrCodeSlotOccupied, "Version slot already holds an active submission", slotKey)
}

func NewInvalidRangeError(message, details string) *AppError {
	return NewAppError(ErrCodeInvalidRange, message, details)
}

func NewSignMismatchError(message, details string) *AppError {
	return NewAppError(ErrCodeSignMismatch, message, details)
}

func NewRoundInProgressError(roundKey string) *AppError {
	return NewAppError(ErrCodeRoundInProgress, "Settlement round is being processed by another run", roundKey)
}
