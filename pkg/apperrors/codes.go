package apperrors

// ErrorCode is the machine-readable part of an AppError.
type ErrorCode string

// Generic codes
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Project workflow codes
const (
	CodeInvalidAssignmentTarget ErrorCode = "INVALID_ASSIGNMENT_TARGET"
	CodeProjectCancelled        ErrorCode = "PROJECT_CANCELLED"
	CodePublishedElsewhere      ErrorCode = "PUBLISHED_ELSEWHERE"
	CodeNoDraftExists           ErrorCode = "NO_DRAFT_EXISTS"
	CodeInvariantViolation      ErrorCode = "INVARIANT_VIOLATION"
	CodeTransientStoreError     ErrorCode = "TRANSIENT_STORE_ERROR"
)
