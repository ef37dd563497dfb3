package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories
// =========================================================================

// ErrNotFound wraps a repository miss for the given domain.
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus is returned for a lifecycle transition the current status does not allow.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrDatabase wraps a non-retryable persistence failure.
func ErrDatabase(err error, domain string) *AppError {
	return Wrap(err, CodeDatabaseError, domain, "Database operation failed", http.StatusInternalServerError)
}

// ErrTransientStore wraps a persistence failure that is safe to retry.
func ErrTransientStore(err error, domain string) *AppError {
	return Wrap(err, CodeTransientStoreError, domain, "Temporary storage failure, retry the request", http.StatusServiceUnavailable)
}

// =========================================================================
// Predefined errors
// =========================================================================

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// --- Projects ---

var ErrProjectNotFound = New(
	CodeNotFound,
	"project",
	"Project not found",
	http.StatusNotFound,
)

var ErrProjectCancelled = New(
	CodeProjectCancelled,
	"project",
	"Project is cancelled",
	http.StatusConflict,
)

// ErrProjectPublishedElsewhere guards a published project against reassignment.
var ErrProjectPublishedElsewhere = New(
	CodePublishedElsewhere,
	"project",
	"Project is already published to a different assignee",
	http.StatusConflict,
)

// --- Assignment ---

var ErrInvalidAssignmentTarget = New(
	CodeInvalidAssignmentTarget,
	"assignment",
	"Exactly one of team or individual must be provided",
	http.StatusBadRequest,
)

// ErrInvariantViolation is reported when stored assignment columns do not
// form one of the three legal shapes. Details are never shown to clients.
var ErrInvariantViolation = New(
	CodeInvariantViolation,
	"assignment",
	"Project assignment state is inconsistent",
	http.StatusInternalServerError,
)

var ErrAssigneeNotFound = New(
	CodeNotFound,
	"assignment",
	"Assignee not found",
	http.StatusNotFound,
)

// --- SOW ---

var ErrNoDraftExists = New(
	CodeNoDraftExists,
	"sow",
	"No SOW draft exists for this project",
	http.StatusConflict,
)

// --- Notifications ---

var ErrNotificationNotFound = New(
	CodeNotFound,
	"notification",
	"Notification not found",
	http.StatusNotFound,
)

var ErrRecipientNotFound = New(
	CodeNotFound,
	"notification",
	"Recipient user not found",
	http.StatusNotFound,
)

// --- Teams, users, categories, attachments ---

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrTeamNotFound = New(
	CodeNotFound,
	"team",
	"Team not found",
	http.StatusNotFound,
)

var ErrTeamLeaderNotFound = New(
	CodeNotFound,
	"team",
	"Team has no leader on record",
	http.StatusNotFound,
)

var ErrCategoryNotFound = New(
	CodeNotFound,
	"category",
	"Category not found",
	http.StatusNotFound,
)

var ErrAttachmentNotFound = New(
	CodeNotFound,
	"attachment",
	"Attachment not found",
	http.StatusNotFound,
)
