package services

import (
	"context"
	"errors"

	"finley_backend/internal/logger"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/pkg/apperrors"
)

// storeError translates repository sentinels and store failures into AppErrors.
func storeError(err error, domain string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrProjectNotFound):
		return apperrors.ErrProjectNotFound.WithError(err)
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound.WithError(err)
	case errors.Is(err, repositories.ErrTeamNotFound):
		return apperrors.ErrTeamNotFound.WithError(err)
	case errors.Is(err, repositories.ErrTeamLeaderNotFound):
		return apperrors.ErrTeamLeaderNotFound.WithError(err)
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound.WithError(err)
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotificationNotFound.WithError(err)
	case errors.Is(err, repositories.ErrAttachmentNotFound):
		return apperrors.ErrAttachmentNotFound.WithError(err)
	case errors.Is(err, repositories.ErrSOWNotFound):
		return apperrors.ErrNoDraftExists.WithError(err)
	case errors.Is(err, models.ErrInvalidAssignmentTarget):
		return apperrors.ErrInvalidAssignmentTarget.WithError(err)
	case errors.Is(err, models.ErrAssignmentInvariant):
		return apperrors.ErrInvariantViolation.WithError(err)
	case repositories.IsTransient(err):
		return apperrors.ErrTransientStore(err, domain)
	default:
		return apperrors.ErrDatabase(err, domain)
	}
}

// readAssignment validates the stored assignment shape. A violation is a defect:
// it is logged at error level and the caller must refuse the operation.
func readAssignment(ctx context.Context, project *models.Project) (models.Assignment, error) {
	a, err := project.Assignment()
	if err != nil {
		logger.CtxError(ctx, "Assignment invariant violated",
			"project_id", project.ID,
			"assigned_type", project.AssignedType,
			"error", err.Error(),
		)
		return models.Assignment{}, apperrors.ErrInvariantViolation.WithError(err)
	}
	return a, nil
}
