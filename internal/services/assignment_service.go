package services

import (
	"context"
	"errors"

	"finley_backend/internal/logger"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AssignmentService interface {
	Assign(ctx context.Context, db *gorm.DB, projectID string, target models.AssignmentTarget) (*models.Project, error)
	Unassign(ctx context.Context, db *gorm.DB, projectID string) (*models.Project, error)
	// Apply writes a onto a project already locked by tx. It does not commit.
	Apply(ctx context.Context, tx *gorm.DB, project *models.Project, a models.Assignment) error
	// CheckAssignee verifies that the team behind a exists, or that the
	// individual is active talent.
	CheckAssignee(ctx context.Context, db *gorm.DB, a models.Assignment) error
}

type AssignmentServiceImpl struct {
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
	teamRepo    repositories.TeamRepository
}

func NewAssignmentService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
) AssignmentService {
	return &AssignmentServiceImpl{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		teamRepo:    teamRepo,
	}
}

func (s *AssignmentServiceImpl) Assign(ctx context.Context, db *gorm.DB, projectID string, target models.AssignmentTarget) (*models.Project, error) {
	a, err := target.Resolve()
	if err != nil {
		return nil, apperrors.ErrInvalidAssignmentTarget.WithError(err)
	}
	return s.write(ctx, db, projectID, a)
}

func (s *AssignmentServiceImpl) Unassign(ctx context.Context, db *gorm.DB, projectID string) (*models.Project, error) {
	return s.write(ctx, db, projectID, models.NoAssignment())
}

func (s *AssignmentServiceImpl) write(ctx context.Context, db *gorm.DB, projectID string, a models.Assignment) (*models.Project, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "assignment")
	}
	defer tx.Rollback()

	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "assignment")
	}
	current, err := readAssignment(ctx, project)
	if err != nil {
		return nil, err
	}

	switch project.Status {
	case models.ProjectStatusCancelled:
		return nil, apperrors.ErrProjectCancelled
	case models.ProjectStatusPublished:
		if !current.Equal(a) {
			return nil, apperrors.ErrProjectPublishedElsewhere
		}
	}

	if err := s.CheckAssignee(ctx, tx, a); err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, tx, project, a); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(err, "assignment")
	}

	logger.CtxInfo(ctx, "Project assignment changed",
		"project_id", projectID,
		"from", current.String(),
		"to", a.String(),
	)
	return project, nil
}

func (s *AssignmentServiceImpl) Apply(ctx context.Context, tx *gorm.DB, project *models.Project, a models.Assignment) error {
	project.SetAssignment(a)
	if err := s.projectRepo.Save(tx, project); err != nil {
		return storeError(err, "assignment")
	}
	return nil
}

func (s *AssignmentServiceImpl) CheckAssignee(ctx context.Context, db *gorm.DB, a models.Assignment) error {
	if userID, ok := a.Individual(); ok {
		user, err := s.userRepo.FindByID(db, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrAssigneeNotFound.WithDetails(map[string]string{"individual": userID})
			}
			return storeError(err, "assignment")
		}
		if !user.Assignable() {
			return apperrors.ErrInvalidOperation("assignment", "Assignee must be active talent").
				WithDetails(map[string]string{"individual": userID})
		}
	}
	if teamID, ok := a.Team(); ok {
		if _, err := s.teamRepo.FindByID(db, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return apperrors.ErrAssigneeNotFound.WithDetails(map[string]string{"team": teamID})
			}
			return storeError(err, "assignment")
		}
	}
	return nil
}
