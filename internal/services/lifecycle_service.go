package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"finley_backend/internal/logger"
	"finley_backend/internal/metrics"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"
	"finley_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LifecycleService interface {
	Submit(ctx context.Context, db *gorm.DB, clientID string, req *dto.SubmitProjectRequest) (*dto.ProjectResponse, error)
	GetProject(ctx context.Context, db *gorm.DB, caller Caller, projectID string) (*dto.ProjectResponse, error)
	Review(ctx context.Context, db *gorm.DB, projectID, reviewerID string, req *dto.ReviewRequest) (*dto.ProjectResponse, error)
	// Resubmit applies the client's edits, if any, and moves NEEDS_UPDATE back to SUBMITTED.
	Resubmit(ctx context.Context, db *gorm.DB, projectID, clientID string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Draft(ctx context.Context, db *gorm.DB, projectID, authorID, body string) (*dto.SOWResponse, error)
	GenerateDraft(ctx context.Context, db *gorm.DB, projectID, authorID string) (*dto.SOWResponse, error)
	// FinalizeAndSend publishes the latest SOW, binds the assignee and marks the
	// project SENT in one transaction, then notifies the assignee outside it.
	FinalizeAndSend(ctx context.Context, db *gorm.DB, projectID string, req *dto.FinalizeRequest) (*dto.FinalizeResponse, error)
	Publish(ctx context.Context, db *gorm.DB, projectID string) (*dto.ProjectResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, projectID, reason string) (*dto.ProjectResponse, error)
}

type LifecycleServiceImpl struct {
	projectRepo  repositories.ProjectRepository
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	reviewRepo   repositories.ReviewRepository
	sowRepo      repositories.SOWRepository

	sows          SOWService
	assignments   AssignmentService
	teams         TeamService
	notifications NotificationService
	metrics       *metrics.Recorder
}

func NewLifecycleService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	categoryRepo repositories.CategoryRepository,
	reviewRepo repositories.ReviewRepository,
	sowRepo repositories.SOWRepository,
	sows SOWService,
	assignments AssignmentService,
	teams TeamService,
	notifications NotificationService,
	rec *metrics.Recorder,
) LifecycleService {
	return &LifecycleServiceImpl{
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		categoryRepo:  categoryRepo,
		reviewRepo:    reviewRepo,
		sowRepo:       sowRepo,
		sows:          sows,
		assignments:   assignments,
		teams:         teams,
		notifications: notifications,
		metrics:       rec,
	}
}

// ==========================
// Intake
// ==========================

func (s *LifecycleServiceImpl) Submit(ctx context.Context, db *gorm.DB, clientID string, req *dto.SubmitProjectRequest) (*dto.ProjectResponse, error) {
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatusSubmitted,
		ClientID:    &clientID,
	}
	project.SetAssignment(models.NoAssignment())

	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.categoryRepo.FindByID(db, *req.CategoryID); err != nil {
			return nil, storeError(err, "project")
		}
		project.CategoryID = req.CategoryID
	}
	if len(req.Answers) > 0 {
		raw, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, apperrors.NewBadRequestError("answers must be a JSON object")
		}
		project.Answers = datatypes.JSON(raw)
	}

	if err := s.projectRepo.Create(db, project); err != nil {
		s.observe("submit", err)
		return nil, storeError(err, "project")
	}
	s.observe("submit", nil)
	logger.CtxInfo(ctx, "Project submitted", "project_id", project.ID, "client_id", clientID)

	s.notifyAdmins(ctx, db, project, "New project request", fmt.Sprintf("%s submitted a new project: %s", clientLabel(db, s.userRepo, clientID), project.Name))

	return s.detailed(ctx, db, project.ID)
}

func (s *LifecycleServiceImpl) GetProject(ctx context.Context, db *gorm.DB, caller Caller, projectID string) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindDetailed(db, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	a, err := readAssignment(ctx, project)
	if err != nil {
		return nil, err
	}

	visible, err := canView(db, s.userRepo, caller, project, a)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if !visible {
		// indistinguishable from a missing project
		return nil, apperrors.ErrProjectNotFound
	}

	current, err := s.sows.Latest(ctx, db, projectID)
	if err != nil {
		return nil, err
	}
	return projectResponse(project, a, current), nil
}

// ==========================
// Review
// ==========================

func (s *LifecycleServiceImpl) Review(ctx context.Context, db *gorm.DB, projectID, reviewerID string, req *dto.ReviewRequest) (*dto.ProjectResponse, error) {
	decision := models.ReviewDecision(req.Decision)

	var next models.ProjectStatus
	switch decision {
	case models.ReviewApproved:
		next = models.ProjectStatusUnderReview
	case models.ReviewChangesRequested:
		next = models.ProjectStatusNeedsUpdate
	default:
		return nil, apperrors.NewBadRequestError("decision must be APPROVED or CHANGES_REQUESTED")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "project")
	}
	defer tx.Rollback()

	project, err := s.lockForTransition(ctx, tx, projectID, next)
	if err != nil {
		s.observe("review", err)
		return nil, err
	}

	if err := s.reviewRepo.Create(tx, &models.AdminReview{
		ProjectID:  projectID,
		ReviewerID: reviewerID,
		Decision:   decision,
		Comments:   req.Comments,
	}); err != nil {
		return nil, storeError(err, "project")
	}

	project.Status = next
	if err := s.projectRepo.Save(tx, project); err != nil {
		return nil, storeError(err, "project")
	}
	if err := tx.Commit().Error; err != nil {
		s.observe("review", err)
		return nil, storeError(err, "project")
	}
	s.observe("review", nil)
	logger.CtxInfo(ctx, "Project reviewed", "project_id", projectID, "decision", decision, "status", next)

	if decision == models.ReviewChangesRequested && project.ClientID != nil {
		message := fmt.Sprintf("Your project %q needs updates before it can move forward.", project.Name)
		if req.Comments != "" {
			message += " Reviewer notes: " + req.Comments
		}
		_, err := s.notifications.Emit(ctx, db, *project.ClientID, models.NotificationProjectUpdate,
			"Changes requested", message, WithData(map[string]interface{}{"project_id": projectID}))
		if err != nil {
			logger.CtxWithError(ctx, "Failed to notify client about review", err, "project_id", projectID)
		}
	}

	return s.detailed(ctx, db, projectID)
}

func (s *LifecycleServiceImpl) Resubmit(ctx context.Context, db *gorm.DB, projectID, clientID string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "project")
	}
	defer tx.Rollback()

	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if project.ClientID == nil || *project.ClientID != clientID {
		return nil, apperrors.ErrProjectNotFound
	}
	if project.Status != models.ProjectStatusNeedsUpdate {
		return nil, apperrors.ErrInvalidStatus("project", fmt.Sprintf("cannot resubmit a project in status %s", project.Status))
	}

	if req != nil {
		if err := applyProjectEdits(project, req); err != nil {
			return nil, err
		}
	}
	project.Status = models.ProjectStatusSubmitted
	if err := s.projectRepo.Save(tx, project); err != nil {
		return nil, storeError(err, "project")
	}
	if err := tx.Commit().Error; err != nil {
		s.observe("resubmit", err)
		return nil, storeError(err, "project")
	}
	s.observe("resubmit", nil)
	logger.CtxInfo(ctx, "Project resubmitted", "project_id", projectID)

	s.notifyAdmins(ctx, db, project, "Project resubmitted", fmt.Sprintf("Project %q was updated and resubmitted.", project.Name))
	return s.detailed(ctx, db, projectID)
}

func applyProjectEdits(project *models.Project, req *dto.UpdateProjectRequest) error {
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Answers != nil {
		raw, err := json.Marshal(req.Answers)
		if err != nil {
			return apperrors.NewBadRequestError("answers must be a JSON object")
		}
		project.Answers = datatypes.JSON(raw)
	}
	return nil
}

// ==========================
// SOW drafting
// ==========================

func (s *LifecycleServiceImpl) Draft(ctx context.Context, db *gorm.DB, projectID, authorID, body string) (*dto.SOWResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "sow")
	}
	defer tx.Rollback()

	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "sow")
	}
	switch project.Status {
	case models.ProjectStatusCancelled:
		return nil, apperrors.ErrProjectCancelled
	case models.ProjectStatusPublished:
		return nil, apperrors.ErrInvalidStatus("sow", "published projects no longer accept SOW drafts")
	}

	sow, err := s.sows.SaveDraft(ctx, tx, projectID, authorID, body)
	if err != nil {
		return nil, err
	}

	if project.Status == models.ProjectStatusSubmitted {
		project.Status = models.ProjectStatusUnderReview
		if err := s.projectRepo.Save(tx, project); err != nil {
			return nil, storeError(err, "sow")
		}
	}
	if err := tx.Commit().Error; err != nil {
		s.observe("draft", err)
		return nil, storeError(err, "sow")
	}
	s.observe("draft", nil)
	return sowResponse(sow), nil
}

func (s *LifecycleServiceImpl) GenerateDraft(ctx context.Context, db *gorm.DB, projectID, authorID string) (*dto.SOWResponse, error) {
	project, err := s.projectRepo.FindDetailed(db, projectID)
	if err != nil {
		return nil, storeError(err, "sow")
	}
	body, err := s.sows.Render(project)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.Draft(ctx, db, projectID, authorID, body)
}

// ==========================
// Finalize and send
// ==========================

// finalizeOutcome is what the transactional part of finalize committed.
type finalizeOutcome struct {
	project    *models.Project
	sow        *models.SOW
	assignment models.Assignment
}

func (s *LifecycleServiceImpl) FinalizeAndSend(ctx context.Context, db *gorm.DB, projectID string, req *dto.FinalizeRequest) (*dto.FinalizeResponse, error) {
	a, err := req.Assignment.Resolve()
	if err != nil {
		s.observe("finalize", apperrors.ErrInvalidAssignmentTarget)
		return nil, apperrors.ErrInvalidAssignmentTarget.WithError(err)
	}

	outcome, err := s.finalize(ctx, db, projectID, a, req.SOWBody)
	s.observe("finalize", err)
	if err != nil {
		logger.CtxWarn(ctx, "Finalize rejected", "project_id", projectID, "assignment", a.String(), "error", err.Error())
		return nil, err
	}
	logger.CtxInfo(ctx, "Project finalized and sent",
		"project_id", projectID,
		"sow_id", outcome.sow.ID,
		"assignment", a.String(),
		"status", outcome.project.Status,
	)

	resp := &dto.FinalizeResponse{SOW: sowResponse(outcome.sow)}

	// Outside the transaction: the committed state stands even if this fails.
	notificationID, notifyErr := s.notifyAssigned(ctx, db, outcome, req)
	if notifyErr != nil {
		logger.CtxWarn(ctx, "Finalize notification failed",
			"project_id", projectID,
			"assignee", a.String(),
			"error", notifyErr.Error(),
		)
		msg := notifyErr.Error()
		if appErr, ok := apperrors.AsAppError(notifyErr); ok {
			msg = appErr.Message
		}
		resp.NotificationError = &msg
	} else {
		resp.NotificationID = &notificationID
	}

	// The transition is committed; a failed re-read falls back to what was written.
	project, err := s.detailed(ctx, db, projectID)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to reload finalized project", "project_id", projectID, "error", err.Error())
		project = projectResponse(outcome.project, outcome.assignment, outcome.sow)
	}
	resp.Project = project
	return resp, nil
}

// finalize is the composite transition: SOW publish, assignment and project
// status commit together or not at all.
func (s *LifecycleServiceImpl) finalize(ctx context.Context, db *gorm.DB, projectID string, a models.Assignment, sowBody *string) (*finalizeOutcome, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "project")
	}
	defer tx.Rollback()

	// serializes concurrent finalize calls on this project
	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
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
			return nil, apperrors.ErrProjectPublishedElsewhere.WithDetails(map[string]string{
				"current":   current.String(),
				"requested": a.String(),
			})
		}
	}

	if err := s.assignments.CheckAssignee(ctx, tx, a); err != nil {
		return nil, err
	}

	sow, err := s.sows.PublishLatest(ctx, tx, projectID, sowBody, &a)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusPublished {
		project.Status = models.ProjectStatusSent
	}
	if err := s.assignments.Apply(ctx, tx, project, a); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(err, "project")
	}
	return &finalizeOutcome{project: project, sow: sow, assignment: a}, nil
}

func (s *LifecycleServiceImpl) notifyAssigned(ctx context.Context, db *gorm.DB, outcome *finalizeOutcome, req *dto.FinalizeRequest) (string, error) {
	recipient, err := s.teams.ResolveRecipient(ctx, db, outcome.assignment)
	if err != nil {
		return "", err
	}
	if recipient == nil {
		return "", apperrors.ErrRecipientNotFound
	}

	data := map[string]interface{}{
		"project_id":      outcome.project.ID,
		"sow_id":          outcome.sow.ID,
		"assignment_type": outcome.assignment.Kind(),
		"assignee_id":     outcome.assignment.AssigneeID(),
	}
	if req.RecipientEmail != "" {
		data["recipient_email"] = req.RecipientEmail
	}
	if req.CCClient && outcome.project.ClientID != nil {
		if client, err := s.userRepo.FindByID(db, *outcome.project.ClientID); err == nil {
			data["cc"] = []string{client.Email}
		} else {
			logger.CtxWarn(ctx, "Client not found for cc", "project_id", outcome.project.ID, "error", err.Error())
		}
	}

	return s.notifications.Emit(ctx, db, recipient.ID, models.NotificationProjectUpdate,
		"New project assigned",
		fmt.Sprintf("The scope of work for %q is ready. The project has been sent to you.", outcome.project.Name),
		WithData(data),
		WithDedupeKey(fmt.Sprintf("project_update:%s:%s", outcome.project.ID, outcome.assignment.AssigneeID())),
	)
}

// ==========================
// Publish / cancel
// ==========================

func (s *LifecycleServiceImpl) Publish(ctx context.Context, db *gorm.DB, projectID string) (*dto.ProjectResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "project")
	}
	defer tx.Rollback()

	project, err := s.lockForTransition(ctx, tx, projectID, models.ProjectStatusPublished)
	if err != nil {
		s.observe("publish", err)
		return nil, err
	}
	a, err := readAssignment(ctx, project)
	if err != nil {
		return nil, err
	}
	if a.IsNone() {
		return nil, apperrors.ErrInvalidOperation("project", "project has no assignee")
	}
	published, err := s.sowRepo.CountByStatus(tx, projectID, models.SOWStatusPublished)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if published == 0 {
		return nil, apperrors.ErrInvalidStatus("project", "project has no published SOW")
	}

	wasPublished := project.Status == models.ProjectStatusPublished
	project.Status = models.ProjectStatusPublished
	if err := s.projectRepo.Save(tx, project); err != nil {
		return nil, storeError(err, "project")
	}
	if err := tx.Commit().Error; err != nil {
		s.observe("publish", err)
		return nil, storeError(err, "project")
	}
	s.observe("publish", nil)

	if !wasPublished {
		logger.CtxInfo(ctx, "Project published", "project_id", projectID, "assignment", a.String())
		s.notifyRecipient(ctx, db, project, a, "Project published",
			fmt.Sprintf("Project %q is now published.", project.Name),
			fmt.Sprintf("project_published:%s:%s", projectID, a.AssigneeID()))
	}
	return s.detailed(ctx, db, projectID)
}

func (s *LifecycleServiceImpl) Cancel(ctx context.Context, db *gorm.DB, projectID, reason string) (*dto.ProjectResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, storeError(tx.Error, "project")
	}
	defer tx.Rollback()

	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if project.Status == models.ProjectStatusCancelled {
		// already cancelled; release the lock before reading through the pool
		tx.Rollback()
		return s.detailed(ctx, db, projectID)
	}
	if !project.Status.CanTransitionTo(models.ProjectStatusCancelled) {
		err := apperrors.ErrInvalidStatus("project", fmt.Sprintf("cannot cancel a project in status %s", project.Status))
		s.observe("cancel", err)
		return nil, err
	}
	a, err := readAssignment(ctx, project)
	if err != nil {
		return nil, err
	}

	project.Status = models.ProjectStatusCancelled
	if err := s.projectRepo.Save(tx, project); err != nil {
		return nil, storeError(err, "project")
	}
	if err := tx.Commit().Error; err != nil {
		s.observe("cancel", err)
		return nil, storeError(err, "project")
	}
	s.observe("cancel", nil)
	logger.CtxInfo(ctx, "Project cancelled", "project_id", projectID, "reason", reason)

	message := fmt.Sprintf("Project %q has been cancelled.", project.Name)
	if reason != "" {
		message += " Reason: " + reason
	}
	if !a.IsNone() {
		s.notifyRecipient(ctx, db, project, a, "Project cancelled", message, "")
	}
	if project.ClientID != nil {
		if _, err := s.notifications.Emit(ctx, db, *project.ClientID, models.NotificationProjectUpdate,
			"Project cancelled", message, WithData(map[string]interface{}{"project_id": projectID})); err != nil {
			logger.CtxWithError(ctx, "Failed to notify client about cancellation", err, "project_id", projectID)
		}
	}
	return s.detailed(ctx, db, projectID)
}

// ==========================
// Helpers
// ==========================

// lockForTransition locks the project and checks that the table allows moving to next.
func (s *LifecycleServiceImpl) lockForTransition(ctx context.Context, tx *gorm.DB, projectID string, next models.ProjectStatus) (*models.Project, error) {
	project, err := s.projectRepo.FindByIDForUpdate(tx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if project.Status == models.ProjectStatusCancelled {
		return nil, apperrors.ErrProjectCancelled
	}
	if !project.Status.CanTransitionTo(next) {
		return nil, apperrors.ErrInvalidStatus("project",
			fmt.Sprintf("cannot move project from %s to %s", project.Status, next))
	}
	return project, nil
}

func (s *LifecycleServiceImpl) detailed(ctx context.Context, db *gorm.DB, projectID string) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindDetailed(db, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	a, err := readAssignment(ctx, project)
	if err != nil {
		return nil, err
	}
	current, err := s.sows.Latest(ctx, db, projectID)
	if err != nil {
		return nil, err
	}
	return projectResponse(project, a, current), nil
}

// notifyAdmins is best effort; intake never fails on it.
func (s *LifecycleServiceImpl) notifyAdmins(ctx context.Context, db *gorm.DB, project *models.Project, title, message string) {
	admins, err := s.userRepo.FindByRole(db, models.UserRoleAdmin)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to load admins for notification", err, "project_id", project.ID)
		return
	}
	for _, admin := range admins {
		_, err := s.notifications.Emit(ctx, db, admin.ID, models.NotificationProjectSubmitted, title, message,
			WithData(map[string]interface{}{"project_id": project.ID}))
		if err != nil {
			logger.CtxWithError(ctx, "Failed to notify admin", err, "project_id", project.ID, "admin_id", admin.ID)
		}
	}
}

func (s *LifecycleServiceImpl) notifyRecipient(ctx context.Context, db *gorm.DB, project *models.Project, a models.Assignment, title, message, dedupeKey string) {
	recipient, err := s.teams.ResolveRecipient(ctx, db, a)
	if err != nil || recipient == nil {
		logger.CtxWarn(ctx, "No recipient for project notification", "project_id", project.ID, "assignee", a.String())
		return
	}
	opts := []EmitOption{WithData(map[string]interface{}{"project_id": project.ID})}
	if dedupeKey != "" {
		opts = append(opts, WithDedupeKey(dedupeKey))
	}
	if _, err := s.notifications.Emit(ctx, db, recipient.ID, models.NotificationProjectUpdate, title, message, opts...); err != nil {
		logger.CtxWithError(ctx, "Failed to notify assignee", err, "project_id", project.ID, "recipient_id", recipient.ID)
	}
}

func (s *LifecycleServiceImpl) observe(operation string, err error) {
	s.metrics.Transition(operation, outcomeOf(err))
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode < http.StatusInternalServerError {
		return "rejected"
	}
	return "error"
}

func clientLabel(db *gorm.DB, userRepo repositories.UserRepository, clientID string) string {
	client, err := userRepo.FindByID(db, clientID)
	if err != nil {
		return "A client"
	}
	if name := client.FullName(); name != "" {
		return name
	}
	return client.Email
}
