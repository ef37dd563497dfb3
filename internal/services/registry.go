package services

import (
	"time"

	"finley_backend/internal/events"
	"finley_backend/internal/metrics"
	"finley_backend/internal/repositories"
	"finley_backend/internal/storage"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	NotificationService NotificationService
	SOWService          SOWService
	AssignmentService   AssignmentService
	LifecycleService    LifecycleService
	QueryService        QueryService
	TeamService         TeamService
	CategoryService     CategoryService
	AttachmentService   AttachmentService
}

// Dependencies are the collaborators built by the app from configuration.
type Dependencies struct {
	Publisher events.Publisher
	Metrics   *metrics.Recorder
	Signer    storage.Signer
	SignTTL   time.Duration
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	teamRepo := repositories.NewTeamRepository()
	categoryRepo := repositories.NewCategoryRepository()
	projectRepo := repositories.NewProjectRepository()
	sowRepo := repositories.NewSOWRepository()
	reviewRepo := repositories.NewReviewRepository()
	notificationRepo := repositories.NewNotificationRepository()
	attachmentRepo := repositories.NewAttachmentRepository()

	notificationService := NewNotificationService(notificationRepo, userRepo, deps.Publisher, deps.Metrics)
	sowService := NewSOWService(sowRepo, projectRepo)
	assignmentService := NewAssignmentService(projectRepo, userRepo, teamRepo)
	teamService := NewTeamService(teamRepo, userRepo)
	lifecycleService := NewLifecycleService(
		projectRepo, userRepo, categoryRepo, reviewRepo, sowRepo,
		sowService, assignmentService, teamService, notificationService, deps.Metrics,
	)

	return &ServiceContainer{
		NotificationService: notificationService,
		SOWService:          sowService,
		AssignmentService:   assignmentService,
		LifecycleService:    lifecycleService,
		QueryService:        NewQueryService(projectRepo, userRepo, sowRepo),
		TeamService:         teamService,
		CategoryService:     NewCategoryService(categoryRepo),
		AttachmentService:   NewAttachmentService(attachmentRepo, projectRepo, userRepo, deps.Signer, deps.SignTTL),
	}
}
