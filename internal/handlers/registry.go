package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	ProjectHandler      *ProjectHandler
	AdminProjectHandler *AdminProjectHandler
	NotificationHandler *NotificationHandler
	CatalogHandler      *CatalogHandler
	AttachmentHandler   *AttachmentHandler
	HealthHandler       *HealthHandler
}
