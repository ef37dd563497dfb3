package dto

import (
	"encoding/json"
	"time"

	"finley_backend/internal/models"
)

// --- Requests ---

type SubmitProjectRequest struct {
	Name        string                 `json:"name" validate:"required,min=3,max=200"`
	Description string                 `json:"description" validate:"max=5000"`
	CategoryID  *string                `json:"category_id" validate:"omitempty,uuid"`
	Answers     map[string]interface{} `json:"answers"`
}

// UpdateProjectRequest carries a client's edits on resubmit. Nil fields are
// left as they are; answers, when present, replace the stored ones.
type UpdateProjectRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=5000"`
	Answers     map[string]interface{} `json:"answers"`
}

type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,is-review-decision"`
	Comments string `json:"comments" validate:"max=5000"`
}

type SaveDraftRequest struct {
	Body string `json:"body" validate:"required,max=200000"`
}

// AssignRequest is {"team": id} or {"individual": id}.
type AssignRequest struct {
	models.AssignmentTarget
}

type FinalizeRequest struct {
	Assignment models.AssignmentTarget `json:"assignment"`
	// SOWBody replaces the draft body when set.
	SOWBody        *string `json:"sow_body" validate:"omitempty,max=200000"`
	RecipientEmail string  `json:"recipient_email" validate:"omitempty,email"`
	CCClient       bool    `json:"cc_client"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// --- Responses ---

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AssignmentResponse struct {
	Type   models.AssignmentType `json:"type"`
	UserID *string               `json:"user_id"`
	TeamID *string               `json:"team_id"`
	User   *UserRef              `json:"user,omitempty"`
	Team   *TeamRef              `json:"team,omitempty"`
}

type SOWResponse struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id"`
	Version   int              `json:"version"`
	Status    models.SOWStatus `json:"status"`
	Body      string           `json:"body"`
	TeamID    *string          `json:"team_id"`
	CreatedAt time.Time        `json:"created_at"`
}

type ReviewResponse struct {
	ID        string                `json:"id"`
	Decision  models.ReviewDecision `json:"decision"`
	Comments  string                `json:"comments"`
	Reviewer  *UserRef              `json:"reviewer,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

type AttachmentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Client      *UserRef             `json:"client,omitempty"`
	Category    *CategoryRef         `json:"category,omitempty"`
	Answers     json.RawMessage      `json:"answers,omitempty"`
	Assignment  AssignmentResponse   `json:"assignment"`
	CurrentSOW  *SOWResponse         `json:"current_sow,omitempty"`
	Reviews     []ReviewResponse     `json:"reviews,omitempty"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

type FinalizeResponse struct {
	Project           *ProjectResponse `json:"project"`
	SOW               *SOWResponse     `json:"sow"`
	NotificationID    *string          `json:"notification_id,omitempty"`
	NotificationError *string          `json:"notification_error,omitempty"`
}
