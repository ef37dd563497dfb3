package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"finley_backend/internal/logger"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"
	"finley_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type SOWService interface {
	// SaveDraft always appends a new DRAFT version.
	SaveDraft(ctx context.Context, db *gorm.DB, projectID, authorID, body string) (*models.SOW, error)
	// PublishLatest publishes the most recent SOW of the project. finalBody, when
	// set, replaces the draft body. mirror, when set, is copied onto the record's
	// assignee fields. Publishing an already published record changes nothing but the mirror.
	PublishLatest(ctx context.Context, db *gorm.DB, projectID string, finalBody *string, mirror *models.Assignment) (*models.SOW, error)
	Latest(ctx context.Context, db *gorm.DB, projectID string) (*models.SOW, error)
	History(ctx context.Context, db *gorm.DB, projectID string) ([]dto.SOWResponse, error)
	// Render builds a starting draft body from the intake.
	Render(project *models.Project) (string, error)
}

type SOWServiceImpl struct {
	sowRepo     repositories.SOWRepository
	projectRepo repositories.ProjectRepository
}

func NewSOWService(sowRepo repositories.SOWRepository, projectRepo repositories.ProjectRepository) SOWService {
	return &SOWServiceImpl{
		sowRepo:     sowRepo,
		projectRepo: projectRepo,
	}
}

func (s *SOWServiceImpl) SaveDraft(ctx context.Context, db *gorm.DB, projectID, authorID, body string) (*models.SOW, error) {
	if _, err := s.projectRepo.FindByID(db, projectID); err != nil {
		return nil, storeError(err, "sow")
	}

	var sow *models.SOW
	err := db.Transaction(func(tx *gorm.DB) error {
		version, err := s.sowRepo.NextVersion(tx, projectID)
		if err != nil {
			return err
		}
		sow = &models.SOW{
			ProjectID:    projectID,
			Version:      version,
			Status:       models.SOWStatusDraft,
			BodyRichText: body,
		}
		if authorID != "" {
			sow.CreatedByID = &authorID
		}
		return s.sowRepo.Create(tx, sow)
	})
	if err != nil {
		return nil, storeError(err, "sow")
	}

	logger.CtxInfo(ctx, "SOW draft saved", "project_id", projectID, "sow_id", sow.ID, "version", sow.Version)
	return sow, nil
}

func (s *SOWServiceImpl) PublishLatest(ctx context.Context, db *gorm.DB, projectID string, finalBody *string, mirror *models.Assignment) (*models.SOW, error) {
	var sow *models.SOW
	err := db.Transaction(func(tx *gorm.DB) error {
		latest, err := s.sowRepo.FindLatest(tx, projectID)
		if err != nil {
			if errors.Is(err, repositories.ErrSOWNotFound) {
				return apperrors.ErrNoDraftExists.WithDetails(map[string]string{"project_id": projectID})
			}
			return err
		}

		changed := false
		if latest.Status != models.SOWStatusPublished {
			latest.Status = models.SOWStatusPublished
			if finalBody != nil {
				latest.BodyRichText = *finalBody
			}
			changed = true
		}
		if mirror != nil {
			before := latest.TeamID
			latest.MirrorAssignment(*mirror)
			changed = changed || !sameID(before, latest.TeamID)
		}
		if latest.TalentID != nil {
			latest.TalentID = nil
			changed = true
		}

		if changed {
			if err := s.sowRepo.Save(tx, latest); err != nil {
				return err
			}
		}
		if _, err := s.sowRepo.SupersedePublished(tx, projectID, latest.ID); err != nil {
			return err
		}
		sow = latest
		return nil
	})
	if err != nil {
		return nil, storeError(err, "sow")
	}

	logger.CtxInfo(ctx, "SOW published", "project_id", projectID, "sow_id", sow.ID, "version", sow.Version)
	return sow, nil
}

func (s *SOWServiceImpl) Latest(ctx context.Context, db *gorm.DB, projectID string) (*models.SOW, error) {
	sow, err := s.sowRepo.FindLatest(db, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrSOWNotFound) {
			return nil, nil
		}
		return nil, storeError(err, "sow")
	}
	return sow, nil
}

func (s *SOWServiceImpl) History(ctx context.Context, db *gorm.DB, projectID string) ([]dto.SOWResponse, error) {
	if _, err := s.projectRepo.FindByID(db, projectID); err != nil {
		return nil, storeError(err, "sow")
	}
	sows, err := s.sowRepo.FindByProject(db, projectID)
	if err != nil {
		return nil, storeError(err, "sow")
	}

	resp := make([]dto.SOWResponse, 0, len(sows))
	for i := range sows {
		resp = append(resp, *sowResponse(&sows[i]))
	}
	return resp, nil
}

var sowTemplate = template.Must(template.New("sow").Parse(`# Scope of Work: {{.Name}}

**Client:** {{.Client}}
{{- if .Category}}
**Category:** {{.Category}}
{{- end}}

## Overview
{{if .Description}}{{.Description}}{{else}}To be defined with the client.{{end}}

## Deliverables
{{- range .Deliverables}}
- {{.}}
{{- else}}
- To be confirmed during review.
{{- end}}

## Budget
{{if .Budget}}{{.Budget}}{{else}}To be confirmed.{{end}}

## Timeline
{{if .Deadline}}Delivery by {{.Deadline}}.{{else}}To be scheduled.{{end}}
`))

type sowTemplateData struct {
	Name         string
	Client       string
	Category     string
	Description  string
	Deliverables []string
	Budget       string
	Deadline     string
}

func (s *SOWServiceImpl) Render(project *models.Project) (string, error) {
	data := sowTemplateData{
		Name:        project.Name,
		Client:      "Unknown client",
		Description: project.Description,
	}
	if project.Client != nil {
		data.Client = project.Client.FullName()
		if data.Client == "" {
			data.Client = project.Client.Email
		}
	}
	if project.Category != nil {
		data.Category = project.Category.Name
	}

	if len(project.Answers) > 0 {
		var answers map[string]interface{}
		if err := json.Unmarshal(project.Answers, &answers); err != nil {
			return "", fmt.Errorf("decode intake answers: %w", err)
		}
		if data.Description == "" {
			data.Description = stringAnswer(answers, "description")
		}
		data.Budget = stringAnswer(answers, "budget")
		data.Deadline = stringAnswer(answers, "deadline", "delivery_date")
		if items, ok := answers["deliverables"].([]interface{}); ok {
			for _, item := range items {
				data.Deliverables = append(data.Deliverables, fmt.Sprint(item))
			}
		}
	}

	var buf bytes.Buffer
	if err := sowTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render sow: %w", err)
	}
	return buf.String(), nil
}

// stringAnswer returns the first non-empty answer among keys.
func stringAnswer(answers map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := answers[key]; ok && v != nil {
			if str := fmt.Sprint(v); str != "" {
				return str
			}
		}
	}
	return ""
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
