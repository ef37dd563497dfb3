package services

import (
	"context"
	"time"

	"finley_backend/internal/logger"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"
	"finley_backend/internal/storage"
	"finley_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AttachmentService signs direct-to-storage URLs; file bytes never pass through the API.
type AttachmentService interface {
	SignUpload(ctx context.Context, db *gorm.DB, projectID, uploaderID string, req *dto.SignUploadRequest) (*dto.SignedUploadResponse, error)
	SignDownload(ctx context.Context, db *gorm.DB, caller Caller, attachmentID string) (*dto.SignedURLResponse, error)
}

type AttachmentServiceImpl struct {
	attachmentRepo repositories.AttachmentRepository
	projectRepo    repositories.ProjectRepository
	userRepo       repositories.UserRepository
	signer         storage.Signer
	ttl            time.Duration
}

func NewAttachmentService(
	attachmentRepo repositories.AttachmentRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	signer storage.Signer,
	ttl time.Duration,
) AttachmentService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AttachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		signer:         signer,
		ttl:            ttl,
	}
}

func (s *AttachmentServiceImpl) SignUpload(ctx context.Context, db *gorm.DB, projectID, uploaderID string, req *dto.SignUploadRequest) (*dto.SignedUploadResponse, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, storeError(err, "attachment")
	}
	if project.Status == models.ProjectStatusCancelled {
		return nil, apperrors.ErrProjectCancelled
	}

	key := storage.AttachmentKey(projectID, req.FileName)
	url, err := s.signer.SignUpload(ctx, key, req.ContentType, s.ttl)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to sign upload", err, "project_id", projectID)
		return nil, apperrors.InternalError(err)
	}

	attachment := &models.ProjectAttachment{
		ProjectID:   projectID,
		StorageKey:  key,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		UploadedBy:  uploaderID,
	}
	if err := s.attachmentRepo.Create(db, attachment); err != nil {
		return nil, storeError(err, "attachment")
	}

	logger.CtxInfo(ctx, "Attachment upload signed", "project_id", projectID, "attachment_id", attachment.ID)
	return &dto.SignedUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    url,
		StorageKey:   key,
		ExpiresAt:    time.Now().Add(s.ttl),
	}, nil
}

func (s *AttachmentServiceImpl) SignDownload(ctx context.Context, db *gorm.DB, caller Caller, attachmentID string) (*dto.SignedURLResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(db, attachmentID)
	if err != nil {
		return nil, storeError(err, "attachment")
	}

	if !caller.IsAdmin() {
		project, err := s.projectRepo.FindByID(db, attachment.ProjectID)
		if err != nil {
			return nil, storeError(err, "attachment")
		}
		a, err := readAssignment(ctx, project)
		if err != nil {
			return nil, err
		}
		visible, err := canView(db, s.userRepo, caller, project, a)
		if err != nil {
			return nil, storeError(err, "attachment")
		}
		if !visible {
			return nil, apperrors.ErrAttachmentNotFound
		}
	}

	url, err := s.signer.SignDownload(ctx, attachment.StorageKey, s.ttl)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to sign download", err, "attachment_id", attachmentID)
		return nil, apperrors.InternalError(err)
	}
	return &dto.SignedURLResponse{URL: url, ExpiresAt: time.Now().Add(s.ttl)}, nil
}
