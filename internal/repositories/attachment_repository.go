package repositories

import (
	"errors"

	"finley_backend/internal/models"

	"gorm.io/gorm"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

type AttachmentRepository interface {
	Create(db *gorm.DB, attachment *models.ProjectAttachment) error
	FindByID(db *gorm.DB, id string) (*models.ProjectAttachment, error)
}

type AttachmentRepositoryImpl struct{}

func NewAttachmentRepository() AttachmentRepository {
	return &AttachmentRepositoryImpl{}
}

func (r *AttachmentRepositoryImpl) Create(db *gorm.DB, attachment *models.ProjectAttachment) error {
	return db.Create(attachment).Error
}

func (r *AttachmentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.ProjectAttachment, error) {
	var attachment models.ProjectAttachment
	if err := db.First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}
