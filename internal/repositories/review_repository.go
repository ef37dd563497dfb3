package repositories

import (
	"finley_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.AdminReview) error
	FindByProject(db *gorm.DB, projectID string) ([]models.AdminReview, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.AdminReview) error {
	return db.Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByProject(db *gorm.DB, projectID string) ([]models.AdminReview, error) {
	var reviews []models.AdminReview
	err := db.Preload("Reviewer").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
