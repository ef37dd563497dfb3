package repositories

import (
	"errors"

	"finley_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSOWNotFound = errors.New("sow not found")

type SOWRepository interface {
	Create(db *gorm.DB, sow *models.SOW) error
	Save(db *gorm.DB, sow *models.SOW) error
	FindLatest(db *gorm.DB, projectID string) (*models.SOW, error)
	FindLatestForProjects(db *gorm.DB, projectIDs []string) (map[string]*models.SOW, error)
	FindByProject(db *gorm.DB, projectID string) ([]models.SOW, error)
	NextVersion(db *gorm.DB, projectID string) (int, error)
	CountByStatus(db *gorm.DB, projectID string, status models.SOWStatus) (int64, error)
	// SupersedePublished moves every PUBLISHED record of the project except keepID to SUPERSEDED.
	SupersedePublished(db *gorm.DB, projectID, keepID string) (int64, error)
}

type SOWRepositoryImpl struct{}

func NewSOWRepository() SOWRepository {
	return &SOWRepositoryImpl{}
}

// latestFirst orders by creation time, breaking ties by version.
const latestFirst = "created_at DESC, version DESC"

func (r *SOWRepositoryImpl) Create(db *gorm.DB, sow *models.SOW) error {
	return db.Create(sow).Error
}

func (r *SOWRepositoryImpl) Save(db *gorm.DB, sow *models.SOW) error {
	return db.Save(sow).Error
}

func (r *SOWRepositoryImpl) FindLatest(db *gorm.DB, projectID string) (*models.SOW, error) {
	var sow models.SOW
	err := db.Where("project_id = ?", projectID).Order(latestFirst).First(&sow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSOWNotFound
		}
		return nil, err
	}
	return &sow, nil
}

func (r *SOWRepositoryImpl) FindLatestForProjects(db *gorm.DB, projectIDs []string) (map[string]*models.SOW, error) {
	result := make(map[string]*models.SOW, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var sows []models.SOW
	if err := db.Where("project_id IN ?", projectIDs).Order(latestFirst).Find(&sows).Error; err != nil {
		return nil, err
	}
	for i := range sows {
		if _, seen := result[sows[i].ProjectID]; !seen {
			result[sows[i].ProjectID] = &sows[i]
		}
	}
	return result, nil
}

func (r *SOWRepositoryImpl) FindByProject(db *gorm.DB, projectID string) ([]models.SOW, error) {
	var sows []models.SOW
	err := db.Where("project_id = ?", projectID).Order(latestFirst).Find(&sows).Error
	return sows, err
}

func (r *SOWRepositoryImpl) NextVersion(db *gorm.DB, projectID string) (int, error) {
	var maxVersion int
	err := db.Model(&models.SOW{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion + 1, nil
}

func (r *SOWRepositoryImpl) CountByStatus(db *gorm.DB, projectID string, status models.SOWStatus) (int64, error) {
	var count int64
	err := db.Model(&models.SOW{}).
		Where("project_id = ? AND status = ?", projectID, status).
		Count(&count).Error
	return count, err
}

func (r *SOWRepositoryImpl) SupersedePublished(db *gorm.DB, projectID, keepID string) (int64, error) {
	result := db.Model(&models.SOW{}).
		Where("project_id = ? AND status = ? AND id <> ?", projectID, models.SOWStatusPublished, keepID).
		Update("status", models.SOWStatusSuperseded)
	return result.RowsAffected, result.Error
}
