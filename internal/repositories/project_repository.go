package repositories

import (
	"errors"

	"finley_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(db *gorm.DB, project *models.Project) error
	FindByID(db *gorm.DB, id string) (*models.Project, error)
	FindDetailed(db *gorm.DB, id string) (*models.Project, error)
	// FindByIDForUpdate takes a row lock held until the surrounding transaction ends.
	FindByIDForUpdate(db *gorm.DB, id string) (*models.Project, error)
	Save(db *gorm.DB, project *models.Project) error
	FindAllForAdmin(db *gorm.DB) ([]models.Project, error)
	FindForAssignee(db *gorm.DB, userID string, teamIDs []string) ([]models.Project, error)
	FindForClient(db *gorm.DB, clientID string) ([]models.Project, error)
}

type ProjectRepositoryImpl struct{}

func NewProjectRepository() ProjectRepository {
	return &ProjectRepositoryImpl{}
}

func (r *ProjectRepositoryImpl) Create(db *gorm.DB, project *models.Project) error {
	return db.Omit(clause.Associations).Create(project).Error
}

func (r *ProjectRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		return nil, mapProjectErr(err)
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) FindDetailed(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := withProjectJoins(db).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("admin_reviews.created_at DESC")
		}).
		Preload("Reviews.Reviewer").
		Preload("Attachments").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, mapProjectErr(err)
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, mapProjectErr(err)
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) Save(db *gorm.DB, project *models.Project) error {
	return db.Omit(clause.Associations).Save(project).Error
}

func (r *ProjectRepositoryImpl) FindAllForAdmin(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	err := withProjectJoins(db).
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindForAssignee returns projects assigned to the user directly or to any of teamIDs.
func (r *ProjectRepositoryImpl) FindForAssignee(db *gorm.DB, userID string, teamIDs []string) ([]models.Project, error) {
	var projects []models.Project

	cond := db.Session(&gorm.Session{NewDB: true}).Where("assigned_user_id = ?", userID)
	if len(teamIDs) > 0 {
		cond = cond.Or("assigned_team_id IN ?", teamIDs)
	}

	err := withProjectJoins(db).
		Where(cond).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepositoryImpl) FindForClient(db *gorm.DB, clientID string) ([]models.Project, error) {
	var projects []models.Project
	err := withProjectJoins(db).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func withProjectJoins(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Project{}).
		Preload("Category").
		Preload("Client").
		Preload("AssignedUser").
		Preload("AssignedTeam")
}

func mapProjectErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectNotFound
	}
	return err
}
