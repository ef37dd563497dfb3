package repositories

import (
	"errors"

	"finley_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByRole(db *gorm.DB, role models.UserRole) ([]models.User, error)
	// FindEligibleTalent returns the users that can be assigned work individually.
	FindEligibleTalent(db *gorm.DB) ([]models.User, error)
	Create(db *gorm.DB, user *models.User) error
	ActiveTeamIDs(db *gorm.DB, userID string) ([]string, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByRole(db *gorm.DB, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ? AND status = ?", role, models.UserStatusActive).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) FindEligibleTalent(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ? AND status = ?", models.UserRoleTalent, models.UserStatusActive).
		Order("first_name ASC, last_name ASC, email ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

// ActiveTeamIDs returns the teams in which the user has an ACTIVE membership.
func (r *UserRepositoryImpl) ActiveTeamIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.TeamMember{}).
		Where("user_id = ? AND status = ?", userID, models.TeamMemberActive).
		Pluck("team_id", &ids).Error
	return ids, err
}
