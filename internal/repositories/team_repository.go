package repositories

import (
	"errors"

	"finley_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamLeaderNotFound = errors.New("team has no leader")
)

type TeamRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Team, error)
	FindAll(db *gorm.DB) ([]models.Team, error)
	FindLeader(db *gorm.DB, teamID string) (*models.User, error)
	Create(db *gorm.DB, team *models.Team) error
	AddMember(db *gorm.DB, member *models.TeamMember) error
}

type TeamRepositoryImpl struct{}

func NewTeamRepository() TeamRepository {
	return &TeamRepositoryImpl{}
}

func (r *TeamRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Team, error) {
	var team models.Team
	if err := db.First(&team, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepositoryImpl) FindAll(db *gorm.DB) ([]models.Team, error) {
	var teams []models.Team
	err := db.Preload("Leader").
		Preload("Members", "status = ?", models.TeamMemberActive).
		Preload("Members.User").
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

// FindLeader resolves the team's leader: the explicit leader reference first,
// then an ACTIVE member with the LEADER role.
func (r *TeamRepositoryImpl) FindLeader(db *gorm.DB, teamID string) (*models.User, error) {
	team, err := r.FindByID(db, teamID)
	if err != nil {
		return nil, err
	}

	var leader models.User
	if team.LeaderUserID != nil && *team.LeaderUserID != "" {
		err := db.First(&leader, "id = ?", *team.LeaderUserID).Error
		if err == nil {
			return &leader, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err = db.Joins("JOIN team_members ON team_members.user_id = users.id").
		Where("team_members.team_id = ? AND team_members.role_in_team = ? AND team_members.status = ?",
			teamID, models.TeamRoleLeader, models.TeamMemberActive).
		Order("team_members.created_at ASC").
		First(&leader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamLeaderNotFound
		}
		return nil, err
	}
	return &leader, nil
}

func (r *TeamRepositoryImpl) Create(db *gorm.DB, team *models.Team) error {
	return db.Create(team).Error
}

func (r *TeamRepositoryImpl) AddMember(db *gorm.DB, member *models.TeamMember) error {
	return db.Create(member).Error
}
