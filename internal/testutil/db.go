package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"finley_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewDB opens a private in-memory SQLite database with every model migrated.
// A single connection keeps the in-memory database alive and serializes writers.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=0", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "migrate")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		Role:      role,
		Status:    models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTeam creates a team led by leader, with leader and members as ACTIVE members.
func CreateTeam(t *testing.T, db *gorm.DB, name string, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()
	team := &models.Team{Name: name}
	if leader != nil {
		team.LeaderUserID = &leader.ID
	}
	require.NoError(t, db.Create(team).Error)

	if leader != nil {
		AddTeamMember(t, db, team, leader, models.TeamRoleLeader, models.TeamMemberActive)
	}
	for _, m := range members {
		AddTeamMember(t, db, team, m, models.TeamRoleMember, models.TeamMemberActive)
	}
	return team
}

func AddTeamMember(t *testing.T, db *gorm.DB, team *models.Team, user *models.User, role models.TeamMemberRole, status models.TeamMemberStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID:     team.ID,
		UserID:     user.ID,
		RoleInTeam: role,
		Status:     status,
	}).Error)
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateProject inserts a SUBMITTED, unassigned project.
func CreateProject(t *testing.T, db *gorm.DB, name string, client *models.User) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:   name,
		Status: models.ProjectStatusSubmitted,
	}
	if client != nil {
		project.ClientID = &client.ID
	}
	project.SetAssignment(models.NoAssignment())
	require.NoError(t, db.Create(project).Error)
	return project
}

func ReloadProject(t *testing.T, db *gorm.DB, id string) *models.Project {
	t.Helper()
	var project models.Project
	require.NoError(t, db.First(&project, "id = ?", id).Error)
	return &project
}
