package services

import (
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"

	"gorm.io/gorm"
)

// Caller is the authenticated identity as supplied by the identity provider.
type Caller struct {
	UserID string
	Role   models.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.UserRoleAdmin
}

// canView reports whether caller may see project: admins always, the owning
// client, and whoever listForUser would show it to.
func canView(db *gorm.DB, userRepo repositories.UserRepository, caller Caller, project *models.Project, a models.Assignment) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}
	if project.ClientID != nil && *project.ClientID == caller.UserID {
		return true, nil
	}
	if userID, ok := a.Individual(); ok {
		return userID == caller.UserID, nil
	}
	if teamID, ok := a.Team(); ok {
		teamIDs, err := userRepo.ActiveTeamIDs(db, caller.UserID)
		if err != nil {
			return false, err
		}
		for _, id := range teamIDs {
			if id == teamID {
				return true, nil
			}
		}
	}
	return false, nil
}

