package services

import (
	"context"

	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"

	"gorm.io/gorm"
)

type TeamService interface {
	ListTeams(ctx context.Context, db *gorm.DB) ([]dto.TeamResponse, error)
	// ListTalent returns the users an admin can assign work to individually.
	ListTalent(ctx context.Context, db *gorm.DB) ([]dto.TalentResponse, error)
	GetTeamLeader(ctx context.Context, db *gorm.DB, teamID string) (*models.User, error)
	// ResolveRecipient returns the user who hears about work for a: the
	// individual, or the team's leader.
	ResolveRecipient(ctx context.Context, db *gorm.DB, a models.Assignment) (*models.User, error)
}

type TeamServiceImpl struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository) TeamService {
	return &TeamServiceImpl{teamRepo: teamRepo, userRepo: userRepo}
}

func (s *TeamServiceImpl) ListTeams(ctx context.Context, db *gorm.DB) ([]dto.TeamResponse, error) {
	teams, err := s.teamRepo.FindAll(db)
	if err != nil {
		return nil, storeError(err, "team")
	}

	resp := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		team := &teams[i]
		item := dto.TeamResponse{
			ID:      team.ID,
			Name:    team.Name,
			Leader:  userRef(team.Leader),
			Members: make([]dto.TeamMemberResponse, 0, len(team.Members)),
		}
		for _, m := range team.Members {
			member := dto.TeamMemberResponse{UserID: m.UserID, RoleInTeam: m.RoleInTeam}
			if m.User != nil {
				member.Name = m.User.FullName()
			}
			item.Members = append(item.Members, member)
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *TeamServiceImpl) ListTalent(ctx context.Context, db *gorm.DB) ([]dto.TalentResponse, error) {
	users, err := s.userRepo.FindEligibleTalent(db)
	if err != nil {
		return nil, storeError(err, "user")
	}

	resp := make([]dto.TalentResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		item := dto.TalentResponse{
			ID:        u.ID,
			Name:      u.FullName(),
			Email:     u.Email,
			Specialty: u.Specialty,
		}
		if item.Name == "" {
			item.Name = u.Email
		}
		if item.Specialty == "" {
			item.Specialty = "Talent"
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *TeamServiceImpl) GetTeamLeader(ctx context.Context, db *gorm.DB, teamID string) (*models.User, error) {
	leader, err := s.teamRepo.FindLeader(db, teamID)
	if err != nil {
		return nil, storeError(err, "team")
	}
	return leader, nil
}

func (s *TeamServiceImpl) ResolveRecipient(ctx context.Context, db *gorm.DB, a models.Assignment) (*models.User, error) {
	if teamID, ok := a.Team(); ok {
		return s.GetTeamLeader(ctx, db, teamID)
	}
	if userID, ok := a.Individual(); ok {
		user, err := s.userRepo.FindByID(db, userID)
		if err != nil {
			return nil, storeError(err, "user")
		}
		return user, nil
	}
	return nil, nil
}
