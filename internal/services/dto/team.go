package dto

import "finley_backend/internal/models"

type TeamMemberResponse struct {
	UserID     string                `json:"user_id"`
	Name       string                `json:"name"`
	RoleInTeam models.TeamMemberRole `json:"role_in_team"`
}

type TeamResponse struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Leader  *UserRef             `json:"leader,omitempty"`
	Members []TeamMemberResponse `json:"members"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TalentResponse is an individual that can be picked as an assignee.
type TalentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
}
