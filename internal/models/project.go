package models

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	BaseModel
	Name        string        `gorm:"not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"type:varchar(30);not null;default:'SUBMITTED';index"`
	ClientID    *string       `gorm:"type:uuid;index"`
	CategoryID  *string       `gorm:"type:uuid;index"`
	Answers     datatypes.JSON

	// Assignment columns. Write them only through SetAssignment.
	AssignedType   AssignmentType `gorm:"type:varchar(20);not null;default:'NONE'"`
	AssignedUserID *string        `gorm:"type:uuid;index"`
	AssignedTeamID *string        `gorm:"type:uuid;index"`

	// Legacy read-compat columns: TeamID mirrors AssignedTeamID, TalentID is always NULL.
	TeamID   *string `gorm:"type:uuid"`
	TalentID *string `gorm:"type:uuid"`

	Category     *Category           `gorm:"foreignKey:CategoryID"`
	Client       *User               `gorm:"foreignKey:ClientID"`
	AssignedUser *User               `gorm:"foreignKey:AssignedUserID"`
	AssignedTeam *Team               `gorm:"foreignKey:AssignedTeamID"`
	Reviews      []AdminReview       `gorm:"foreignKey:ProjectID"`
	Attachments  []ProjectAttachment `gorm:"foreignKey:ProjectID"`
}

// Assignment reads the stored assignment, failing with ErrAssignmentInvariant
// when the columns are inconsistent.
func (p *Project) Assignment() (Assignment, error) {
	a, err := assignmentFromColumns(p.AssignedType, p.AssignedUserID, p.AssignedTeamID)
	if err != nil {
		return Assignment{}, fmt.Errorf("project %s: %w", p.ID, err)
	}
	return a, nil
}

// SetAssignment writes every assignment column, including the legacy shim.
func (p *Project) SetAssignment(a Assignment) {
	p.AssignedType = a.Kind()
	p.AssignedUserID = nil
	p.AssignedTeamID = nil
	p.TeamID = nil
	p.TalentID = nil

	if userID, ok := a.Individual(); ok {
		p.AssignedUserID = &userID
	}
	if teamID, ok := a.Team(); ok {
		p.AssignedTeamID = &teamID
		alias := teamID
		p.TeamID = &alias
	}
}

// AssignmentColumns is the column map matching SetAssignment, for partial updates.
func (p *Project) AssignmentColumns() map[string]interface{} {
	return map[string]interface{}{
		"assigned_type":    p.AssignedType,
		"assigned_user_id": p.AssignedUserID,
		"assigned_team_id": p.AssignedTeamID,
		"team_id":          p.TeamID,
		"talent_id":        p.TalentID,
	}
}

// BeforeSave refuses to persist an inconsistent assignment and re-derives the legacy columns.
func (p *Project) BeforeSave(tx *gorm.DB) error {
	a, err := p.Assignment()
	if err != nil {
		return err
	}
	p.SetAssignment(a)
	return nil
}
