package models

// SOW is one version of a project's scope of work. Records are append-only;
// only Status, BodyRichText and the assignee mirror change, and only on publish.
type SOW struct {
	BaseModel
	ProjectID    string    `gorm:"type:uuid;not null;index"`
	Version      int       `gorm:"not null"`
	Status       SOWStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	BodyRichText string    `gorm:"type:text"`
	CreatedByID  *string   `gorm:"type:uuid"`

	// Mirror of the project's assignee at publish time.
	TeamID *string `gorm:"type:uuid"`
	// TalentID points at the retired talent roster and is always NULL.
	TalentID *string `gorm:"type:uuid"`
}

func (SOW) TableName() string {
	return "sows"
}

// MirrorAssignment copies the project's assignee onto the SOW.
func (s *SOW) MirrorAssignment(a Assignment) {
	s.TalentID = nil
	if teamID, ok := a.Team(); ok {
		s.TeamID = &teamID
		return
	}
	s.TeamID = nil
}
