package models

type Team struct {
	BaseModel
	Name         string  `gorm:"not null"`
	LeaderUserID *string `gorm:"type:uuid;index"`

	Leader  *User        `gorm:"foreignKey:LeaderUserID"`
	Members []TeamMember `gorm:"foreignKey:TeamID"`
}

type TeamMember struct {
	BaseModel
	TeamID     string           `gorm:"type:uuid;not null;uniqueIndex:idx_team_member"`
	UserID     string           `gorm:"type:uuid;not null;uniqueIndex:idx_team_member;index"`
	RoleInTeam TeamMemberRole   `gorm:"type:varchar(20);not null;default:'MEMBER'"`
	Status     TeamMemberStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	User *User `gorm:"foreignKey:UserID"`
}
