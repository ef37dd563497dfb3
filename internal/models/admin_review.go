package models

type AdminReview struct {
	BaseModel
	ProjectID  string         `gorm:"type:uuid;not null;index"`
	ReviewerID string         `gorm:"type:uuid;not null"`
	Decision   ReviewDecision `gorm:"type:varchar(30);not null"`
	Comments   string

	Reviewer *User `gorm:"foreignKey:ReviewerID"`
}
