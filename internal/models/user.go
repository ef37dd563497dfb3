package models

// User is owned by the identity provider; this service only reads it,
// except for seeding the first admin.
type User struct {
	BaseModel
	Email     string     `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  string
	Role      UserRole   `gorm:"type:varchar(20);not null;index"`
	Status    UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Specialty string     `gorm:"size:120"`

	TeamMemberships []TeamMember `gorm:"foreignKey:UserID"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// Assignable reports whether the user can take project work as an individual.
func (u *User) Assignable() bool {
	return u.Role == UserRoleTalent && u.Status == UserStatusActive
}
