package models

// ProjectAttachment stores only the opaque object key; bytes live in object storage.
type ProjectAttachment struct {
	BaseModel
	ProjectID   string `gorm:"type:uuid;not null;index"`
	StorageKey  string `gorm:"not null;uniqueIndex"`
	FileName    string `gorm:"not null"`
	ContentType string
	UploadedBy  string `gorm:"type:uuid"`
}
