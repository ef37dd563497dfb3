package dto

import "time"

type SignUploadRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255,safe-filename"`
	ContentType string `json:"content_type" validate:"required,max=127"`
}

type SignedUploadResponse struct {
	AttachmentID string    `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	StorageKey   string    `json:"storage_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
