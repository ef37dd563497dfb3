package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Signer issues time-limited URLs for objects the API never touches directly.
type Signer interface {
	SignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	SignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type Config struct {
	Type      string // s3, local
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // custom S3-compatible endpoint
	BaseURL   string // local only
}

func NewSigner(cfg Config) (Signer, error) {
	switch cfg.Type {
	case "local":
		return NewLocalSigner(cfg.BaseURL), nil
	case "s3":
		return NewS3Signer(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFileName keeps letters, digits, dots and dashes.
func SanitizeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(path.Base(name), "")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// AttachmentKey builds projects/<projectID>/<uuid>-<name>.
func AttachmentKey(projectID, fileName string) string {
	return fmt.Sprintf("projects/%s/%s-%s", projectID, uuid.NewString(), SanitizeFileName(fileName))
}
