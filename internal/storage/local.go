package storage

import (
	"context"
	"strings"
	"time"
)

// LocalSigner returns unsigned URLs under a base path for development setups.
type LocalSigner struct {
	baseURL string
}

func NewLocalSigner(baseURL string) *LocalSigner {
	return &LocalSigner{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalSigner) SignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return s.baseURL + "/" + key, nil
}

func (s *LocalSigner) SignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return s.baseURL + "/" + key, nil
}
