package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/config"
)

// UploadService saves multipart image uploads to local disk and
// removes them when their owning row goes away.
type UploadService struct {
	cfg    config.UploadConfig
	logger *logrus.Logger
}

// NewUploadService creates a new UploadService and ensures the upload
// directory exists.
func NewUploadService(cfg config.UploadConfig, logger *logrus.Logger) (*UploadService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadService{cfg: cfg, logger: logger}, nil
}

// Save writes the uploaded file to disk under a generated name and
// returns the public path clients use to fetch it.
func (s *UploadService) Save(c *gin.Context, file *multipart.FileHeader, field string) (string, error) {
	if file.Size > s.cfg.MaxSizeMB*1024*1024 {
		return "", fmt.Errorf("file exceeds the %dMB upload limit", s.cfg.MaxSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	name := fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), ext)
	dst := filepath.Join(s.cfg.Dir, name)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}

	return path.Join(s.cfg.PublicPath, name), nil
}

// Remove deletes a previously saved upload given its public path. A
// missing file is not an error; the row is the source of truth.
func (s *UploadService) Remove(publicPath string) {
	if publicPath == "" || !strings.HasPrefix(publicPath, s.cfg.PublicPath) {
		return
	}

	name := path.Base(publicPath)
	if err := os.Remove(filepath.Join(s.cfg.Dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).WithField("file", name).Warn("Failed to remove upload")
	}
}
