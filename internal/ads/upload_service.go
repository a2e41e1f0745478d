package ads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/config"
	adbmetrics "github.com/adboardhq/adboard/internal/metrics"
	"github.com/adboardhq/adboard/internal/models"
)

// allowedUploadTypes maps accepted MIME types to the metric label used
// for them.
var allowedUploadTypes = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"video/mp4":  "video",
	"video/avi":  "video",
}

// UploadService stores creative assets on local disk and returns the
// URL they are served under. Production deployments would swap this for
// object storage behind the same result shape.
type UploadService struct {
	dir      string
	maxBytes int64
	metrics  *adbmetrics.Metrics
	logger   *zap.Logger
}

func NewUploadService(cfg config.UploadConfig, m *adbmetrics.Metrics, logger *zap.Logger) *UploadService {
	return &UploadService{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
		metrics:  m,
		logger:   logger,
	}
}

// MaxBytes returns the configured upload size limit.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates and persists one uploaded file. The stored name is
// prefixed with a millisecond timestamp so repeated uploads of the same
// file never collide.
func (s *UploadService) Save(filename, mimeType string, size int64, r io.Reader) (*models.UploadResult, error) {
	kind, ok := allowedUploadTypes[mimeType]
	if !ok {
		return nil, NewValidationError("unsupported file type")
	}
	if size > s.maxBytes {
		return nil, NewValidationError("file exceeds the size limit")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return nil, NewValidationError("filename is invalid")
	}
	stored := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)
	path := filepath.Join(s.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, NewValidationError("file exceeds the size limit")
	}

	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(kind).Inc()
		s.metrics.UploadBytes.Add(float64(written))
	}
	s.logger.Info("creative asset uploaded",
		zap.String("file", stored),
		zap.Int64("bytes", written),
		zap.String("type", mimeType),
	)

	return &models.UploadResult{
		URL:  "/uploads/" + stored,
		Name: base,
		Size: written,
		Type: mimeType,
	}, nil
}
