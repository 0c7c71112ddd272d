package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultPrefix is the object key prefix used when none is configured
const DefaultPrefix = "backups"

// Snapshotter writes a consistent copy of the database to path
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// ObjectStorage receives backup files
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Result describes a completed backup
type Result struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service snapshots the database and uploads the copy to object storage
type Service struct {
	db      Snapshotter
	storage ObjectStorage
	appName string
	prefix  string
	tempDir string
	now     func() time.Time
	logger  *zap.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithPrefix sets the object key prefix
func WithPrefix(prefix string) Option {
	return func(s *Service) {
		if p := strings.Trim(prefix, "/"); p != "" {
			s.prefix = p
		}
	}
}

// WithTempDir sets where snapshots are staged before upload
func WithTempDir(dir string) Option {
	return func(s *Service) {
		s.tempDir = dir
	}
}

// WithClock sets the clock used to name backups
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new backup Service
func NewService(db Snapshotter, storage ObjectStorage, appName string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:      db,
		storage: storage,
		appName: appName,
		prefix:  DefaultPrefix,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the object key for a backup taken at t
func (s *Service) Key(t time.Time) string {
	return fmt.Sprintf("%s/%s-%s.db", s.prefix, s.appName, t.UTC().Format("20060102T150405Z"))
}

// Run takes a snapshot and uploads it. The staged file is always removed.
func (s *Service) Run(ctx context.Context) (result *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "backup", "run")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if s.storage == nil {
		return nil, shared.NewDomainError(shared.ErrBackupUnavailable.Code, "Backup storage is not configured")
	}

	dir, err := os.MkdirTemp(s.tempDir, "backup-")
	if err != nil {
		return nil, fmt.Errorf("failed to create backup staging dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("Failed to remove backup staging dir", zap.String("dir", dir), zap.Error(rmErr))
		}
	}()

	takenAt := s.now()
	path := filepath.Join(dir, "snapshot.db")
	if err := s.db.Snapshot(ctx, path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	key := s.Key(takenAt)
	if err := s.storage.Upload(ctx, key, f, info.Size(), "application/x-sqlite3"); err != nil {
		s.logger.Error("Backup upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBackupKey, key, telemetry.SpanAttrBackupSize, info.Size())
	s.logger.Info("Backup uploaded",
		zap.String("key", key),
		zap.Int64("size", info.Size()),
	)
	return &Result{Key: key, Size: info.Size(), CreatedAt: takenAt.UTC()}, nil
}
