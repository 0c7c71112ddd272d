package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
	"github.com/shopledger/backend/internal/infrastructure/storage"
	"github.com/shopledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var takenAt = time.Date(2024, 6, 20, 18, 5, 9, 0, time.FixedZone("IST", 5*3600+1800))

type fileSnapshotter struct {
	content []byte
	err     error
	paths   []string
}

func (f *fileSnapshotter) Snapshot(ctx context.Context, path string) error {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, f.content, 0o600)
}

type rejectingStorage struct{ err error }

func (r rejectingStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return r.err
}

func TestService_Key(t *testing.T) {
	svc := NewService(nil, nil, "shopledger", nil)
	assert.Equal(t, "backups/shopledger-20240620T123509Z.db", svc.Key(takenAt))

	svc = NewService(nil, nil, "shopledger", nil, WithPrefix("/nightly/"))
	assert.Equal(t, "nightly/shopledger-20240620T123509Z.db", svc.Key(takenAt))
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads the snapshot and removes the staging copy", func(t *testing.T) {
		snap := &fileSnapshotter{content: []byte("SQLite format 3\x00payload")}
		store := storage.NewMemoryObjectStorage()
		svc := NewService(snap, store, "shopledger", zaptest.NewLogger(t),
			WithClock(testutil.FixedClock(takenAt)),
			WithTempDir(t.TempDir()),
		)

		result, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, "backups/shopledger-20240620T123509Z.db", result.Key)
		assert.Equal(t, int64(len(snap.content)), result.Size)
		assert.Equal(t, time.UTC, result.CreatedAt.Location())

		data, ok := store.Object(result.Key)
		require.True(t, ok)
		assert.Equal(t, snap.content, data)

		require.Len(t, snap.paths, 1)
		_, statErr := os.Stat(filepath.Dir(snap.paths[0]))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("no storage configured", func(t *testing.T) {
		svc := NewService(&fileSnapshotter{}, nil, "shopledger", zaptest.NewLogger(t))
		_, err := svc.Run(ctx)
		assert.ErrorIs(t, err, shared.ErrBackupUnavailable)
	})

	t.Run("snapshot failure uploads nothing", func(t *testing.T) {
		snapErr := errors.New("disk full")
		store := storage.NewMemoryObjectStorage()
		svc := NewService(&fileSnapshotter{err: snapErr}, store, "shopledger", zaptest.NewLogger(t), WithTempDir(t.TempDir()))

		_, err := svc.Run(ctx)
		assert.ErrorIs(t, err, snapErr)
		assert.Empty(t, store.Keys())
	})

	t.Run("upload failure", func(t *testing.T) {
		uploadErr := errors.New("access denied")
		svc := NewService(&fileSnapshotter{content: []byte("x")}, rejectingStorage{err: uploadErr}, "shopledger",
			zaptest.NewLogger(t), WithTempDir(t.TempDir()))

		_, err := svc.Run(ctx)
		assert.ErrorIs(t, err, uploadErr)
	})
}

func TestService_RunAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := persistence.Open(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "shop.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewMemoryObjectStorage()
	svc := NewService(db, store, "shopledger", zaptest.NewLogger(t), WithTempDir(t.TempDir()))

	result, err := svc.Run(ctx)
	require.NoError(t, err)

	data, ok := store.Object(result.Key)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(data, []byte("SQLite format 3")))
}
