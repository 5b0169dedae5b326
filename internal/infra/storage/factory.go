package storage

import (
	"context"
	"fmt"

	"attendance_exception_bot/internal/domain/attendance"
	"attendance_exception_bot/internal/infra/config"
	idb "attendance_exception_bot/internal/infra/database"
)

// Compile-time interface checks.
var (
	_ attendance.Backend = (*MemoryBackend)(nil)
	_ attendance.Backend = (*FileBackend)(nil)
	_ attendance.Backend = (*SQLiteBackend)(nil)
	_ attendance.Backend = (*PostgresBackend)(nil)
	_ attendance.Backend = (*S3Backend)(nil)
)

// Open builds the backend selected by cfg.StorageDriver. The returned close func
// releases whatever connection the backend holds and is never nil.
func Open(ctx context.Context, cfg *config.AppConfig) (attendance.Backend, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return NewMemoryBackend(), noop, nil
	case config.DriverFile, "":
		b, err := NewFileBackend(cfg.StorageFileDir)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case config.DriverSQLite:
		b, err := NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	case config.DriverPostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		b, err := NewPostgresBackend(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return b, db.Close, nil
	case config.DriverS3:
		b, err := NewS3Backend(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Prefix:          cfg.S3Prefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Describe names where b keeps its data, for startup logs.
func Describe(b attendance.Backend) string {
	switch v := b.(type) {
	case *MemoryBackend:
		return "memory"
	case *FileBackend:
		return "file:" + v.Dir()
	case *SQLiteBackend:
		return "sqlite:" + v.Path()
	case *PostgresBackend:
		return "postgres"
	case *S3Backend:
		return "s3://" + v.bucket + "/" + v.prefix
	default:
		return fmt.Sprintf("%T", b)
	}
}
