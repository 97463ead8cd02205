package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/thejasondev/groundops/internal/constants"
)

// SqlxKV implements KVStore on Postgres with plain SQL, for deployments that
// prefer the raw driver over the ORM path.
type SqlxKV struct {
	db *sqlx.DB
}

var _ KVStore = (*SqlxKV)(nil)

// InitPostgres connects with a short retry loop and ensures the blob table
// exists.
func InitPostgres(dsn string) (*SqlxKV, error) {
	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err := db.Exec(constants.CreateBlobTable); err != nil {
		return nil, fmt.Errorf("failed to create kv_blobs: %w", err)
	}
	return &SqlxKV{db: db}, nil
}

func (s *SqlxKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, constants.GetBlobByKey, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch blob %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SqlxKV) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, constants.UpsertBlob, key, value); err != nil {
		return fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return nil
}

func (s *SqlxKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, constants.DeleteBlobByKey, key); err != nil {
		return fmt.Errorf("failed to remove blob %s: %w", key, err)
	}
	return nil
}

func (s *SqlxKV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqlxKV) Close() error {
	return s.db.Close()
}
