package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVBlob is the single-table schema backing the GORM KV store.
type KVBlob struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (KVBlob) TableName() string {
	return "kv_blobs"
}

// GormKV implements KVStore on an embedded SQLite file or a Postgres server
// via GORM.
type GormKV struct {
	db *gorm.DB
}

var _ KVStore = (*GormKV)(nil)

// InitSQLiteORM opens (or creates) the SQLite database at path and migrates
// the blob table.
func InitSQLiteORM(path string) (*GormKV, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
	}
	return newGormKV(db)
}

// InitPostgresORM connects to Postgres and migrates the blob table.
func InitPostgresORM(dsn string) (*GormKV, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newGormKV(db)
}

func newGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&KVBlob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_blobs: %w", err)
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var blob KVBlob
	err := g.db.WithContext(ctx).
		Where("key = ?", key).
		First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch blob %s: %w", key, err)
	}
	return blob.Value, true, nil
}

func (g *GormKV) Set(ctx context.Context, key, value string) error {
	blob := KVBlob{Key: key, Value: value}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return nil
}

func (g *GormKV) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Delete(&KVBlob{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove blob %s: %w", key, err)
	}
	return nil
}

func (g *GormKV) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormKV) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
