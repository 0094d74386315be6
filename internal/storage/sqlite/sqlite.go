package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fenggwsx/SlashVault/internal/config"
	"github.com/fenggwsx/SlashVault/internal/storage"
)

// Store is a GORM-backed SQLite implementation of storage.Store.
type Store struct {
	db *gorm.DB
}

type preferenceModel struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (preferenceModel) TableName() string {
	return "preferences"
}

// NewStore opens a SQLite database at the provided path.
func NewStore(cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate applies schema updates.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&preferenceModel{})
}

// GetPreference retrieves a value by key.
func (s *Store) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var model preferenceModel
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.Value, true, nil
}

// PutPreference inserts or replaces the value stored under key.
func (s *Store) PutPreference(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("empty preference key")
	}
	model := preferenceModel{Name: key, Value: value}
	var existing preferenceModel
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&existing).Error
	switch {
	case err == nil:
		model.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return s.db.WithContext(ctx).Save(&model).Error
}

var _ storage.Store = (*Store)(nil)
