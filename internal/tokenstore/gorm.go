package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storageItem struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (storageItem) TableName() string { return "storage_items" }

// GormStore keeps one row per key; it backs the default sqlite file and the
// postgres driver.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&storageItem{}); err != nil {
		return nil, fmt.Errorf("migrate storage_items: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key Key) (string, bool, error) {
	var item storageItem
	err := s.DB.WithContext(ctx).Where(&storageItem{Key: string(key)}).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key Key, value string) error {
	item := storageItem{Key: string(key), Value: value}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key Key) error {
	if err := s.DB.WithContext(ctx).Where(&storageItem{Key: string(key)}).Delete(&storageItem{}).Error; err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
