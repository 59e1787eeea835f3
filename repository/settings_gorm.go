package repository

import (
	"context"
	"errors"
	"time"

	pkgError "github.com/AzielCF/az-telebox/pkg/error"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingModel struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (settingModel) TableName() string {
	return "settings"
}

// GormSettingsStore implements settings.ISettingsRepository on GORM.
type GormSettingsStore struct {
	db *gorm.DB
}

func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

func (r *GormSettingsStore) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&settingModel{}); err != nil {
		return pkgError.StorageError("failed to migrate settings table", err)
	}
	return nil
}

func (r *GormSettingsStore) Get(ctx context.Context, key string) (string, error) {
	var model settingModel
	err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", pkgError.StorageError("failed to load setting", err)
	}
	return model.Value, nil
}

func (r *GormSettingsStore) Set(ctx context.Context, key, value string) error {
	model := settingModel{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return pkgError.StorageError("failed to save setting", err)
	}
	return nil
}
