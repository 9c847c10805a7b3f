package persistence

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erplink/backend/internal/infrastructure/connector"
)

// Setting is one durable key/value pair. The token manager writes refreshed
// credentials here so later process instances skip the initial grant.
type Setting struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"size:2048"`
	UpdatedAt time.Time
}

// GormSettingsRepository implements connector.SettingsStore using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository migrates the settings table and returns the
// repository.
func NewGormSettingsRepository(db *gorm.DB) (*GormSettingsRepository, error) {
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, err
	}
	return &GormSettingsRepository{db: db}, nil
}

// Put writes a setting, replacing any previous value.
func (r *GormSettingsRepository) Put(key, value string) error {
	setting := Setting{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// Get returns the value for key, or "" when the key has never been written.
func (r *GormSettingsRepository) Get(key string) (string, error) {
	var setting Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

var _ connector.SettingsStore = (*GormSettingsRepository)(nil)
