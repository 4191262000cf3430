package droneconfiggorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Get returns the singleton config, creating it with defaults on first read.
func (r *Repo) Get(ctx context.Context) (*SpawnConfigRecord, error) {
	var rec SpawnConfigRecord
	err := r.db.WithContext(ctx).First(&rec, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = DefaultSpawnConfig()
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert overwrites the singleton with the given bounds and stamps
// UpdatedAt. Insert if absent, else full overwrite; last writer wins.
func (r *Repo) Upsert(ctx context.Context, rec SpawnConfigRecord) (*SpawnConfigRecord, error) {
	rec.ID = singletonID
	rec.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
