package droneconfiggorm

import (
	"time"

	"gorm.io/gorm"
)

// singletonID is the fixed primary key of the one spawn-config row. The
// record is addressed by this key, never by "first row found".
const singletonID = 1

// SpawnConfigRecord is the local copy of the drone spawn bounding box. The
// authoritative copy lives on the game server; this row reflects the last
// config this backend read from or tried to push to it.
type SpawnConfigRecord struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	XMin      float64   `json:"xMin"`
	XMax      float64   `json:"xMax"`
	YMin      float64   `json:"yMin"`
	YMax      float64   `json:"yMax"`
	ZMin      float64   `json:"zMin"`
	ZMax      float64   `json:"zMax"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSpawnConfig matches the game client's initial spawn volume.
func DefaultSpawnConfig() SpawnConfigRecord {
	return SpawnConfigRecord{ID: singletonID, XMin: -100, XMax: 100, YMin: 10, YMax: 50, ZMin: -100, ZMax: 100}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&SpawnConfigRecord{}) }
