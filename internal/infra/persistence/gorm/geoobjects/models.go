package geoobjectsgorm

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GeoObjectRecord is a world-anchored game entity (weapon, target, powerup)
// placed at geographic coordinates. Assignment to players is tracked by the
// game server, not here; this record is CMS bookkeeping only.
type GeoObjectRecord struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	ObjectID  string         `gorm:"uniqueIndex;size:64;not null" json:"id"`
	Type      string         `gorm:"index;size:32;not null" json:"type"` // weapon|target|powerup
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Altitude  float64        `json:"altitude"`
	Active    bool           `gorm:"default:true" json:"active"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&GeoObjectRecord{}) }
