package dronesgorm

import "gorm.io/gorm"

type DroneRecord struct {
	gorm.Model `json:"-"`
	DroneID    string   `gorm:"uniqueIndex;size:64;not null" json:"droneId"`
	PlayerID   string   `gorm:"index;size:64;not null" json:"playerId"`
	Position   Position `gorm:"embedded;embeddedPrefix:pos_" json:"position"`
	Status     string   `gorm:"size:32;default:active" json:"status"`
}

// Position is the drone's location in game-space coordinates (not geographic).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&DroneRecord{}) }
