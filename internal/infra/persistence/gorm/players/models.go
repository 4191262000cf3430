package playersgorm

import "gorm.io/gorm"

// PlayerRecord mirrors the live game's player document: a stable external
// PlayerID plus cumulative combat stats maintained by the game server.
type PlayerRecord struct {
	gorm.Model    `json:"-"`
	PlayerID      string `gorm:"uniqueIndex;size:64;not null" json:"playerId"`
	WalletAddress string `gorm:"size:128" json:"walletAddress,omitempty"`
	PushToken     string `gorm:"size:256" json:"pushToken,omitempty"`
	Stats         Stats  `gorm:"embedded;embeddedPrefix:stat_" json:"stats"`
}

type Stats struct {
	Kills     int     `json:"kills"`
	Hits      int     `json:"hits"`
	Deaths    int     `json:"deaths"`
	DroneHits int     `json:"droneHits"`
	Accuracy  float64 `json:"accuracy"` // percentage, 0..100
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&PlayerRecord{}) }
