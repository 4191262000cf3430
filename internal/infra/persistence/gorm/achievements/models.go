package achievementsgorm

import (
	"time"

	"gorm.io/gorm"
)

// Valid achievement types, matching the game client.
var Types = []string{"kills", "hits", "survivalTime", "accuracy"}

func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

type AchievementRecord struct {
	gorm.Model `json:"-"`
	PlayerID   string    `gorm:"index:idx_ach_player_type;size:64;not null" json:"playerId"`
	Type       string    `gorm:"index:idx_ach_player_type;size:32;not null" json:"type"`
	Milestone  float64   `gorm:"not null" json:"milestone"`
	UnlockedAt time.Time `gorm:"index" json:"unlockedAt"`
	NFTTokenID string    `gorm:"size:128" json:"nftTokenId,omitempty"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&AchievementRecord{}) }
