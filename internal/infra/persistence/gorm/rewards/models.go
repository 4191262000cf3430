package rewardsgorm

import (
	"time"

	"gorm.io/gorm"
)

var Types = []string{"HIT", "KILL", "AD_WATCH", "DAILY_LOGIN", "ACHIEVEMENT"}

func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

type RewardRecord struct {
	gorm.Model `json:"-"`
	PlayerID   string    `gorm:"index:idx_reward_player_ts;size:64;not null" json:"playerId"`
	RewardType string    `gorm:"size:32;not null" json:"rewardType"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Timestamp  time.Time `gorm:"index:idx_reward_player_ts" json:"timestamp"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&RewardRecord{}) }
