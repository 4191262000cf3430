package tokenbalancesgorm

import "gorm.io/gorm"

// TokenBalanceRecord tracks per-player reward tokens: pending (earned, not
// yet minted on-chain) and minted.
type TokenBalanceRecord struct {
	gorm.Model     `json:"-"`
	PlayerID       string  `gorm:"uniqueIndex;size:64;not null" json:"playerId"`
	PendingBalance float64 `json:"pendingBalance"`
	MintedBalance  float64 `json:"mintedBalance"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&TokenBalanceRecord{}) }
