package adminsgorm

import "gorm.io/gorm"

// AdminRecord is a dashboard user. These are operators of the CMS, distinct
// from game players and from the service identity used toward the game server.
type AdminRecord struct {
	gorm.Model   `json:"-"`
	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"` // bcrypt
	Role         string `gorm:"size:32;default:admin" json:"role"`
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&AdminRecord{}) }
