package adminsgorm

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, username, password, role string) (*AdminRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	rec := &AdminRecord{Username: username, PasswordHash: string(hash), Role: role}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Verify checks username/password. Returns ErrInvalidCredentials for both
// unknown user and wrong password so the caller cannot distinguish them.
func (r *Repo) Verify(ctx context.Context, username, password string) (*AdminRecord, error) {
	var rec AdminRecord
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &rec, nil
}

// SeedDefault creates the initial admin account when the table is empty.
func (r *Repo) SeedDefault(ctx context.Context, username, password string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&AdminRecord{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := r.Create(ctx, username, password, "admin")
	return err
}
