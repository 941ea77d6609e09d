// Package identity is the self-hosted stand-in for the managed identity
// service: it owns login credentials and the role claim attached to each
// account. Profile documents in the document store mirror the role but are
// written by the handlers, not here.
package identity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no identity matches the lookup.
var ErrNotFound = errors.New("identity not found")

// Identity is one authenticated account. Role is the access-control claim
// authorization checks read.
type Identity struct {
	UID          string `gorm:"primaryKey;column:uid"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Role         string `gorm:"default:Staff"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Identity) TableName() string { return "identities" }

// Service is the identity contract the handlers depend on.
type Service interface {
	Lookup(ctx context.Context, uid string) (*Identity, error)
	LookupByEmail(ctx context.Context, email string) (*Identity, error)
	Create(ctx context.Context, id *Identity) error
	// SetRoleClaim replaces the role claim on the target identity.
	SetRoleClaim(ctx context.Context, uid, role string) error
	Delete(ctx context.Context, uid string) error
}

// AutoMigrate creates the identities table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Identity{})
}

// GormService is the database-backed Service.
type GormService struct {
	DB *gorm.DB
}

func NewGormService(db *gorm.DB) *GormService {
	return &GormService{DB: db}
}

func (s *GormService) Lookup(ctx context.Context, uid string) (*Identity, error) {
	var id Identity
	err := s.DB.WithContext(ctx).Where("uid = ?", uid).First(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *GormService) LookupByEmail(ctx context.Context, email string) (*Identity, error) {
	var id Identity
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *GormService) Create(ctx context.Context, id *Identity) error {
	return s.DB.WithContext(ctx).Create(id).Error
}

func (s *GormService) SetRoleClaim(ctx context.Context, uid, role string) error {
	res := s.DB.WithContext(ctx).Model(&Identity{}).Where("uid = ?", uid).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormService) Delete(ctx context.Context, uid string) error {
	res := s.DB.WithContext(ctx).Where("uid = ?", uid).Delete(&Identity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
