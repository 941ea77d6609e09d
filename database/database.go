package database

import (
	"context"
	"os"

	"mercato-backend/identity"
	"mercato-backend/logger"
	"mercato-backend/models"
	"mercato-backend/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=mercato port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := store.AutoMigrate(db); err != nil {
		return err
	}
	return identity.AutoMigrate(db)
}

// CreateDefaultAdmin seeds an Admin identity and its users/{uid} profile
// document when none exists yet. Idempotent; this replaces the one-time
// bootstrap script of the original deployment.
func CreateDefaultAdmin(ids identity.Service, st store.Store) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@mercato.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	ctx := context.Background()
	if _, err := ids.LookupByEmail(ctx, adminEmail); err == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := identity.Identity{
		UID:          uuid.NewString(),
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Name:         "Admin User",
		Role:         models.RoleAdmin,
	}
	if err := ids.Create(ctx, &admin); err != nil {
		return err
	}

	profile, err := store.DataFrom(models.UserProfile{
		Name:  admin.Name,
		Email: admin.Email,
		Role:  admin.Role,
	})
	if err != nil {
		return err
	}
	if err := st.BatchWrite(ctx, []store.Write{
		store.SetMerge(models.UserPath(admin.UID), profile),
	}); err != nil {
		return err
	}

	log := logger.WithComponent("database")
	log.Info().Str("email", adminEmail).Msg("default admin created")
	return nil
}
