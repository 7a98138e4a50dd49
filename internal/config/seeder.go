package config

import (
	"errors"
	"log"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db   *gorm.DB
	seed SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, seed SeedConfig) *Seeder {
	return &Seeder{db: db, seed: seed}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSuperAdmin(); err != nil {
		log.Printf("⚠️ Super-admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSuperAdmin creates the first super-admin when none exists yet
func (s *Seeder) seedSuperAdmin() error {
	var count int64
	if err := s.db.Model(&models.Admin{}).Where("role = ?", domain.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if !password.Valid(s.seed.Password) {
		return errors.New("SUPERADMIN_PASSWORD is missing or shorter than 8 characters")
	}

	hashed, err := password.Hash(s.seed.Password)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Username: s.seed.Username,
		Email:    s.seed.Email,
		Password: hashed,
		Role:     domain.RoleSuperAdmin,
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super-admin created: %s", admin.Username)
	return nil
}
