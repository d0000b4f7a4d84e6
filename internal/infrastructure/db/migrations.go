package db

import (
	"github.com/cyberio/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// AutoMigrate all models
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Agent{},
		&domain.ScanJob{},
		&domain.ScanEvent{},
	)
	if err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// Listing a user's scans newest first
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scan_jobs_owner_started
		ON scan_jobs (owner_id, started_at)
	`).Error; err != nil {
		return err
	}

	// Timeline of one scan in insertion order
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scan_events_scan_created
		ON scan_events (scan_id, created_at)
	`).Error; err != nil {
		return err
	}

	// Per-user agent lookups
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_agents_user_instance
		ON agents (user_id, instance_id)
	`).Error; err != nil {
		return err
	}

	return nil
}
