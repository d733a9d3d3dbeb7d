package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"medexpenses/internal/models"
)

func MigrateDatabase(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		&models.Region{},
		&models.Sex{},
		&models.Smoker{},
		&models.UserRole{},
		&models.Patient{},
		&models.AppUser{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := SeedLookups(db); err != nil {
		return err
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// SeedLookups inserts the static reference rows once. Ids start at 0, so the
// rows are written with explicit keys instead of through Create, which would
// treat a zero key as unset.
func SeedLookups(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, r := range models.DefaultRegions {
			if err := insertLookup(tx, "region", "region_name", r.ID, r.RegionName); err != nil {
				return err
			}
		}
		for _, s := range models.DefaultSexes {
			if err := insertLookup(tx, "sex", "sex_label", s.ID, s.SexLabel); err != nil {
				return err
			}
		}
		for _, s := range models.DefaultSmokers {
			if err := insertLookup(tx, "smoker", "is_smoker", s.ID, s.IsSmoker); err != nil {
				return err
			}
		}
		for _, r := range models.DefaultRoles {
			if err := insertLookup(tx, "user_role", "role_name", r.ID, r.RoleName); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertLookup(tx *gorm.DB, table, column string, id uint, label string) error {
	sql := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (?, ?) ON CONFLICT (id) DO NOTHING", table, column)
	if err := tx.Exec(sql, id, label).Error; err != nil {
		return fmt.Errorf("seed %s %d: %w", table, id, err)
	}
	return nil
}
