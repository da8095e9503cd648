package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"yatube/config"
	"yatube/models"
)

// Connect opens the store: SQLite for local runs, PostgreSQL when
// DB_HOST is configured.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DBHost == "" {
		logrus.WithField("path", cfg.DBPath).Info("connecting to SQLite database")
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	} else {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		logrus.WithField("host", cfg.DBHost).Info("connecting to PostgreSQL database")
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		logrus.WithError(err).Error("failed to connect to the database")
		return nil, err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}
	return db, nil
}
