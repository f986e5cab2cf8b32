package services

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jusfiscal/config"
	"jusfiscal/models"
)

// testDB opens a private in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// An unnamed in-memory database is private to its connection, so
	// the pool must stay at a single one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&models.Lead{}, &models.LeadInteraction{},
		&models.ContentTemplate{}, &models.ContentTopic{}, &models.GeneratedContent{},
		&models.PublicationChannel{}, &models.ScheduledPublication{}, &models.PublicationLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		RegistryBaseURL:   "http://127.0.0.1:0",
		RegistryTimeoutMS: 2000,
		SweepSchedule:     "*/5 * * * *",
		SMTPFrom:          "contato@jusfiscal.com.br",
	}
}

func testLogger() *zap.Logger { return zap.NewNop() }
