package database

import (
	"fmt"
	"time"

	"labchem/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema. SQL
// warnings go to l.
func Open(driver, dsn string, l *zap.Logger) (db *gorm.DB, err error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// TranslateError turns unique violations into gorm.ErrDuplicatedKey for every dialect.
	if db, err = gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(l),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the users and reagents tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Reagent{},
	)
}

// NewLogger adapts zap for gorm. Missing rows are expected on lookups and are
// not reported.
func NewLogger(l *zap.Logger) gormlogger.Interface {
	return gormlogger.New(zap.NewStdLog(l.Named("gorm")), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
