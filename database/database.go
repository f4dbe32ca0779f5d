package database

import (
	"errors"
	"fmt"

	"athleticamp/config"
	"athleticamp/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// DbInstance owns the connection pool for the lifetime of the process.
type DbInstance struct {
	Db *gorm.DB
}

// ConnectDb opens the configured database, sizes the pool and runs migrations.
func ConnectDb(cfg *config.Config, log *zap.Logger) (*DbInstance, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// A single writer keeps sqlite from reporting "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(0)

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}

	return &DbInstance{Db: db}, nil
}

// Close releases the pool.
func (d *DbInstance) Close() error {
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		// DBName is used verbatim as the sqlite DSN, e.g. "camp.db" or "file::memory:?cache=shared".
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.DBDriver)
	}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running Migrations...")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Migrations completed successfully.")
	return nil
}

// SeedAdmin makes sure the configured bootstrap account exists with the admin role.
func SeedAdmin(db *gorm.DB, email string) error {
	if email == "" {
		return nil
	}
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&models.User{Email: email, Role: models.RoleAdmin}).Error
	case err != nil:
		return err
	case user.Role != models.RoleAdmin:
		return db.Model(&user).Update("role", models.RoleAdmin).Error
	}
	return nil
}
