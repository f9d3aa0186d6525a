package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seo-insight/backend/config"
	"github.com/seo-insight/backend/logging"
)

// PostgresService owns the gorm connection to the analysis database.
type PostgresService struct {
	db  *gorm.DB
	log *logging.Logger
}

// NewPostgresService connects using the POSTGRES_* environment variables and
// returns the service. Schema migration is a separate, explicit step.
func NewPostgresService(log *logging.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := config.Get("POSTGRES_HOST", "localhost")
	port := config.Get("POSTGRES_PORT", "5432")
	user := config.Get("POSTGRES_USER", "postgres")
	password := config.Get("POSTGRES_PASSWORD", "")
	name := config.Get("POSTGRES_NAME", "seo_insight")
	sslmode := config.Get("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)

	serviceLog.Info("connecting to postgres", "host", host, "database", name)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// AutoMigrateAll creates or updates the tables this service owns.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("migrating postgres tables")
	if err := s.db.AutoMigrate(&PageAnalysis{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
