package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"Courtside/models/postgres"

	_ "github.com/lib/pq"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectGORM returns a GORM DB instance connected to PostgreSQL through
// lib/pq, so unique violations surface as *pq.Error.
func ConnectGORM(settings PostgresSettings, verbose bool) (*gorm.DB, error) {
	return OpenGORM(settings.DSN(), verbose)
}

func OpenGORM(dsn string, verbose bool) (*gorm.DB, error) {
	// NOTE: opening through database/sql keeps the driver on lib/pq instead
	// of the pgx default of gorm.io/driver/postgres
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("Error connecting to PostgreSQL: %v", err)
		return nil, err
	}

	gormConfig := &gorm.Config{}
	if verbose {
		gormConfig.Logger = logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		)
	}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		log.Printf("Error connecting to PostgreSQL with GORM: %v", err)
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Error pinging PostgreSQL: %v", err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL with GORM")
	return db, nil
}

// friendsPairIndex makes one row per unordered pair of players.
const friendsPairIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_friends_pair
	ON friends (LEAST(player_id, friend_id), GREATEST(player_id, friend_id))`

// MigrateDatabase migrates the GORM models to the PostgreSQL database
func MigrateDatabase(db *gorm.DB) error {
	// NOTE: for more info, execute db.Debug().AutoMigrate(...)
	err := db.AutoMigrate(
		postgres.User{},
		postgres.Player{},
		postgres.Club{},
		postgres.Court{},
		postgres.Game{},
		postgres.GamePlayer{},
		postgres.GameInvitation{},
		postgres.Friendship{},
		postgres.PlayerFavorite{})
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := db.Exec(friendsPairIndex).Error; err != nil {
		return fmt.Errorf("create friends pair index: %w", err)
	}
	log.Println("PostgreSQL database migrated successfully")

	return nil
}
