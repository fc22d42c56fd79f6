package database

import (
    "fmt"
    "log"
    "time"

    "gorm.io/driver/postgres"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/config"
    "github.com/nattw/meetroom_backend/internal/models"
)

// Connect opens the database with a bounded connection pool, retrying a
// fixed number of times with linear backoff before giving up. The returned
// handle is injected everywhere; nothing reads a package-level pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
    dsn := fmt.Sprintf(
        "host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
        cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
    )

    backoff := time.Duration(cfg.DBConnectBackoffS) * time.Second
    var db *gorm.DB
    var err error
    for attempt := 1; attempt <= cfg.DBConnectAttempts; attempt++ {
        db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
        if err == nil {
            break
        }
        log.Printf("database connect attempt %d/%d failed: %v", attempt, cfg.DBConnectAttempts, err)
        if attempt < cfg.DBConnectAttempts {
            time.Sleep(time.Duration(attempt) * backoff)
        }
    }
    if err != nil {
        return nil, err
    }

    sqlDB, err := db.DB()
    if err != nil {
        return nil, err
    }
    sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
    sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
    sqlDB.SetConnMaxLifetime(time.Hour)

    return db, nil
}

func Migrate(db *gorm.DB) error {
    return db.AutoMigrate(
        &models.User{},
        &models.Room{},
        &models.Booking{},
        &models.BookingAttendee{},
        &models.RefreshToken{},
    )
}
