package database

import (
    "log"

    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/config"
    "github.com/nattw/meetroom_backend/internal/models"
    "github.com/nattw/meetroom_backend/internal/utils"
)

// SeedAdmin creates the initial administrator account when no admin exists.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
    var count int64
    if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
        return err
    }
    if count > 0 {
        return nil
    }

    hashed, err := utils.HashPassword(cfg.AdminPassword)
    if err != nil {
        return err
    }

    admin := models.User{
        Username:     cfg.AdminUsername,
        Email:        cfg.AdminEmail,
        PasswordHash: hashed,
        FirstName:    cfg.AdminFirstName,
        LastName:     cfg.AdminLastName,
        Department:   "IT",
        Role:         models.RoleAdmin,
        Active:       true,
    }
    if err := db.Create(&admin).Error; err != nil {
        return err
    }
    log.Println("Seeded initial admin:", admin.Email)
    return nil
}
