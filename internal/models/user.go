package models

import (
    "strings"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"
)

const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

type User struct {
    ID           string `gorm:"type:uuid;primaryKey"`
    Username     string `gorm:"uniqueIndex"`
    Email        string `gorm:"uniqueIndex"`
    PasswordHash string
    FirstName    string
    LastName     string
    Phone        string
    Department   string
    Role         string
    Active       bool
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
    if u.ID == "" {
        u.ID = uuid.NewString()
    }
    return nil
}

// DisplayName is the name snapshot written onto bookings at creation time.
func (u *User) DisplayName() string {
    return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func IsValidRole(role string) bool {
    switch role {
    case RoleUser, RoleAdmin:
        return true
    }
    return false
}
