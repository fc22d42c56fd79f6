package models

import (
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"
)

type Room struct {
    ID          string `gorm:"type:uuid;primaryKey" json:"id"`
    Name        string `gorm:"uniqueIndex" json:"name"`
    Description string `json:"description"`
    Location    string `json:"location"`
    Capacity    int    `json:"capacity"`
    Active      bool   `json:"is_active"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
    if r.ID == "" {
        r.ID = uuid.NewString()
    }
    return nil
}
