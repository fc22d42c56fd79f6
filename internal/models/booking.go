package models

import (
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"
)

const (
    BookingStatusPending   = "pending"
    BookingStatusConfirmed = "confirmed"
    BookingStatusApproved  = "approved"
    BookingStatusCancelled = "cancelled"
)

// ActiveBookingStatuses are the statuses that occupy a room's schedule and
// feed the notification windows.
var ActiveBookingStatuses = []string{BookingStatusApproved, BookingStatusConfirmed}

type Booking struct {
    ID     string `gorm:"type:uuid;primaryKey" json:"id"`
    RoomID string `gorm:"type:uuid;index" json:"room_id"`
    UserID string `gorm:"type:uuid;index" json:"user_id"`
    // Username holds the requester's display name as it was at booking time.
    // Profile edits after the fact do not rewrite history.
    Username       string    `json:"username"`
    Title          string    `json:"title"`
    Description    string    `json:"description"`
    StartTime      time.Time `gorm:"index" json:"start_time"`
    EndTime        time.Time `json:"end_time"`
    AttendeesCount int       `json:"attendees_count"`
    Status         string    `gorm:"index" json:"status"`
    CreatedAt      time.Time `json:"created_at"`
    UpdatedAt      time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
    if b.ID == "" {
        b.ID = uuid.NewString()
    }
    return nil
}

func IsValidBookingStatus(s string) bool {
    switch s {
    case BookingStatusPending, BookingStatusConfirmed, BookingStatusApproved, BookingStatusCancelled:
        return true
    }
    return false
}

type BookingAttendee struct {
    ID        string `gorm:"type:uuid;primaryKey" json:"id"`
    BookingID string `gorm:"type:uuid;index" json:"booking_id"`
    Email     string `json:"email"`
    Name      string `json:"name"`
    CreatedAt time.Time `json:"created_at"`
}

func (a *BookingAttendee) BeforeCreate(tx *gorm.DB) (err error) {
    if a.ID == "" {
        a.ID = uuid.NewString()
    }
    return nil
}
