package controllers

import (
    "log"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/middleware"
    "github.com/nattw/meetroom_backend/internal/models"
)

type DashboardController struct {
    DB  *gorm.DB
    Now func() time.Time
}

func dayBounds(now time.Time) (time.Time, time.Time) {
    start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
    return start, start.AddDate(0, 0, 1)
}

type dashboardBookingRow struct {
    ID           string    `json:"id"`
    Title        string    `json:"title"`
    StartTime    time.Time `json:"start_time"`
    EndTime      time.Time `json:"end_time"`
    Status       string    `json:"status"`
    RoomName     string    `json:"room_name"`
    RoomLocation string    `json:"room_location"`
    Username     string    `json:"username"`
    CreatedAt    time.Time `json:"created_at"`
}

const dashboardSelect = "b.id, b.title, b.start_time, b.end_time, b.status, r.name AS room_name, r.location AS room_location, b.username, b.created_at"

func (dc *DashboardController) joined() *gorm.DB {
    return dc.DB.Table("bookings AS b").
        Select(dashboardSelect).
        Joins("JOIN rooms r ON r.id = b.room_id")
}

// Overview returns the caller's next confirmed booking for the rest of
// today, or an empty payload when there is none.
func (dc *DashboardController) Overview(c *gin.Context) {
    user, ok := middleware.CurrentUser(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    now := dc.Now()
    _, dayEnd := dayBounds(now)

    var rows []dashboardBookingRow
    err := dc.joined().
        Where("b.user_id = ? AND b.status = ? AND b.start_time >= ? AND b.start_time < ?",
            user.ID, models.BookingStatusConfirmed, now, dayEnd).
        Order("b.start_time ASC").
        Limit(1).
        Scan(&rows).Error
    if err != nil {
        log.Printf("dashboard overview failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    if len(rows) == 0 {
        c.JSON(http.StatusOK, gin.H{"next_booking": nil})
        return
    }
    c.JSON(http.StatusOK, gin.H{"next_booking": rows[0]})
}

type roomStatusRow struct {
    ID       string `json:"id"`
    Name     string `json:"name"`
    Location string `json:"location"`
    Capacity int    `json:"capacity"`
    Status   string `json:"status"`
}

// RoomStatus marks each active room occupied when a confirmed booking spans
// the current instant, available otherwise.
func (dc *DashboardController) RoomStatus(c *gin.Context) {
    now := dc.Now()

    var rooms []models.Room
    if err := dc.DB.Where("active = ?", true).Order("name ASC").Find(&rooms).Error; err != nil {
        log.Printf("dashboard room status failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    var occupied []string
    err := dc.DB.Model(&models.Booking{}).
        Where("status = ? AND start_time <= ? AND end_time > ?", models.BookingStatusConfirmed, now, now).
        Distinct().
        Pluck("room_id", &occupied).Error
    if err != nil {
        log.Printf("dashboard room status failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    occupiedSet := make(map[string]bool, len(occupied))
    for _, id := range occupied {
        occupiedSet[id] = true
    }

    out := make([]roomStatusRow, 0, len(rooms))
    for _, r := range rooms {
        status := "available"
        if occupiedSet[r.ID] {
            status = "occupied"
        }
        out = append(out, roomStatusRow{
            ID:       r.ID,
            Name:     r.Name,
            Location: r.Location,
            Capacity: r.Capacity,
            Status:   status,
        })
    }
    c.JSON(http.StatusOK, gin.H{"data": out})
}

// RecentBookings lists the latest created bookings across all users.
func (dc *DashboardController) RecentBookings(c *gin.Context) {
    var rows []dashboardBookingRow
    err := dc.joined().
        Order("b.created_at DESC").
        Limit(10).
        Scan(&rows).Error
    if err != nil {
        log.Printf("dashboard recent bookings failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ActiveBookings lists confirmed bookings in progress right now.
func (dc *DashboardController) ActiveBookings(c *gin.Context) {
    now := dc.Now()

    var rows []dashboardBookingRow
    err := dc.joined().
        Where("b.status = ? AND b.start_time <= ? AND b.end_time > ?", models.BookingStatusConfirmed, now, now).
        Order("b.end_time ASC").
        Scan(&rows).Error
    if err != nil {
        log.Printf("dashboard active bookings failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows})
}

// MyBookingsToday lists the caller's bookings for the current calendar day.
func (dc *DashboardController) MyBookingsToday(c *gin.Context) {
    user, ok := middleware.CurrentUser(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    now := dc.Now()
    dayStart, dayEnd := dayBounds(now)

    var rows []dashboardBookingRow
    err := dc.joined().
        Where("b.user_id = ? AND b.start_time >= ? AND b.start_time < ?", user.ID, dayStart, dayEnd).
        Order("b.start_time ASC").
        Scan(&rows).Error
    if err != nil {
        log.Printf("dashboard my bookings today failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows})
}
