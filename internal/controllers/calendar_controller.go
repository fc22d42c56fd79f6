package controllers

import (
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/models"
)

type CalendarController struct {
    DB  *gorm.DB
    Now func() time.Time
}

type calendarRow struct {
    ID           string    `json:"id"`
    Title        string    `json:"title"`
    StartTime    time.Time `json:"start_time"`
    EndTime      time.Time `json:"end_time"`
    Status       string    `json:"status"`
    RoomName     string    `json:"room_name"`
    RoomLocation string    `json:"room_location"`
    Username     string    `json:"username"`
    Department   string    `json:"department"`
}

type calendarEntry struct {
    calendarRow
    Color string `json:"color"`
}

// calendarStatuses are the booking states the calendar shows.
var calendarStatuses = []string{models.BookingStatusConfirmed, models.BookingStatusPending}

// calendarRange resolves the requested window: the single day when date is
// given, otherwise 30 days back and 60 days ahead of now.
func calendarRange(now time.Time, dateParam string) (time.Time, time.Time, error) {
    if dateParam == "" {
        return now.AddDate(0, 0, -30), now.AddDate(0, 0, 60), nil
    }
    day, err := time.ParseInLocation("2006-01-02", dateParam, time.Local)
    if err != nil {
        return time.Time{}, time.Time{}, err
    }
    return day, day.AddDate(0, 0, 1), nil
}

func statusColor(status string) string {
    switch status {
    case models.BookingStatusConfirmed:
        return "bg-green-500"
    case models.BookingStatusPending:
        return "bg-yellow-500"
    case models.BookingStatusCancelled:
        return "bg-red-500"
    }
    return "bg-gray-500"
}

const calendarSelect = "b.id, b.title, b.start_time, b.end_time, b.status, r.name AS room_name, r.location AS room_location, b.username, u.department"

func (cc *CalendarController) baseQuery() *gorm.DB {
    return cc.DB.Table("bookings AS b").
        Select(calendarSelect).
        Joins("JOIN rooms r ON r.id = b.room_id").
        Joins("LEFT JOIN users u ON u.id = b.user_id").
        Order("b.start_time ASC")
}

// View returns calendar entries. With ?date= it lists that day's bookings
// that have not ended yet; without it, a rolling window of 30 days back and
// 60 days ahead. Cancelled and already-ended bookings never appear in either
// mode.
func (cc *CalendarController) View(c *gin.Context) {
    now := cc.Now()

    from, to, err := calendarRange(now, strings.TrimSpace(c.Query("date")))
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
        return
    }

    q := cc.baseQuery().
        Where("b.status IN ?", calendarStatuses).
        Where("b.end_time >= ?", now).
        Where("b.start_time >= ? AND b.start_time < ?", from, to)

    var rows []calendarRow
    if err := q.Scan(&rows).Error; err != nil {
        log.Printf("calendar query failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    entries := make([]calendarEntry, 0, len(rows))
    for _, r := range rows {
        entries = append(entries, calendarEntry{calendarRow: r, Color: statusColor(r.Status)})
    }
    c.JSON(http.StatusOK, gin.H{"data": entries, "total": len(entries)})
}
