package controllers

import (
    "errors"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/booking"
    "github.com/nattw/meetroom_backend/internal/middleware"
)

type BookingController struct {
    DB        *gorm.DB
    Scheduler *booking.Scheduler
}

func actorFrom(c *gin.Context) (booking.Actor, bool) {
    user, ok := middleware.CurrentUser(c)
    if !ok {
        return booking.Actor{}, false
    }
    return booking.Actor{
        UserID:      user.ID,
        DisplayName: user.DisplayName(),
        Role:        user.Role,
    }, true
}

func respondSchedulerError(c *gin.Context, err error) {
    var vErr *booking.ValidationError
    switch {
    case errors.As(err, &vErr):
        c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "fields": vErr.Fields})
    case errors.Is(err, booking.ErrRoomNotFound):
        c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
    case errors.Is(err, booking.ErrRoomUnavailable):
        c.JSON(http.StatusNotFound, gin.H{"error": "room is not available"})
    case errors.Is(err, booking.ErrNotFound):
        c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
    case errors.Is(err, booking.ErrCapacityExceeded):
        c.JSON(http.StatusBadRequest, gin.H{"error": "attendees exceed room capacity"})
    case errors.Is(err, booking.ErrTimeConflict):
        c.JSON(http.StatusConflict, gin.H{"error": "time slot is already booked"})
    case errors.Is(err, booking.ErrForbidden):
        c.JSON(http.StatusForbidden, gin.H{"error": "operation not allowed"})
    default:
        log.Printf("booking store error: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
    }
}

type attendeeRequest struct {
    Email string `json:"email"`
    Name  string `json:"name"`
}

type createBookingRequest struct {
    RoomID         string            `json:"roomId" binding:"required"`
    Title          string            `json:"title" binding:"required"`
    Description    string            `json:"description"`
    Date           string            `json:"date" binding:"required"`
    StartTime      string            `json:"startTime" binding:"required"`
    EndTime        string            `json:"endTime" binding:"required"`
    AttendeesCount int               `json:"attendeesCount"`
    Attendees      []attendeeRequest `json:"attendees"`
}

func parseLocalDateTime(date, clock string) (time.Time, error) {
    return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}

func (bc *BookingController) Create(c *gin.Context) {
    actor, ok := actorFrom(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }

    var req createBookingRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    start, err := parseLocalDateTime(req.Date, req.StartTime)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or start time"})
        return
    }
    end, err := parseLocalDateTime(req.Date, req.EndTime)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time"})
        return
    }

    in := booking.CreateInput{
        RoomID:         req.RoomID,
        Title:          req.Title,
        Description:    req.Description,
        Start:          start,
        End:            end,
        AttendeesCount: req.AttendeesCount,
    }
    for _, a := range req.Attendees {
        in.Attendees = append(in.Attendees, booking.AttendeeInput{Email: a.Email, Name: a.Name})
    }

    created, err := bc.Scheduler.Create(c.Request.Context(), actor, in)
    if err != nil {
        respondSchedulerError(c, err)
        return
    }

    c.JSON(http.StatusCreated, gin.H{
        "message": "booking created",
        "data": gin.H{
            "booking_id": created.ID,
            "title":      created.Title,
            "start_time": created.StartTime,
            "end_time":   created.EndTime,
            "status":     created.Status,
        },
    })
}

type bookingListRow struct {
    ID        string    `json:"id"`
    Title     string    `json:"title"`
    StartTime time.Time `json:"start_time"`
    EndTime   time.Time `json:"end_time"`
    Status    string    `json:"status"`
    RoomName  string    `json:"room_name"`
    Username  string    `json:"username"`
}

func (bc *BookingController) List(c *gin.Context) {
    search := strings.TrimSpace(c.Query("search"))
    like := "%" + search + "%"

    var rows []bookingListRow
    err := bc.DB.Table("bookings AS b").
        Select("b.id, b.title, b.start_time, b.end_time, b.status, r.name AS room_name, b.username").
        Joins("JOIN rooms r ON r.id = b.room_id").
        Where("b.title ILIKE ? OR b.username ILIKE ?", like, like).
        Order("b.start_time DESC").
        Scan(&rows).Error
    if err != nil {
        log.Printf("list bookings failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows})
}

type updateBookingRequest struct {
    Title          *string `json:"title"`
    Description    *string `json:"description"`
    RoomName       *string `json:"roomName"`
    Date           *string `json:"date"`
    StartTime      *string `json:"startTime"`
    EndTime        *string `json:"endTime"`
    AttendeesCount *int    `json:"attendeesCount"`
    Status         *string `json:"status"`
}

func (bc *BookingController) Update(c *gin.Context) {
    actor, ok := actorFrom(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
        return
    }

    var req updateBookingRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    in := booking.UpdateInput{
        Title:          req.Title,
        Description:    req.Description,
        RoomName:       req.RoomName,
        AttendeesCount: req.AttendeesCount,
        Status:         req.Status,
    }

    // Time changes arrive as date + wall-clock strings; all three travel
    // together.
    if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
        if req.Date == nil || req.StartTime == nil || req.EndTime == nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "date, startTime and endTime must be provided together"})
            return
        }
        start, err := parseLocalDateTime(*req.Date, *req.StartTime)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or start time"})
            return
        }
        end, err := parseLocalDateTime(*req.Date, *req.EndTime)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time"})
            return
        }
        in.Start = &start
        in.End = &end
    }

    updated, err := bc.Scheduler.Update(c.Request.Context(), actor, id, in)
    if err != nil {
        respondSchedulerError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "booking updated", "data": updated})
}

func (bc *BookingController) Delete(c *gin.Context) {
    actor, ok := actorFrom(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
        return
    }

    if err := bc.Scheduler.Delete(c.Request.Context(), actor, id); err != nil {
        respondSchedulerError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}

type myBookingRow struct {
    ID             string    `json:"id"`
    Title          string    `json:"title"`
    Description    string    `json:"description"`
    StartTime      time.Time `json:"start_time"`
    EndTime        time.Time `json:"end_time"`
    AttendeesCount int       `json:"attendees_count"`
    Status         string    `json:"status"`
    CreatedAt      time.Time `json:"created_at"`
    RoomName       string    `json:"room_name"`
    RoomLocation   string    `json:"room_location"`
}

func (bc *BookingController) MyBookings(c *gin.Context) {
    user, ok := middleware.CurrentUser(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }

    page := 1
    limit := 10
    if v := c.Query("page"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            page = n
        }
    }
    if v := c.Query("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            limit = n
        }
    }

    base := bc.DB.Table("bookings AS b").
        Joins("JOIN rooms r ON r.id = b.room_id").
        Where("b.user_id = ?", user.ID)

    var total int64
    if err := base.Count(&total).Error; err != nil {
        log.Printf("count my bookings failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    var rows []myBookingRow
    err := bc.DB.Table("bookings AS b").
        Select("b.id, b.title, b.description, b.start_time, b.end_time, b.attendees_count, b.status, b.created_at, r.name AS room_name, r.location AS room_location").
        Joins("JOIN rooms r ON r.id = b.room_id").
        Where("b.user_id = ?", user.ID).
        Order("b.start_time DESC").
        Offset((page - 1) * limit).
        Limit(limit).
        Scan(&rows).Error
    if err != nil {
        log.Printf("list my bookings failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    totalPages := (total + int64(limit) - 1) / int64(limit)
    c.JSON(http.StatusOK, gin.H{
        "data": rows,
        "meta": gin.H{
            "page":          page,
            "limit":         limit,
            "total_records": total,
            "total_pages":   totalPages,
        },
    })
}
