package controllers

import (
    "errors"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/models"
)

type RoomController struct {
    DB *gorm.DB
}

type createRoomRequest struct {
    Name        string `json:"name" binding:"required"`
    Description string `json:"description"`
    Location    string `json:"location"`
    Capacity    int    `json:"capacity" binding:"required"`
}

type updateRoomRequest struct {
    Name        *string `json:"name"`
    Description *string `json:"description"`
    Location    *string `json:"location"`
    Capacity    *int    `json:"capacity"`
    Active      *bool   `json:"is_active"`
}

func (rc *RoomController) ListRooms(c *gin.Context) {
    search := strings.TrimSpace(c.Query("search"))
    like := "%" + search + "%"

    var rooms []models.Room
    err := rc.DB.
        Where("name ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like).
        Order("created_at DESC").
        Find(&rooms).Error
    if err != nil {
        log.Printf("list rooms failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (rc *RoomController) GetRoom(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
        return
    }
    var room models.Room
    if err := rc.DB.Where("id = ?", id).First(&room).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"room": room})
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
    var req createRoomRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if req.Capacity <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be positive"})
        return
    }

    room := models.Room{
        Name:        strings.TrimSpace(req.Name),
        Description: req.Description,
        Location:    req.Location,
        Capacity:    req.Capacity,
        Active:      true,
    }
    if err := rc.DB.Create(&room).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "room name already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"message": "created", "id": room.ID})
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
        return
    }
    var room models.Room
    if err := rc.DB.Where("id = ?", id).First(&room).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
        return
    }

    var req updateRoomRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if req.Name != nil {
        room.Name = strings.TrimSpace(*req.Name)
    }
    if req.Description != nil {
        room.Description = *req.Description
    }
    if req.Location != nil {
        room.Location = *req.Location
    }
    if req.Capacity != nil {
        if *req.Capacity <= 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be positive"})
            return
        }
        room.Capacity = *req.Capacity
    }
    if req.Active != nil {
        room.Active = *req.Active
    }

    if err := rc.DB.Save(&room).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "room name already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// DeleteRoom refuses to drop a room while any booking on it has not ended
// yet; rooms with only past bookings may go.
func (rc *RoomController) DeleteRoom(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
        return
    }
    var room models.Room
    if err := rc.DB.Where("id = ?", id).First(&room).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
        return
    }

    var future int64
    if err := rc.DB.Model(&models.Booking{}).
        Where("room_id = ? AND end_time > ?", room.ID, time.Now()).
        Count(&future).Error; err != nil {
        log.Printf("room deletion guard failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    if future > 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "room has bookings that have not finished"})
        return
    }

    if err := rc.DB.Where("id = ?", room.ID).Delete(&models.Room{}).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
