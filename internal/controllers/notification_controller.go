package controllers

import (
    "log"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/nattw/meetroom_backend/internal/notify"
)

// NotificationController serves the derived notification feed. The feed is
// recomputed from booking state on every request; nothing is stored.
type NotificationController struct {
    Deriver *notify.Deriver
    Now     func() time.Time
}

func (nc *NotificationController) List(c *gin.Context) {
    feed, err := nc.Deriver.Derive(c.Request.Context(), nc.Now())
    if err != nil {
        log.Printf("derive notifications failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "data":      feed.Notifications,
        "total":     feed.Total,
        "timestamp": feed.Timestamp,
    })
}
