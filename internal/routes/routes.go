package routes

import (
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/booking"
    "github.com/nattw/meetroom_backend/internal/config"
    "github.com/nattw/meetroom_backend/internal/controllers"
    "github.com/nattw/meetroom_backend/internal/database"
    "github.com/nattw/meetroom_backend/internal/middleware"
    "github.com/nattw/meetroom_backend/internal/models"
    "github.com/nattw/meetroom_backend/internal/notify"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
    store := database.NewStore(db)
    scheduler := booking.NewScheduler(store, time.Now)
    deriver := notify.NewDeriver(store)

    authCtrl := &controllers.AuthController{
        DB:            db,
        AccessSecret:  cfg.JWTSecret,
        RefreshSecret: cfg.RefreshJWTSecret,
        AccessTTL:     time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute,
        RefreshTTL:    time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour,
    }
    bookingCtrl := &controllers.BookingController{DB: db, Scheduler: scheduler}
    roomCtrl := &controllers.RoomController{DB: db}
    userCtrl := &controllers.UserController{DB: db}
    notifCtrl := &controllers.NotificationController{Deriver: deriver, Now: time.Now}
    calendarCtrl := &controllers.CalendarController{DB: db, Now: time.Now}
    dashCtrl := &controllers.DashboardController{DB: db, Now: time.Now}

    authLimiter := middleware.NewIPRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst, 5*time.Minute)

    api := r.Group("/api")

    // Public
    api.POST("/auth/register", middleware.RateLimitByIP(authLimiter), authCtrl.Register)
    api.POST("/auth/login", middleware.RateLimitByIP(authLimiter), authCtrl.Login)
    api.POST("/auth/refresh", authCtrl.Refresh)
    api.POST("/verify-email", authCtrl.VerifyEmail)
    api.POST("/forgetpassword", authCtrl.ForgotPassword)

    api.GET("/bookings", bookingCtrl.List)
    api.GET("/rooms", roomCtrl.ListRooms)
    api.GET("/meeting_rooms", roomCtrl.ListRooms)
    api.GET("/meeting_rooms/:id", roomCtrl.GetRoom)
    api.GET("/calendarview", calendarCtrl.View)
    api.GET("/notifications", notifCtrl.List)
    api.GET("/dashboard/room-status", dashCtrl.RoomStatus)
    api.GET("/dashboard/recent-bookings", dashCtrl.RecentBookings)
    api.GET("/dashboard/active-bookings", dashCtrl.ActiveBookings)

    // Authenticated
    authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{JWTSecret: cfg.JWTSecret})
    authed := api.Group("", authMW)
    {
        authed.GET("/auth/me", authCtrl.Me)

        authed.POST("/bookings", bookingCtrl.Create)
        authed.PUT("/bookings/:id", bookingCtrl.Update)
        authed.DELETE("/bookings/:id", bookingCtrl.Delete)
        authed.GET("/mybookings", bookingCtrl.MyBookings)

        authed.GET("/dashboard/overview", dashCtrl.Overview)
        authed.GET("/dashboard/my-bookings-today", dashCtrl.MyBookingsToday)

        // Admin-only
        admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
        {
            admin.POST("/meeting_rooms", roomCtrl.CreateRoom)
            admin.PUT("/meeting_rooms/:id", roomCtrl.UpdateRoom)
            admin.DELETE("/meeting_rooms/:id", roomCtrl.DeleteRoom)

            admin.GET("/users", userCtrl.ListUsers)
            admin.GET("/users/:id", userCtrl.GetUser)
            admin.PUT("/users/:id", userCtrl.UpdateUser)
            admin.DELETE("/users/:id", userCtrl.DeleteUser)
        }
    }
}
