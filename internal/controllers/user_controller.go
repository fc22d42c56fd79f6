package controllers

import (
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/models"
    "github.com/nattw/meetroom_backend/internal/utils"
)

type UserController struct {
    DB *gorm.DB
}

func (uc *UserController) ListUsers(c *gin.Context) {
    limit := 50
    page := 1
    if v := c.Query("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            limit = n
        }
    }
    if v := c.Query("page"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            page = n
        }
    }

    sortBy := strings.ToLower(c.DefaultQuery("sort_by", "created_at"))
    sortDir := strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
    if sortDir != "ASC" && sortDir != "DESC" {
        sortDir = "DESC"
    }
    allowedSorts := map[string]string{
        "created_at": "created_at",
        "username":   "username",
        "email":      "email",
        "role":       "role",
        "department": "department",
        "active":     "active",
    }
    sortCol, ok := allowedSorts[sortBy]
    if !ok {
        sortCol = "created_at"
    }
    order := fmt.Sprintf("%s %s", sortCol, sortDir)

    qText := strings.TrimSpace(c.Query("q"))
    role := strings.TrimSpace(strings.ToLower(c.Query("role")))
    if role != "" && !models.IsValidRole(role) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
        return
    }

    applyFilters := func(q *gorm.DB) *gorm.DB {
        if qText != "" {
            like := "%" + qText + "%"
            q = q.Where("username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like, like)
        }
        if role != "" {
            q = q.Where("role = ?", role)
        }
        return q
    }

    var total int64
    if err := applyFilters(uc.DB.Model(&models.User{})).Count(&total).Error; err != nil {
        log.Printf("count users failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    var users []models.User
    err := applyFilters(uc.DB.Model(&models.User{})).
        Order(order).
        Offset((page - 1) * limit).
        Limit(limit).
        Find(&users).Error
    if err != nil {
        log.Printf("list users failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }

    out := make([]gin.H, 0, len(users))
    for _, u := range users {
        out = append(out, gin.H{
            "id":         u.ID,
            "username":   u.Username,
            "email":      u.Email,
            "first_name": u.FirstName,
            "last_name":  u.LastName,
            "phone":      u.Phone,
            "department": u.Department,
            "role":       u.Role,
            "active":     u.Active,
            "created_at": u.CreatedAt,
            "updated_at": u.UpdatedAt,
        })
    }
    c.JSON(http.StatusOK, gin.H{
        "data": out,
        "meta": gin.H{"total": total, "page": page, "limit": limit, "sort_by": sortCol, "sort_dir": sortDir},
    })
}

func (uc *UserController) GetUser(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    var u models.User
    if err := uc.DB.Where("id = ?", id).First(&u).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "id":         u.ID,
        "username":   u.Username,
        "email":      u.Email,
        "first_name": u.FirstName,
        "last_name":  u.LastName,
        "phone":      u.Phone,
        "department": u.Department,
        "role":       u.Role,
        "active":     u.Active,
        "created_at": u.CreatedAt,
        "updated_at": u.UpdatedAt,
    })
}

type updateUserRequest struct {
    Email      *string `json:"email"`
    Password   *string `json:"password"`
    FirstName  *string `json:"first_name"`
    LastName   *string `json:"last_name"`
    Phone      *string `json:"phone"`
    Department *string `json:"department"`
    Role       *string `json:"role"`
    Active     *bool   `json:"active"`
}

func (uc *UserController) UpdateUser(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    var u models.User
    if err := uc.DB.Where("id = ?", id).First(&u).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
        return
    }

    var req updateUserRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if req.Email != nil {
        u.Email = strings.ToLower(*req.Email)
    }
    if req.FirstName != nil {
        u.FirstName = *req.FirstName
    }
    if req.LastName != nil {
        u.LastName = *req.LastName
    }
    if req.Phone != nil {
        u.Phone = *req.Phone
    }
    if req.Department != nil {
        if !isValidDepartment(*req.Department) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
            return
        }
        u.Department = *req.Department
    }
    if req.Role != nil {
        if !models.IsValidRole(*req.Role) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
            return
        }
        u.Role = *req.Role
    }
    if req.Active != nil {
        u.Active = *req.Active
    }
    if req.Password != nil {
        raw := strings.TrimSpace(*req.Password)
        if raw != "" {
            hashed, err := utils.HashPassword(raw)
            if err != nil {
                c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
                return
            }
            u.PasswordHash = hashed
        }
    }

    if err := uc.DB.Save(&u).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// DeleteUser refuses while the user still has bookings that have not ended;
// otherwise removes the user with their refresh tokens in one transaction.
func (uc *UserController) DeleteUser(c *gin.Context) {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
        return
    }
    var u models.User
    if err := uc.DB.Where("id = ?", id).First(&u).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
        return
    }

    var future int64
    if err := uc.DB.Model(&models.Booking{}).
        Where("user_id = ? AND end_time > ?", u.ID, time.Now()).
        Count(&future).Error; err != nil {
        log.Printf("user deletion guard failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
        return
    }
    if future > 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "user has bookings that have not finished"})
        return
    }

    err := uc.DB.Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("user_id_ref = ?", u.ID).Delete(&models.RefreshToken{}).Error; err != nil {
            return err
        }
        return tx.Where("id = ?", u.ID).Delete(&models.User{}).Error
    })
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
