package controllers

import (
    "errors"
    "log"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/middleware"
    "github.com/nattw/meetroom_backend/internal/models"
    "github.com/nattw/meetroom_backend/internal/utils"
)

type AuthController struct {
    DB            *gorm.DB
    AccessSecret  string
    RefreshSecret string
    AccessTTL     time.Duration
    RefreshTTL    time.Duration
}

var (
    usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
    phonePattern    = regexp.MustCompile(`^(0[0-9]{1,2}-?[0-9]{3}-?[0-9]{4})$|^(0[0-9]{8,9})$`)
    hasLowerLetter  = regexp.MustCompile(`[a-z]`)
    hasDigit        = regexp.MustCompile(`[0-9]`)
)

var validDepartments = []string{
    "IT", "HR&Admin", "Sales&Marketing", "DocInbound", "DocOutbound",
    "Accounting", "CS", "ECD", "Operation", "Jiaxiang",
}

func isValidDepartment(d string) bool {
    for _, v := range validDepartments {
        if v == d {
            return true
        }
    }
    return false
}

type registerRequest struct {
    Username   string `json:"username" binding:"required"`
    Email      string `json:"email" binding:"required,email"`
    Password   string `json:"password" binding:"required"`
    FirstName  string `json:"firstName" binding:"required"`
    LastName   string `json:"lastName" binding:"required"`
    Department string `json:"department" binding:"required"`
    Phone      string `json:"phone"`
}

func (a *AuthController) Register(c *gin.Context) {
    var req registerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if len(req.Username) < 3 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "username must be at least 3 characters"})
        return
    }
    if !usernamePattern.MatchString(req.Username) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "username may only contain letters, digits and underscore"})
        return
    }
    if len(req.Password) < 6 || !hasLowerLetter.MatchString(req.Password) || !hasDigit.MatchString(req.Password) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters with a letter and a digit"})
        return
    }
    if req.Phone != "" && !phonePattern.MatchString(strings.ReplaceAll(req.Phone, " ", "")) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
        return
    }
    if !isValidDepartment(req.Department) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
        return
    }

    hashed, err := utils.HashPassword(req.Password)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
        return
    }

    user := models.User{
        Username:     req.Username,
        Email:        strings.ToLower(req.Email),
        PasswordHash: hashed,
        FirstName:    req.FirstName,
        LastName:     req.LastName,
        Phone:        req.Phone,
        Department:   req.Department,
        Role:         models.RoleUser,
        Active:       true,
    }
    if err := a.DB.Create(&user).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    c.JSON(http.StatusCreated, gin.H{
        "message":  "registered",
        "user_id":  user.ID,
        "username": user.Username,
        "email":    user.Email,
    })
}

type loginRequest struct {
    Username string `json:"username" binding:"required"`
    Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
    var req loginRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var user models.User
    if err := a.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
        // indistinguishable from a wrong password on purpose
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
        return
    }
    if !user.Active || !utils.CheckPassword(user.PasswordHash, req.Password) {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
        return
    }

    access, refresh, err := a.issueTokens(user)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "user": gin.H{
            "id":         user.ID,
            "username":   user.Username,
            "email":      user.Email,
            "first_name": user.FirstName,
            "last_name":  user.LastName,
            "department": user.Department,
            "role":       user.Role,
        },
        "access_token":       access.Token,
        "token_type":         "Bearer",
        "expires_in":         int(a.AccessTTL.Seconds()),
        "refresh_token":      refresh.Token,
        "refresh_expires_in": int(a.RefreshTTL.Seconds()),
    })
}

func (a *AuthController) Me(c *gin.Context) {
    user, ok := middleware.CurrentUser(c)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "id":         user.ID,
        "username":   user.Username,
        "email":      user.Email,
        "first_name": user.FirstName,
        "last_name":  user.LastName,
        "phone":      user.Phone,
        "department": user.Department,
        "role":       user.Role,
        "active":     user.Active,
        "created_at": user.CreatedAt,
        "updated_at": user.UpdatedAt,
    })
}

type tokenPair struct {
    Token string
    JTI   string
}

func (a *AuthController) issueTokens(user models.User) (access tokenPair, refresh tokenPair, err error) {
    now := time.Now().UTC()

    acl := middleware.Claims{
        UserID:    user.ID,
        Username:  user.Username,
        Email:     user.Email,
        Role:      user.Role,
        FirstName: user.FirstName,
        LastName:  user.LastName,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    "meetroom_backend",
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(a.AccessTTL)),
            Subject:   user.ID,
        },
    }
    at := jwt.NewWithClaims(jwt.SigningMethodHS256, acl)
    atStr, err := at.SignedString([]byte(a.AccessSecret))
    if err != nil {
        return
    }
    access = tokenPair{Token: atStr}

    jti := uuid.NewString()
    rcl := jwt.RegisteredClaims{
        Issuer:    "meetroom_backend",
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(now.Add(a.RefreshTTL)),
        Subject:   user.ID,
        ID:        jti,
    }
    rt := jwt.NewWithClaims(jwt.SigningMethodHS256, rcl)
    rtStr, err := rt.SignedString([]byte(a.RefreshSecret))
    if err != nil {
        return
    }
    refresh = tokenPair{Token: rtStr, JTI: jti}

    rec := models.RefreshToken{
        TokenID:   jti,
        UserIDRef: user.ID,
        TokenHash: utils.SHA256Hex(rtStr),
        ExpiresAt: now.Add(a.RefreshTTL),
    }
    err = a.DB.Create(&rec).Error
    return
}

type refreshRequest struct {
    RefreshToken string `json:"refresh_token" binding:"required"`
}

// refreshTokenUsable reports whether a stored refresh token may still be
// redeemed: not revoked and not past its expiry.
func refreshTokenUsable(rec models.RefreshToken, now time.Time) bool {
    return rec.RevokedAt == nil && now.Before(rec.ExpiresAt)
}

// markRotated revokes a refresh token in favour of its successor.
func markRotated(rec *models.RefreshToken, successorJTI string, now time.Time) {
    rec.RevokedAt = &now
    rec.ReplacedByTokenID = &successorJTI
}

func (a *AuthController) Refresh(c *gin.Context) {
    var req refreshRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    tok, err := jwt.ParseWithClaims(req.RefreshToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
        return []byte(a.RefreshSecret), nil
    })
    if err != nil || !tok.Valid {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
        return
    }

    var rec models.RefreshToken
    if err := a.DB.Where("token_hash = ?", utils.SHA256Hex(req.RefreshToken)).First(&rec).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
        return
    }
    if !refreshTokenUsable(rec, time.Now().UTC()) {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired or revoked"})
        return
    }

    var user models.User
    if err := a.DB.Where("id = ?", rec.UserIDRef).First(&user).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
        return
    }

    access, newRefresh, err := a.issueTokens(user)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
        return
    }

    // The old token must be dead before the new pair goes out; a rotation
    // that leaves both valid defeats the point.
    markRotated(&rec, newRefresh.JTI, time.Now().UTC())
    err = a.DB.Model(&rec).Updates(map[string]interface{}{
        "revoked_at":           rec.RevokedAt,
        "replaced_by_token_id": rec.ReplacedByTokenID,
    }).Error
    if err != nil {
        log.Printf("refresh token revocation failed: %v", err)
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "access_token":       access.Token,
        "token_type":         "Bearer",
        "expires_in":         int(a.AccessTTL.Seconds()),
        "refresh_token":      newRefresh.Token,
        "refresh_expires_in": int(a.RefreshTTL.Seconds()),
    })
}

type verifyEmailRequest struct {
    Email string `json:"email" binding:"required,email"`
}

// VerifyEmail tells the password-reset flow whether an account exists for
// the given address; the client calls it before submitting a new password.
func (a *AuthController) VerifyEmail(c *gin.Context) {
    var req verifyEmailRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var user models.User
    if err := a.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "email exists"})
}

type forgotPasswordRequest struct {
    Email       string `json:"email" binding:"required,email"`
    NewPassword string `json:"newPassword" binding:"required"`
}

// ForgotPassword resets a password after the client-side e-mail
// verification step.
func (a *AuthController) ForgotPassword(c *gin.Context) {
    var req forgotPasswordRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if len(req.NewPassword) < 6 || !hasLowerLetter.MatchString(req.NewPassword) || !hasDigit.MatchString(req.NewPassword) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters with a letter and a digit"})
        return
    }

    var user models.User
    if err := a.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
        return
    }

    hashed, err := utils.HashPassword(req.NewPassword)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
        return
    }
    if err := a.DB.Model(&user).Update("password_hash", hashed).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
