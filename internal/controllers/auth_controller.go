package controllers

import (
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/middleware"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/utils"
)

type AuthController struct {
    DB            *gorm.DB
    AccessSecret  string
    RefreshSecret string
    AccessTTL     time.Duration
    RefreshTTL    time.Duration
}

type registerRequest struct {
    FullName string `json:"full_name" binding:"required"`
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required,min=6"`
}

// Register creates a new teacher account with its kiosk token and default
// settings. The route is dev-gated.
func (a *AuthController) Register(c *gin.Context) {
    var req registerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    pw, err := utils.HashPassword(req.Password)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "failed to hash password"})
        return
    }
    kioskToken, err := utils.GenerateCode(12)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "failed to generate kiosk token"})
        return
    }

    user := models.User{
        UserID:     uuid.NewString(),
        FullName:   req.FullName,
        Email:      req.Email,
        Password:   pw,
        Role:       models.RoleTeacher,
        KioskToken: kioskToken,
        Active:     true,
    }

    err = a.DB.Transaction(func(tx *gorm.DB) error {
        if err := tx.Create(&user).Error; err != nil {
            return err
        }
        settings := models.DefaultKioskSettings(user.ID)
        return tx.Create(&settings).Error
    })
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    c.JSON(http.StatusCreated, gin.H{
        "ok":          true,
        "user_id":     user.UserID,
        "email":       user.Email,
        "full_name":   user.FullName,
        "kiosk_token": user.KioskToken,
    })
}

type loginRequest struct {
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
    var req loginRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    var user models.User
    if err := a.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid credentials"})
        return
    }
    if !user.Active || !utils.CheckPassword(user.Password, req.Password) {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid credentials"})
        return
    }

    now := time.Now().UTC()
    a.DB.Model(&user).Update("last_login", &now)

    access, refresh, err := a.issueTokens(user)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "access_token":       access.Token,
        "token_type":         "Bearer",
        "expires_in":         int(a.AccessTTL.Seconds()),
        "role":               user.Role,
        "refresh_token":      refresh.Token,
        "refresh_expires_in": int(a.RefreshTTL.Seconds()),
    })
}

func (a *AuthController) Me(c *gin.Context) {
    user := currentUser(c)
    c.JSON(http.StatusOK, gin.H{
        "user_id":     user.UserID,
        "email":       user.Email,
        "full_name":   user.FullName,
        "role":        user.Role,
        "kiosk_slug":  user.KioskSlug,
        "kiosk_token": user.KioskToken,
        "active":      user.Active,
        "last_login":  user.LastLogin,
        "created_at":  user.CreatedAt,
    })
}

type tokenPair struct {
    Token string
    JTI   string
}

func (a *AuthController) issueTokens(user models.User) (access tokenPair, refresh tokenPair, err error) {
    now := time.Now().UTC()
    sub := strconv.FormatUint(uint64(user.ID), 10)

    acl := middleware.Claims{
        UserID: user.UserID,
        Role:   user.Role,
        Email:  user.Email,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    "hallday",
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(a.AccessTTL)),
            Subject:   sub,
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
        Issuer:    "hallday",
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(now.Add(a.RefreshTTL)),
        Subject:   sub,
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
    if err = a.DB.Create(&rec).Error; err != nil {
        return
    }
    return
}

type refreshRequest struct {
    RefreshToken string `json:"refresh_token" binding:"required"`
}

func (a *AuthController) Refresh(c *gin.Context) {
    var req refreshRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    tok, err := jwt.ParseWithClaims(req.RefreshToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
        return []byte(a.RefreshSecret), nil
    })
    if err != nil || !tok.Valid {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid refresh token"})
        return
    }

    var rec models.RefreshToken
    if err := a.DB.Where("token_hash = ?", utils.SHA256Hex(req.RefreshToken)).First(&rec).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "refresh token not found"})
        return
    }
    if rec.RevokedAt != nil || time.Now().UTC().After(rec.ExpiresAt) {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "refresh token expired or revoked"})
        return
    }
    var user models.User
    if err := a.DB.First(&user, rec.UserIDRef).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "user not found"})
        return
    }

    access, newRefresh, err := a.issueTokens(user)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    now := time.Now().UTC()
    a.DB.Model(&rec).Updates(map[string]interface{}{
        "revoked_at":           &now,
        "replaced_by_token_id": newRefresh.JTI,
    })
    c.JSON(http.StatusOK, gin.H{
        "access_token":       access.Token,
        "token_type":         "Bearer",
        "expires_in":         int(a.AccessTTL.Seconds()),
        "refresh_token":      newRefresh.Token,
        "refresh_expires_in": int(a.RefreshTTL.Seconds()),
    })
}

type logoutRequest struct {
    RefreshToken string `json:"refresh_token"`
    All          bool   `json:"all"`
}

// Logout revokes refresh tokens; the access token stays valid until expiry.
func (a *AuthController) Logout(c *gin.Context) {
    var req logoutRequest
    _ = c.ShouldBindJSON(&req)

    if req.RefreshToken != "" {
        var rec models.RefreshToken
        if err := a.DB.Where("token_hash = ?", utils.SHA256Hex(req.RefreshToken)).First(&rec).Error; err == nil {
            now := time.Now().UTC()
            a.DB.Model(&rec).Update("revoked_at", &now)
        }
    }
    if req.All {
        user := currentUser(c)
        now := time.Now().UTC()
        a.DB.Model(&models.RefreshToken{}).
            Where("user_id_ref = ? AND revoked_at IS NULL", user.ID).
            Update("revoked_at", &now)
    }
    c.JSON(http.StatusOK, gin.H{"ok": true, "message": "logged out"})
}
