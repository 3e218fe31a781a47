package controllers

import (
    "encoding/json"
    "errors"
    "net/http"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgconn"
    "gorm.io/datatypes"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/ws"
)

type SettingsController struct {
    DB     *gorm.DB
    Status *kiosk.StatusService
    Hub    *ws.DisplayHub
}

// settingsJSON is the settings mirror returned to the admin UI.
func settingsJSON(st models.KioskSettings) gin.H {
    var schedule interface{}
    if len(st.Schedule) > 0 {
        _ = json.Unmarshal(st.Schedule, &schedule)
    }
    return gin.H{
        "room_name":                   st.RoomName,
        "capacity":                    st.Capacity,
        "overdue_minutes":             st.OverdueMinutes,
        "kiosk_suspended":             st.KioskSuspended,
        "auto_ban_overdue":            st.AutoBanOverdue,
        "auto_promote_queue":          st.AutoPromoteQueue,
        "enable_queue":                st.EnableQueue,
        "allow_queue_while_suspended": st.AllowQueueWhileSuspended,
        "schedule":                    schedule,
    }
}

func (sc *SettingsController) getOrCreate(tenantID uint) (models.KioskSettings, error) {
    var st models.KioskSettings
    err := sc.DB.Where("user_id_ref = ?", tenantID).First(&st).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        st = models.DefaultKioskSettings(tenantID)
        err = sc.DB.Create(&st).Error
    }
    return st, err
}

type updateSettingsRequest struct {
    RoomName                 *string         `json:"room_name"`
    Capacity                 *int            `json:"capacity"`
    OverdueMinutes           *int            `json:"overdue_minutes"`
    KioskSuspended           *bool           `json:"kiosk_suspended"`
    AutoBanOverdue           *bool           `json:"auto_ban_overdue"`
    AutoPromoteQueue         *bool           `json:"auto_promote_queue"`
    EnableQueue              *bool           `json:"enable_queue"`
    AllowQueueWhileSuspended *bool           `json:"allow_queue_while_suspended"`
    Schedule                 json.RawMessage `json:"schedule"`
}

// Update applies a partial settings change. Capacity and overdue minutes
// are clamped to their floor of 1.
func (sc *SettingsController) Update(c *gin.Context) {
    user := currentUser(c)

    var req updateSettingsRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    st, err := sc.getOrCreate(user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    if req.RoomName != nil {
        if name := strings.TrimSpace(*req.RoomName); name != "" {
            st.RoomName = name
        }
    }
    if req.Capacity != nil {
        st.Capacity = *req.Capacity
        if st.Capacity < 1 {
            st.Capacity = 1
        }
    }
    if req.OverdueMinutes != nil {
        st.OverdueMinutes = *req.OverdueMinutes
        if st.OverdueMinutes < 1 {
            st.OverdueMinutes = 1
        }
    }
    if req.KioskSuspended != nil {
        st.KioskSuspended = *req.KioskSuspended
    }
    if req.AutoBanOverdue != nil {
        st.AutoBanOverdue = *req.AutoBanOverdue
    }
    if req.AutoPromoteQueue != nil {
        st.AutoPromoteQueue = *req.AutoPromoteQueue
    }
    if req.EnableQueue != nil {
        st.EnableQueue = *req.EnableQueue
    }
    if req.AllowQueueWhileSuspended != nil {
        st.AllowQueueWhileSuspended = *req.AllowQueueWhileSuspended
    }
    if req.Schedule != nil {
        if _, err := kiosk.ParseSchedule(datatypes.JSON(req.Schedule)); err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid schedule"})
            return
        }
        st.Schedule = datatypes.JSON(req.Schedule)
    }

    if err := sc.DB.Save(&st).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(sc.Status, sc.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{"ok": true, "settings": settingsJSON(st)})
}

// Get returns the current settings mirror.
func (sc *SettingsController) Get(c *gin.Context) {
    user := currentUser(c)
    st, err := kiosk.LoadSettings(sc.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true, "settings": settingsJSON(st)})
}

type suspendRequest struct {
    Suspend *bool `json:"suspend"`
}

// Suspend flips the manual kiosk suspension switch.
func (sc *SettingsController) Suspend(c *gin.Context) {
    user := currentUser(c)

    var req suspendRequest
    if err := c.ShouldBindJSON(&req); err != nil || req.Suspend == nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing suspend flag"})
        return
    }

    st, err := sc.getOrCreate(user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    st.KioskSuspended = *req.Suspend
    if err := sc.DB.Save(&st).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(sc.Status, sc.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{"ok": true, "suspended": st.KioskSuspended})
}

type slugRequest struct {
    Slug string `json:"slug"`
}

// UpdateSlug assigns the custom public URL slug for this account.
func (sc *SettingsController) UpdateSlug(c *gin.Context) {
    user := currentUser(c)

    var req slugRequest
    _ = c.ShouldBindJSON(&req)

    if !user.SetKioskSlug(strings.TrimSpace(req.Slug)) {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid format"})
        return
    }
    if err := sc.DB.Save(&user).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"ok": false, "message": "Slug already taken"})
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    resp := gin.H{"ok": true}
    if user.KioskSlug != nil {
        resp["slug"] = *user.KioskSlug
    }
    c.JSON(http.StatusOK, resp)
}
