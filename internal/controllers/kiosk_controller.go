package controllers

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgconn"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/ws"
)

const (
    streamTickInterval = 500 * time.Millisecond
    streamIdlePing     = 15 * time.Second
)

// KioskController serves the public scan-station API. Clients identify the
// tenant with a kiosk token (or slug); no login session is involved.
type KioskController struct {
    DB     *gorm.DB
    Scan   *kiosk.ScanService
    Status *kiosk.StatusService
    Hub    *ws.DisplayHub
}

// ResolveKioskTenant maps a public kiosk token or slug to the owning
// tenant. An empty token falls back to the first account, which keeps
// single-teacher deployments working without configuration.
func ResolveKioskTenant(db *gorm.DB, token string) (uint, error) {
    token = strings.TrimSpace(token)
    var user models.User
    if token == "" {
        if err := db.Order("id ASC").First(&user).Error; err != nil {
            return 0, err
        }
        return user.ID, nil
    }
    if err := db.Where("kiosk_token = ? OR kiosk_slug = ?", token, token).First(&user).Error; err != nil {
        return 0, err
    }
    return user.ID, nil
}

func (kc *KioskController) resolveTenant(c *gin.Context, token string) (uint, bool) {
    tenantID, err := ResolveKioskTenant(kc.DB, token)
    if err != nil {
        c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Unknown kiosk token"})
        return 0, false
    }
    return tenantID, true
}

type scanRequest struct {
    Code  string `json:"code"`
    Token string `json:"token"`
}

// HandleScan runs the check-in/check-out state machine for one scan.
func (kc *KioskController) HandleScan(c *gin.Context) {
    var req scanRequest
    _ = c.ShouldBindJSON(&req)

    tenantID, ok := kc.resolveTenant(c, req.Token)
    if !ok {
        return
    }

    res, err := kc.Scan.Scan(tenantID, req.Code)
    if err != nil {
        log.Printf("scan failed for tenant %d: %v", tenantID, err)
    }
    if res.OK {
        go notifyDisplays(kc.Status, kc.Hub, tenantID)
    }
    c.JSON(res.Status, res)
}

// GetStatus returns the full display snapshot.
func (kc *KioskController) GetStatus(c *gin.Context) {
    tenantID, ok := kc.resolveTenant(c, c.Query("token"))
    if !ok {
        return
    }
    payload, err := kc.Status.Snapshot(tenantID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Status unavailable"})
        return
    }
    c.JSON(http.StatusOK, payload)
}

// Stream is the SSE feed for displays. The first snapshot goes out right
// after the retry hint so a connecting display never renders blank; after
// that each tick takes a fresh snapshot and a full payload goes out only
// when the reduced signature changes, with a comment ping when nothing
// changed for a while so proxies keep the connection open.
func (kc *KioskController) Stream(c *gin.Context) {
    tenantID, ok := kc.resolveTenant(c, c.Query("token"))
    if !ok {
        return
    }
    streamStatus(c, func() (kiosk.StatusPayload, error) {
        return kc.Status.Snapshot(tenantID)
    })
}

func streamStatus(c *gin.Context, snapshot func() (kiosk.StatusPayload, error)) {
    c.Header("Content-Type", "text/event-stream")
    c.Header("Cache-Control", "no-cache")
    c.Header("X-Accel-Buffering", "no")

    // Hint to EventSource clients how quickly to retry
    fmt.Fprint(c.Writer, "retry: 3000\n\n")
    c.Writer.Flush()

    var lastSig *kiosk.Signature
    lastSent := time.Now()

    emit := func(payload kiosk.StatusPayload) bool {
        data, err := json.Marshal(payload)
        if err != nil {
            return true
        }
        if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
            return false
        }
        c.Writer.Flush()
        sig := kiosk.SignatureOf(payload)
        lastSig = &sig
        lastSent = time.Now()
        return true
    }

    if payload, err := snapshot(); err == nil {
        if !emit(payload) {
            return
        }
    }

    ticker := time.NewTicker(streamTickInterval)
    defer ticker.Stop()
    ctx := c.Request.Context()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
        }

        payload, err := snapshot()
        if err != nil {
            // transient read failure; the next tick retries
            continue
        }
        sig := kiosk.SignatureOf(payload)

        if lastSig == nil || !sig.Equal(*lastSig) {
            if !emit(payload) {
                return
            }
        } else if time.Since(lastSent) > streamIdlePing {
            if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
                return
            }
            c.Writer.Flush()
            lastSent = time.Now()
        }
    }
}

type queueRequest struct {
    Code  string `json:"code"`
    Token string `json:"token"`
}

// QueueJoin adds the student to the waitlist. Joining twice is a no-op.
func (kc *KioskController) QueueJoin(c *gin.Context) {
    var req queueRequest
    _ = c.ShouldBindJSON(&req)
    if strings.TrimSpace(req.Code) == "" {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false})
        return
    }
    tenantID, ok := kc.resolveTenant(c, req.Token)
    if !ok {
        return
    }

    var existing models.QueueEntry
    err := kc.DB.Where("user_id_ref = ? AND student_code = ?", tenantID, req.Code).First(&existing).Error
    if err == nil {
        c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Already in queue"})
        return
    }
    if !errors.Is(err, gorm.ErrRecordNotFound) {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    entry := models.QueueEntry{StudentCode: req.Code, UserIDRef: tenantID, JoinedTS: time.Now().UTC()}
    if err := kc.DB.Create(&entry).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            // lost the race against another kiosk; same outcome
            c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Already in queue"})
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(kc.Status, kc.Hub, tenantID)
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

// QueueLeave removes the student's waitlist entry if present.
func (kc *KioskController) QueueLeave(c *gin.Context) {
    var req queueRequest
    _ = c.ShouldBindJSON(&req)
    tenantID, ok := kc.resolveTenant(c, req.Token)
    if !ok {
        return
    }
    if err := kc.DB.Where("user_id_ref = ? AND student_code = ?", tenantID, req.Code).
        Delete(&models.QueueEntry{}).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(kc.Status, kc.Hub, tenantID)
    c.JSON(http.StatusOK, gin.H{"ok": true})
}
