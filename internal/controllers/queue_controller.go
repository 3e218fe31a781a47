package controllers

import (
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/ws"
)

// QueueController holds the authenticated waitlist management actions.
// The tenant is always the logged-in teacher.
type QueueController struct {
    DB     *gorm.DB
    Status *kiosk.StatusService
    Hub    *ws.DisplayHub
}

type queueDeleteRequest struct {
    StudentID string `json:"student_id"`
}

func (qc *QueueController) Delete(c *gin.Context) {
    user := currentUser(c)

    var req queueDeleteRequest
    _ = c.ShouldBindJSON(&req)
    if req.StudentID == "" {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing student_id"})
        return
    }

    if err := qc.DB.Where("user_id_ref = ? AND student_code = ?", user.ID, req.StudentID).
        Delete(&models.QueueEntry{}).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(qc.Status, qc.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

type queueReorderRequest struct {
    StudentIDs []string `json:"student_ids"`
}

// Reorder rewrites join timestamps so the queue drains in the given order.
func (qc *QueueController) Reorder(c *gin.Context) {
    user := currentUser(c)

    var req queueReorderRequest
    _ = c.ShouldBindJSON(&req)
    if len(req.StudentIDs) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "No order provided"})
        return
    }

    err := qc.DB.Transaction(func(tx *gorm.DB) error {
        var entries []models.QueueEntry
        if err := tx.Where("user_id_ref = ?", user.ID).Find(&entries).Error; err != nil {
            return err
        }
        for _, e := range kiosk.ReorderJoinTimes(entries, req.StudentIDs, time.Now().UTC()) {
            if err := tx.Model(&models.QueueEntry{}).Where("id = ?", e.ID).
                Update("joined_ts", e.JoinedTS).Error; err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(qc.Status, qc.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Queue reordered"})
}
