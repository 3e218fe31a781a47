package controllers

import (
    "encoding/csv"
    "net/http"
    "path/filepath"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/roster"
)

type RosterController struct {
    DB     *gorm.DB
    Roster *roster.Service
}

// List returns the roster with decrypted IDs and ban durations.
func (rc *RosterController) List(c *gin.Context) {
    user := currentUser(c)

    var students []models.RosterStudent
    if err := rc.DB.Where("user_id_ref = ?", user.ID).
        Order("display_name ASC").Limit(500).Find(&students).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    now := time.Now().UTC()
    rows := make([]gin.H, 0, len(students))
    for _, s := range students {
        readableID := "Hidden"
        if s.EncryptedID != nil {
            if plain, ok := rc.Roster.DecryptID(s); ok {
                readableID = plain
            } else {
                readableID = "Error"
            }
        }
        var banDays interface{}
        if s.Banned && s.BannedSince != nil {
            banDays = int(now.Sub(*s.BannedSince).Hours() / 24)
        }
        rows = append(rows, gin.H{
            "id":         s.ID,
            "name":       s.DisplayName,
            "student_id": readableID,
            "banned":     s.Banned,
            "name_hash":  s.NameHash,
            "ban_days":   banDays,
        })
    }
    c.JSON(http.StatusOK, gin.H{"ok": true, "roster": rows})
}

// Upload replaces the roster from a CSV file. Column order is
// auto-detected per row.
func (rc *RosterController) Upload(c *gin.Context) {
    user := currentUser(c)

    fileHeader, err := c.FormFile("file")
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "No file provided"})
        return
    }
    if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "CSV required"})
        return
    }

    f, err := fileHeader.Open()
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }
    defer f.Close()

    rows, err := roster.ParseCSV(f)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
        return
    }

    count, err := rc.Roster.Replace(user.ID, rows)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

// Export downloads the roster as CSV with decrypted student IDs.
func (rc *RosterController) Export(c *gin.Context) {
    user := currentUser(c)

    var students []models.RosterStudent
    if err := rc.DB.Where("user_id_ref = ?", user.ID).
        Order("display_name ASC").Find(&students).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    c.Header("Content-Type", "text/csv")
    c.Header("Content-Disposition", `attachment; filename="roster_export.csv"`)

    w := csv.NewWriter(c.Writer)
    _ = w.Write([]string{"student_id", "name"})
    for _, s := range students {
        id := "UNKNOWN"
        if plain, ok := rc.Roster.DecryptID(s); ok {
            id = plain
        }
        _ = w.Write([]string{id, s.DisplayName})
    }
    w.Flush()
}

// Template downloads an example CSV for roster uploads.
func (rc *RosterController) Template(c *gin.Context) {
    c.Header("Content-Type", "text/csv")
    c.Header("Content-Disposition", `attachment; filename="roster_template.csv"`)

    w := csv.NewWriter(c.Writer)
    _ = w.Write([]string{"student_id", "name"})
    _ = w.Write([]string{"123456", "Jane Doe"})
    _ = w.Write([]string{"789012", "John Smith"})
    w.Flush()
}

type banRequest struct {
    NameHash string `json:"name_hash"`
    Banned   *bool  `json:"banned"`
}

// Ban sets or clears a student's ban by roster hash.
func (rc *RosterController) Ban(c *gin.Context) {
    user := currentUser(c)

    var req banRequest
    _ = c.ShouldBindJSON(&req)
    if req.NameHash == "" || req.Banned == nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing parameters"})
        return
    }

    err := rc.Roster.SetBannedByHash(user.ID, req.NameHash, *req.Banned)
    if err == roster.ErrNotFound {
        c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Student not found"})
        return
    }
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

type clearRequest struct {
    ClearHistory bool `json:"clear_history"`
}

// Clear wipes the roster, optionally the session history too.
func (rc *RosterController) Clear(c *gin.Context) {
    user := currentUser(c)

    var req clearRequest
    _ = c.ShouldBindJSON(&req)

    err := rc.DB.Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("user_id_ref = ?", user.ID).Delete(&models.RosterStudent{}).Error; err != nil {
            return err
        }
        if req.ClearHistory {
            if err := tx.Where("user_id_ref = ?", user.ID).Delete(&models.PassSession{}).Error; err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true})
}
