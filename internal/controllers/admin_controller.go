package controllers

import (
    "encoding/csv"
    "fmt"
    "math"
    "net/http"
    "sort"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/kiosk"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/roster"
    "github.com/elbrielle/HalllDay/internal/ws"
)

// AdminController serves the teacher dashboard: stats, session overrides,
// pass logs and bulk controls. Tenant scope is always the logged-in user.
type AdminController struct {
    DB     *gorm.DB
    Roster *roster.Service
    Status *kiosk.StatusService
    Hub    *ws.DisplayHub
    BaseURL string
}

func (ac *AdminController) resolveName(tenantID uint, code, fallback string) string {
    name, err := ac.Roster.ResolveName(tenantID, code)
    if err != nil {
        return fallback
    }
    return name
}

type insightEntry struct {
    Name  string `json:"name"`
    Count int    `json:"count"`
}

// Stats returns dashboard totals plus 30-day usage insights.
func (ac *AdminController) Stats(c *gin.Context) {
    user := currentUser(c)

    settings, err := kiosk.LoadSettings(ac.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    var totalSessions, activeCount, rosterCount int64
    ac.DB.Model(&models.PassSession{}).Where("user_id_ref = ?", user.ID).Count(&totalSessions)
    ac.DB.Model(&models.PassSession{}).Where("user_id_ref = ? AND end_ts IS NULL", user.ID).Count(&activeCount)
    ac.DB.Model(&models.RosterStudent{}).Where("user_id_ref = ?", user.ID).Count(&rosterCount)

    // 30-day insights aggregated per student
    now := time.Now().UTC()
    since := now.AddDate(0, 0, -30)
    var recent []models.PassSession
    if err := ac.DB.Where("user_id_ref = ? AND start_ts >= ?", user.ID, since).Find(&recent).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    overdueLimit := int64(settings.OverdueMinutes) * 60
    type stat struct{ count, overdue int }
    perStudent := map[string]*stat{}
    for _, s := range recent {
        st := perStudent[s.StudentCode]
        if st == nil {
            st = &stat{}
            perStudent[s.StudentCode] = st
        }
        st.count++
        if s.DurationSeconds(now) > overdueLimit {
            st.overdue++
        }
    }
    top := func(value func(*stat) int) []insightEntry {
        type pair struct {
            code string
            n    int
        }
        pairs := make([]pair, 0, len(perStudent))
        for code, st := range perStudent {
            pairs = append(pairs, pair{code, value(st)})
        }
        sort.Slice(pairs, func(i, j int) bool { return pairs[i].n > pairs[j].n })
        if len(pairs) > 5 {
            pairs = pairs[:5]
        }
        out := make([]insightEntry, 0, len(pairs))
        for _, p := range pairs {
            name := ac.resolveName(user.ID, p.code, "")
            if name == "" {
                name = "ID: " + p.code
            }
            out = append(out, insightEntry{Name: name, Count: p.n})
        }
        return out
    }

    var queueRows []models.QueueEntry
    ac.DB.Where("user_id_ref = ?", user.ID).Order("joined_ts ASC, id ASC").Find(&queueRows)
    queueList := make([]kiosk.QueueItem, 0, len(queueRows))
    for _, q := range queueRows {
        queueList = append(queueList, kiosk.QueueItem{
            Name:      ac.resolveName(user.ID, q.StudentCode, "Unknown"),
            StudentID: q.StudentCode,
        })
    }

    var open []models.PassSession
    ac.DB.Where("user_id_ref = ? AND end_ts IS NULL", user.ID).Order("start_ts ASC, id ASC").Find(&open)
    activeSessions := make([]gin.H, 0, len(open))
    for _, s := range open {
        activeSessions = append(activeSessions, gin.H{
            "id":         s.ID,
            "student_id": s.StudentCode,
            "name":       ac.resolveName(user.ID, s.StudentCode, "Unknown"),
            "start_ts":   s.StartTS.Format(time.RFC3339),
            "room":       s.Room,
        })
    }

    c.JSON(http.StatusOK, gin.H{
        "ok": true,
        "user": gin.H{
            "name":  user.FullName,
            "email": user.Email,
            "slug":  user.KioskSlug,
            "urls":  user.PublicURLs(ac.BaseURL),
        },
        "total_sessions":        totalSessions,
        "active_sessions_count": activeCount,
        "roster_count":          rosterCount,
        "settings":              settingsJSON(settings),
        "queue_list":            queueList,
        "insights": gin.H{
            "top_students": top(func(s *stat) int { return s.count }),
            "most_overdue": top(func(s *stat) int { return s.overdue }),
        },
        "active_sessions": activeSessions,
    })
}

type endSessionRequest struct {
    SessionID uint `json:"session_id"`
}

// EndSession manually closes one open session, promoting the queue head
// when auto-promote is on. Close and promote commit together.
func (ac *AdminController) EndSession(c *gin.Context) {
    user := currentUser(c)

    var req endSessionRequest
    _ = c.ShouldBindJSON(&req)
    if req.SessionID == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing session ID"})
        return
    }

    var sess models.PassSession
    if err := ac.DB.Where("id = ? AND user_id_ref = ?", req.SessionID, user.ID).First(&sess).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Session not found"})
        return
    }
    if sess.EndTS != nil {
        c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Session already ended"})
        return
    }

    settings, err := kiosk.LoadSettings(ac.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    promotedMsg := ""
    err = ac.DB.Transaction(func(tx *gorm.DB) error {
        now := time.Now().UTC()
        if err := kiosk.LockTenant(tx, user.ID).Error; err != nil {
            return err
        }
        if err := tx.Model(&models.PassSession{}).
            Where("id = ? AND user_id_ref = ?", sess.ID, user.ID).
            Updates(map[string]interface{}{"end_ts": now, "ended_by": models.EndedByAdminOverride}).Error; err != nil {
            return err
        }
        if settings.EnableQueue && settings.AutoPromoteQueue {
            var head models.QueueEntry
            err := tx.Where("user_id_ref = ?", user.ID).Order("joined_ts ASC, id ASC").First(&head).Error
            if err == gorm.ErrRecordNotFound {
                return nil
            }
            if err != nil {
                return err
            }
            promoted := models.PassSession{
                StudentCode: head.StudentCode,
                StartTS:     now,
                Room:        settings.RoomName,
                EndedBy:     models.EndedByAuto,
                UserIDRef:   user.ID,
            }
            if err := tx.Create(&promoted).Error; err != nil {
                return err
            }
            if err := tx.Delete(&head).Error; err != nil {
                return err
            }
            promotedMsg = fmt.Sprintf(". Auto-started %s from waitlist.", ac.resolveName(user.ID, head.StudentCode, "Student"))
        }
        return nil
    })
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    go notifyDisplays(ac.Status, ac.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{
        "ok":      true,
        "message": fmt.Sprintf("Ended session for %s%s", ac.resolveName(user.ID, sess.StudentCode, "Student"), promotedMsg),
    })
}

func sessionStatus(s models.PassSession, now time.Time, overdueSeconds int64) string {
    if s.EndTS == nil {
        return "active"
    }
    if s.DurationSeconds(now) > overdueSeconds {
        return "overdue"
    }
    return "completed"
}

// Logs returns the pass history, newest first, with limit/offset paging.
func (ac *AdminController) Logs(c *gin.Context) {
    user := currentUser(c)

    limit := 100
    offset := 0
    if v := c.Query("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            limit = n
        }
    }
    if v := c.Query("offset"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n >= 0 {
            offset = n
        }
    }

    settings, err := kiosk.LoadSettings(ac.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    overdueSeconds := int64(settings.OverdueMinutes) * 60

    var sessions []models.PassSession
    if err := ac.DB.Where("user_id_ref = ?", user.ID).
        Order("start_ts DESC").Limit(limit).Offset(offset).Find(&sessions).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    now := time.Now().UTC()
    logs := make([]gin.H, 0, len(sessions))
    for _, s := range sessions {
        var end interface{}
        if s.EndTS != nil {
            end = s.EndTS.In(time.Local).Format(time.RFC3339)
        }
        logs = append(logs, gin.H{
            "id":               s.ID,
            "name":             ac.resolveName(user.ID, s.StudentCode, "Unknown"),
            "student_id":       s.StudentCode,
            "start":            s.StartTS.In(time.Local).Format(time.RFC3339),
            "end":              end,
            "duration_minutes": math.Round(float64(s.DurationSeconds(now))/60*10) / 10,
            "status":           sessionStatus(s, now, overdueSeconds),
            "room":             s.Room,
        })
    }

    var total int64
    ac.DB.Model(&models.PassSession{}).Where("user_id_ref = ?", user.ID).Count(&total)
    c.JSON(http.StatusOK, gin.H{"ok": true, "logs": logs, "total": total})
}

// LogsExport streams the most recent 1000 log rows as CSV.
func (ac *AdminController) LogsExport(c *gin.Context) {
    user := currentUser(c)

    settings, err := kiosk.LoadSettings(ac.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    overdueSeconds := int64(settings.OverdueMinutes) * 60

    var sessions []models.PassSession
    if err := ac.DB.Where("user_id_ref = ?", user.ID).
        Order("start_ts DESC").Limit(1000).Find(&sessions).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    c.Header("Content-Type", "text/csv")
    c.Header("Content-Disposition", `attachment; filename="pass_logs.csv"`)

    now := time.Now().UTC()
    w := csv.NewWriter(c.Writer)
    _ = w.Write([]string{"Student Name", "Student ID", "Room", "Start Time", "End Time", "Duration (Minutes)", "Status"})
    for _, s := range sessions {
        end := ""
        if s.EndTS != nil {
            end = s.EndTS.In(time.Local).Format(time.RFC3339)
        }
        _ = w.Write([]string{
            ac.resolveName(user.ID, s.StudentCode, "Unknown"),
            s.StudentCode,
            s.Room,
            s.StartTS.In(time.Local).Format(time.RFC3339),
            end,
            strconv.FormatFloat(math.Round(float64(s.DurationSeconds(now))/60*10)/10, 'f', 1, 64),
            sessionStatus(s, now, overdueSeconds),
        })
    }
    w.Flush()
}

// BanOverdue bans every student currently holding an overdue open pass.
func (ac *AdminController) BanOverdue(c *gin.Context) {
    user := currentUser(c)

    settings, err := kiosk.LoadSettings(ac.DB, user.ID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    overdueSeconds := int64(settings.OverdueMinutes) * 60

    var open []models.PassSession
    if err := ac.DB.Where("user_id_ref = ? AND end_ts IS NULL", user.ID).Find(&open).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    now := time.Now().UTC()
    count := 0
    for _, s := range open {
        if s.DurationSeconds(now) <= overdueSeconds {
            continue
        }
        banned, err := ac.Roster.IsBanned(user.ID, s.StudentCode)
        if err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
            return
        }
        if banned {
            continue
        }
        if err := ac.Roster.SetBanned(user.ID, s.StudentCode, true); err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
            return
        }
        count++
    }
    c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

// DeleteHistory wipes the tenant's whole session ledger.
func (ac *AdminController) DeleteHistory(c *gin.Context) {
    user := currentUser(c)
    if err := ac.DB.Where("user_id_ref = ?", user.ID).Delete(&models.PassSession{}).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    go notifyDisplays(ac.Status, ac.Hub, user.ID)
    c.JSON(http.StatusOK, gin.H{"ok": true})
}
