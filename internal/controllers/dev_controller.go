package controllers

import (
    "fmt"
    "net/http"
    "sort"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/models"
)

// DevController serves the system operator dashboard with cross-tenant
// totals. Student identities are never exposed here.
type DevController struct {
    DB *gorm.DB
}

// Stats returns global counters.
func (dc *DevController) Stats(c *gin.Context) {
    var totalSessions, activeSessions, totalStudents, totalUsers int64
    dc.DB.Model(&models.PassSession{}).Count(&totalSessions)
    dc.DB.Model(&models.PassSession{}).Where("end_ts IS NULL").Count(&activeSessions)
    dc.DB.Model(&models.RosterStudent{}).Count(&totalStudents)
    dc.DB.Model(&models.User{}).Count(&totalUsers)

    c.JSON(http.StatusOK, gin.H{
        "ok":              true,
        "total_sessions":  totalSessions,
        "active_sessions": activeSessions,
        "total_students":  totalStudents,
        "total_users":     totalUsers,
    })
}

// ExpandedStats adds per-teacher activity and an anonymized recent
// activity log.
func (dc *DevController) ExpandedStats(c *gin.Context) {
    var totalSessions, activeSessions, totalStudents, totalUsers int64
    dc.DB.Model(&models.PassSession{}).Count(&totalSessions)
    dc.DB.Model(&models.PassSession{}).Where("end_ts IS NULL").Count(&activeSessions)
    dc.DB.Model(&models.RosterStudent{}).Count(&totalStudents)
    dc.DB.Model(&models.User{}).Count(&totalUsers)

    var users []models.User
    if err := dc.DB.Find(&users).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }

    type teacherRow struct {
        Email          string  `json:"email"`
        ActiveSessions int64   `json:"active_sessions"`
        TotalSessions  int64   `json:"total_sessions"`
        LastLogin      *string `json:"last_login"`
    }
    emailByID := make(map[uint]string, len(users))
    teachers := make([]teacherRow, 0, len(users))
    for _, u := range users {
        emailByID[u.ID] = u.Email
        var uTotal, uActive int64
        dc.DB.Model(&models.PassSession{}).Where("user_id_ref = ?", u.ID).Count(&uTotal)
        dc.DB.Model(&models.PassSession{}).Where("user_id_ref = ? AND end_ts IS NULL", u.ID).Count(&uActive)
        var lastLogin *string
        if u.LastLogin != nil {
            s := u.LastLogin.Format(time.RFC3339)
            lastLogin = &s
        }
        teachers = append(teachers, teacherRow{
            Email:          u.Email,
            ActiveSessions: uActive,
            TotalSessions:  uTotal,
            LastLogin:      lastLogin,
        })
    }
    sort.Slice(teachers, func(i, j int) bool {
        if teachers[i].ActiveSessions != teachers[j].ActiveSessions {
            return teachers[i].ActiveSessions > teachers[j].ActiveSessions
        }
        li, lj := "", ""
        if teachers[i].LastLogin != nil {
            li = *teachers[i].LastLogin
        }
        if teachers[j].LastLogin != nil {
            lj = *teachers[j].LastLogin
        }
        return li > lj
    })

    // Recent activity, anonymized: no student names or codes.
    var recent []models.PassSession
    if err := dc.DB.Order("start_ts DESC").Limit(20).Find(&recent).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
        return
    }
    activity := make([]gin.H, 0, len(recent))
    now := time.Now().UTC()
    for _, s := range recent {
        teacher := emailByID[s.UserIDRef]
        if teacher == "" {
            teacher = "Unknown"
        }
        action := "Active Pass"
        duration := "Ongoing"
        if s.EndTS != nil {
            action = "Returned Pass"
            duration = fmt.Sprintf("%dm", s.DurationSeconds(now)/60)
        }
        room := s.Room
        if room == "" {
            room = "Unknown Room"
        }
        activity = append(activity, gin.H{
            "timestamp": s.StartTS.Format(time.RFC3339),
            "teacher":   teacher,
            "action":    fmt.Sprintf("%s (%s)", action, room),
            "duration":  duration,
        })
    }

    c.JSON(http.StatusOK, gin.H{
        "ok": true,
        "global_stats": gin.H{
            "total_sessions":  totalSessions,
            "active_sessions": activeSessions,
            "total_students":  totalStudents,
            "total_users":     totalUsers,
        },
        "teachers": teachers,
        "activity": activity,
    })
}
