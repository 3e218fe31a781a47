package kiosk

import (
    "errors"
    "log"
    "time"

    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/roster"
)

// ActiveSession is one open pass in the status payload. Start carries the
// local ISO form for display, StartMS the epoch for client-side math.
type ActiveSession struct {
    ID      uint   `json:"id"`
    Name    string `json:"name"`
    Elapsed int64  `json:"elapsed"`
    Overdue bool   `json:"overdue"`
    Start   string `json:"start"`
    StartMS int64  `json:"start_ms"`
}

// QueueItem carries the code alongside the name for admin actions.
type QueueItem struct {
    Name      string `json:"name"`
    StudentID string `json:"student_id"`
}

// StatusPayload is the full display snapshot. The in_use/name/start/elapsed/
// overdue fields mirror the first open session for older display clients.
// Keep this aligned with the Flutter KioskStatus model.
type StatusPayload struct {
    ServerTimeMS     int64           `json:"server_time_ms"`
    OverdueMinutes   int             `json:"overdue_minutes"`
    KioskSuspended   bool            `json:"kiosk_suspended"`
    AutoBanOverdue   bool            `json:"auto_ban_overdue"`
    AutoPromoteQueue bool            `json:"auto_promote_queue"`
    Capacity         int             `json:"capacity"`
    ActiveSessions   []ActiveSession `json:"active_sessions"`
    Queue            []string        `json:"queue"`
    QueueList        []QueueItem     `json:"queue_list"`

    InUse   bool   `json:"in_use"`
    Name    string `json:"name"`
    Start   string `json:"start,omitempty"`
    StartMS int64  `json:"start_ms,omitempty"`
    Elapsed int64  `json:"elapsed"`
    Overdue bool   `json:"overdue"`
}

// StatusService derives display snapshots and, as a side effect of
// observing availability, promotes waitlisted students into free slots.
type StatusService struct {
    DB     *gorm.DB
    Roster *roster.Service
}

func NewStatusService(db *gorm.DB, ros *roster.Service) *StatusService {
    return &StatusService{DB: db, Roster: ros}
}

type sessionView struct {
    Sess models.PassSession
    Name string
}

type queueView struct {
    Entry models.QueueEntry
    Name  string
}

func composePayload(now time.Time, st models.KioskSettings, available bool, sessions []sessionView, queue []queueView) StatusPayload {
    overdueSeconds := int64(st.OverdueMinutes) * 60

    active := make([]ActiveSession, 0, len(sessions))
    for _, v := range sessions {
        elapsed := v.Sess.DurationSeconds(now)
        active = append(active, ActiveSession{
            ID:      v.Sess.ID,
            Name:    v.Name,
            Elapsed: elapsed,
            Overdue: elapsed > overdueSeconds,
            Start:   v.Sess.StartTS.In(time.Local).Format(time.RFC3339),
            StartMS: v.Sess.StartTS.UnixMilli(),
        })
    }

    queueNames := make([]string, 0, len(queue))
    queueList := make([]QueueItem, 0, len(queue))
    for _, v := range queue {
        queueNames = append(queueNames, v.Name)
        queueList = append(queueList, QueueItem{Name: v.Name, StudentID: v.Entry.StudentCode})
    }

    p := StatusPayload{
        ServerTimeMS:     now.UnixMilli(),
        OverdueMinutes:   st.OverdueMinutes,
        KioskSuspended:   !available,
        AutoBanOverdue:   st.AutoBanOverdue,
        AutoPromoteQueue: st.AutoPromoteQueue,
        Capacity:         st.Capacity,
        ActiveSessions:   active,
        Queue:            queueNames,
        QueueList:        queueList,
    }

    if len(active) > 0 {
        first := active[0]
        p.InUse = true
        p.Name = first.Name
        p.Start = first.Start
        p.StartMS = first.StartMS
        p.Elapsed = first.Elapsed
        p.Overdue = first.Overdue
    }
    return p
}

// Snapshot builds a fresh display payload for the tenant. When the kiosk is
// available with auto-promote on, waitlisted students are promoted into
// free slots first, one committed transaction per promotion so a partial
// failure still leaves a valid ledger.
func (sv *StatusService) Snapshot(tenantID uint) (StatusPayload, error) {
    now := time.Now().UTC()

    settings, err := LoadSettings(sv.DB, tenantID)
    if err != nil {
        return StatusPayload{}, err
    }
    available, _ := Availability(settings, now)

    if available && settings.EnableQueue && settings.AutoPromoteQueue {
        sv.promoteWhileSlots(tenantID, settings)
    }

    var open []models.PassSession
    if err := sv.DB.Where("user_id_ref = ? AND end_ts IS NULL", tenantID).
        Order("start_ts ASC, id ASC").Find(&open).Error; err != nil {
        return StatusPayload{}, err
    }
    var queue []models.QueueEntry
    if err := sv.DB.Where("user_id_ref = ?", tenantID).
        Order("joined_ts ASC, id ASC").Find(&queue).Error; err != nil {
        return StatusPayload{}, err
    }

    sessions := make([]sessionView, 0, len(open))
    for _, s := range open {
        sessions = append(sessions, sessionView{Sess: s, Name: sv.resolveName(tenantID, s.StudentCode, "Student")})
    }
    queueViews := make([]queueView, 0, len(queue))
    for _, q := range queue {
        queueViews = append(queueViews, queueView{Entry: q, Name: sv.resolveName(tenantID, q.StudentCode, "Unknown")})
    }

    return composePayload(now, settings, available, sessions, queueViews), nil
}

func (sv *StatusService) resolveName(tenantID uint, code, fallback string) string {
    name, err := sv.Roster.ResolveName(tenantID, code)
    if err != nil {
        return fallback
    }
    return name
}

// promoteWhileSlots pops queue heads into open sessions while capacity
// allows. Each promotion is its own transaction holding the tenant lock,
// so the capacity count cannot race a concurrent scan or tick; the first
// failure stops the loop without touching already-committed promotions.
func (sv *StatusService) promoteWhileSlots(tenantID uint, settings models.KioskSettings) {
    for {
        promoted := false
        err := sv.DB.Transaction(func(tx *gorm.DB) error {
            if err := LockTenant(tx, tenantID).Error; err != nil {
                return err
            }
            var openCount int64
            if err := tx.Model(&models.PassSession{}).
                Where("user_id_ref = ? AND end_ts IS NULL", tenantID).
                Count(&openCount).Error; err != nil {
                return err
            }
            if openCount >= int64(settings.Capacity) {
                return nil
            }
            var head models.QueueEntry
            err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
                Where("user_id_ref = ?", tenantID).
                Order("joined_ts ASC, id ASC").
                First(&head).Error
            if errors.Is(err, gorm.ErrRecordNotFound) {
                return nil
            }
            if err != nil {
                return err
            }
            sess := models.PassSession{
                StudentCode: head.StudentCode,
                StartTS:     time.Now().UTC(),
                Room:        settings.RoomName,
                EndedBy:     models.EndedByAutoPromote,
                UserIDRef:   tenantID,
            }
            if err := tx.Create(&sess).Error; err != nil {
                return err
            }
            if err := tx.Delete(&head).Error; err != nil {
                return err
            }
            promoted = true
            return nil
        })
        if err != nil {
            log.Printf("auto-promote failed for tenant %d: %v", tenantID, err)
            return
        }
        if !promoted {
            return
        }
    }
}
