package kiosk

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/roster"
)

// Scan outcomes reported in the "action" field.
const (
    ActionStarted             = "started"
    ActionEnded               = "ended"
    ActionEndedBanned         = "ended_banned"
    ActionEndedAutoStarted    = "ended_auto_started"
    ActionQueued              = "queued"
    ActionLeftQueue           = "left_queue"
    ActionDenied              = "denied"
    ActionDeniedQueuePosition = "denied_queue_position"
    ActionBanned              = "banned"
)

// Result is the JSON body returned for one scan. Status is the HTTP code
// the handler should use.
type Result struct {
    OK          bool    `json:"ok"`
    Action      string  `json:"action,omitempty"`
    Message     string  `json:"message,omitempty"`
    Name        string  `json:"name,omitempty"`
    NextStudent *string `json:"next_student,omitempty"`
    Status      int     `json:"-"`
}

// ScanService is the kiosk check-in/check-out state machine. Each scan runs
// in one transaction that locks the tenant's owner row first, then the open
// sessions and queue rows, so concurrent scans serialize against capacity
// and queue invariants.
type ScanService struct {
    DB     *gorm.DB
    Roster *roster.Service
}

// LockTenant serializes a tenant's ledger writers by locking its users row,
// which always exists. FOR UPDATE on the session and queue rows alone
// cannot serialize two writers that both start from an empty ledger.
func LockTenant(tx *gorm.DB, tenantID uint) *gorm.DB {
    var owner models.User
    return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&owner, tenantID)
}

func NewScanService(db *gorm.DB, ros *roster.Service) *ScanService {
    return &ScanService{DB: db, Roster: ros}
}

// scanState is the ledger view read under row locks.
type scanState struct {
    Code              string
    Now               time.Time
    Settings          models.KioskSettings
    Available         bool
    UnavailableReason string
    OpenSessions      []models.PassSession // start order
    Queue             []models.QueueEntry  // FIFO order
    StudentName       string
    NameFound         bool
    RosterSize        int64
    Banned            bool
}

// scanPlan is the ledger mutation set decide produces, applied atomically.
type scanPlan struct {
    Result            Result
    EndSessionID      uint // close with ended_by=kiosk_scan
    BanStudent        bool
    RemoveQueueIDs    []uint
    ClearQueueForCode bool
    PromoteCode       string // open a session for the popped head (ended_by=auto)
    JoinQueue         bool
    StartSession      bool
}

// decide maps the ledger view to an outcome and mutation set. The check
// order is load-bearing: returning holders bypass suspension, roster
// resolution precedes the ban check, self-removal precedes the queue lock.
func decide(st scanState) scanPlan {
    s := st.Settings

    var returning *models.PassSession
    for i := range st.OpenSessions {
        if st.OpenSessions[i].StudentCode == st.Code {
            returning = &st.OpenSessions[i]
            break
        }
    }

    if returning == nil && !st.Available {
        if !(s.AllowQueueWhileSuspended && s.EnableQueue) {
            msg := "Passes not available: " + st.UnavailableReason
            if st.UnavailableReason == ReasonSuspended {
                msg = "Kiosk is currently suspended by administrator"
            }
            return scanPlan{Result: Result{Action: ActionDenied, Message: msg, Status: http.StatusForbidden}}
        }
        // queue-while-suspended: no new pass, but the queue logic below may admit them
    }

    if st.RosterSize == 0 {
        return scanPlan{Result: Result{Message: "Roster empty. Please upload student list.", Status: http.StatusNotFound}}
    }
    if !st.NameFound {
        return scanPlan{Result: Result{Message: "Incorrect ID: " + st.Code, Status: http.StatusNotFound}}
    }

    if returning != nil {
        p := scanPlan{EndSessionID: returning.ID}
        action := ActionEnded
        var msg string
        if s.AutoBanOverdue && !st.Banned {
            if returning.DurationSeconds(st.Now) > int64(s.OverdueMinutes)*60 {
                p.BanStudent = true
                action = ActionEndedBanned
                msg = "PASS RETURNED LATE - AUTO BANNED"
            }
        }
        if s.EnableQueue && s.AutoPromoteQueue && len(st.Queue) > 0 {
            head := st.Queue[0]
            p.PromoteCode = head.StudentCode
            p.RemoveQueueIDs = append(p.RemoveQueueIDs, head.ID)
            action = ActionEndedAutoStarted
        }
        p.Result = Result{OK: true, Action: action, Message: msg, Name: st.StudentName, Status: http.StatusOK}
        return p
    }

    if st.Banned {
        return scanPlan{Result: Result{
            Action:  ActionBanned,
            Message: "RESTROOM PRIVILEGES SUSPENDED - SEE TEACHER",
            Name:    st.StudentName,
            Status:  http.StatusForbidden,
        }}
    }

    // Scanning again while waitlisted removes the entry. Idempotent escape
    // hatch: a later scan re-admits through the normal rules below.
    for _, q := range st.Queue {
        if q.StudentCode == st.Code {
            return scanPlan{
                RemoveQueueIDs: []uint{q.ID},
                Result:         Result{OK: true, Action: ActionLeftQueue, Message: "Removed from waitlist", Name: st.StudentName, Status: http.StatusOK},
            }
        }
    }

    // Queue lock: with a non-empty waitlist only its head may start.
    var popHead []uint
    if len(st.Queue) > 0 {
        if st.Queue[0].StudentCode != st.Code {
            if s.EnableQueue {
                return scanPlan{JoinQueue: true, Result: Result{OK: true, Action: ActionQueued, Message: "Added to Waitlist (Queue is active)", Status: http.StatusOK}}
            }
            return scanPlan{Result: Result{Action: ActionDenied, Message: "Waitlist is active. Cannot start.", Status: http.StatusConflict}}
        }
        popHead = []uint{st.Queue[0].ID}
    }

    if len(st.OpenSessions) >= s.Capacity || !st.Available {
        for _, q := range st.Queue {
            if q.StudentCode == st.Code {
                return scanPlan{Result: Result{Action: ActionDeniedQueuePosition, Message: "You are in the waitlist.", Status: http.StatusConflict}}
            }
        }
        if s.EnableQueue {
            return scanPlan{JoinQueue: true, Result: Result{OK: true, Action: ActionQueued, Message: "Added to Waitlist", Status: http.StatusOK}}
        }
        return scanPlan{Result: Result{Action: ActionDenied, Message: "Pass limit reached.", Status: http.StatusConflict}}
    }

    return scanPlan{
        RemoveQueueIDs:    popHead,
        ClearQueueForCode: true,
        StartSession:      true,
        Result:            Result{OK: true, Action: ActionStarted, Name: st.StudentName, Status: http.StatusOK},
    }
}

// Scan runs the state machine for one scanned code. All ledger mutations of
// a scan commit or roll back as a unit.
func (sv *ScanService) Scan(tenantID uint, code string) (Result, error) {
    code = strings.TrimSpace(code)
    if code == "" {
        return Result{Message: "No code scanned", Status: http.StatusBadRequest}, nil
    }

    var res Result
    err := sv.DB.Transaction(func(tx *gorm.DB) error {
        now := time.Now().UTC()

        if err := LockTenant(tx, tenantID).Error; err != nil {
            return err
        }

        settings, err := LoadSettings(tx, tenantID)
        if err != nil {
            return err
        }
        available, reason := Availability(settings, now)

        var open []models.PassSession
        if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
            Where("user_id_ref = ? AND end_ts IS NULL", tenantID).
            Order("start_ts ASC, id ASC").
            Find(&open).Error; err != nil {
            return err
        }
        var queue []models.QueueEntry
        if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
            Where("user_id_ref = ?", tenantID).
            Order("joined_ts ASC, id ASC").
            Find(&queue).Error; err != nil {
            return err
        }

        ros := sv.Roster.Tx(tx)
        size, err := ros.Size(tenantID)
        if err != nil {
            return err
        }
        name, err := ros.ResolveName(tenantID, code)
        found := err == nil
        if err != nil && !errors.Is(err, roster.ErrNotFound) {
            return err
        }
        banned, err := ros.IsBanned(tenantID, code)
        if err != nil {
            return err
        }

        plan := decide(scanState{
            Code:              code,
            Now:               now,
            Settings:          settings,
            Available:         available,
            UnavailableReason: reason,
            OpenSessions:      open,
            Queue:             queue,
            StudentName:       name,
            NameFound:         found,
            RosterSize:        size,
            Banned:            banned,
        })
        res = plan.Result
        return sv.apply(tx, tenantID, code, settings, now, plan, &res)
    })
    if err != nil {
        return Result{Message: "Scan failed. Please try again.", Status: http.StatusInternalServerError}, err
    }
    return res, nil
}

func (sv *ScanService) apply(tx *gorm.DB, tenantID uint, code string, settings models.KioskSettings, now time.Time, plan scanPlan, res *Result) error {
    if plan.EndSessionID != 0 {
        if err := tx.Model(&models.PassSession{}).
            Where("id = ? AND user_id_ref = ?", plan.EndSessionID, tenantID).
            Updates(map[string]interface{}{"end_ts": now, "ended_by": models.EndedByKioskScan}).Error; err != nil {
            return err
        }
    }
    if plan.BanStudent {
        if err := sv.Roster.Tx(tx).SetBanned(tenantID, code, true); err != nil {
            return err
        }
    }
    if len(plan.RemoveQueueIDs) > 0 {
        if err := tx.Where("id IN ? AND user_id_ref = ?", plan.RemoveQueueIDs, tenantID).
            Delete(&models.QueueEntry{}).Error; err != nil {
            return err
        }
    }
    if plan.ClearQueueForCode {
        if err := tx.Where("user_id_ref = ? AND student_code = ?", tenantID, code).
            Delete(&models.QueueEntry{}).Error; err != nil {
            return err
        }
    }
    if plan.PromoteCode != "" {
        sess := models.PassSession{
            StudentCode: plan.PromoteCode,
            StartTS:     now,
            Room:        settings.RoomName,
            EndedBy:     models.EndedByAuto,
            UserIDRef:   tenantID,
        }
        if err := tx.Create(&sess).Error; err != nil {
            return err
        }
        nextName, err := sv.Roster.Tx(tx).ResolveName(tenantID, plan.PromoteCode)
        if errors.Is(err, roster.ErrNotFound) {
            nextName = "Student"
        } else if err != nil {
            return err
        }
        res.NextStudent = &nextName
    }
    if plan.JoinQueue {
        entry := models.QueueEntry{StudentCode: code, UserIDRef: tenantID, JoinedTS: now}
        if err := tx.Create(&entry).Error; err != nil {
            return err
        }
    }
    if plan.StartSession {
        sess := models.PassSession{
            StudentCode: code,
            StartTS:     now,
            Room:        settings.RoomName,
            UserIDRef:   tenantID,
        }
        if err := tx.Create(&sess).Error; err != nil {
            return err
        }
    }
    return nil
}
