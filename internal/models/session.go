package models

import "time"

// How a session ended (or how it was started, for promoted sessions).
const (
    EndedByKioskScan     = "kiosk_scan"
    EndedByAdminOverride = "admin_override"
    EndedByAuto          = "auto"         // promoted on a scan-back
    EndedByAutoPromote   = "auto_promote" // promoted by the status aggregator
)

// PassSession is one use of the hall pass. EndTS nil means the holder is
// currently out. At most Settings.Capacity open sessions exist per tenant.
type PassSession struct {
    ID          uint       `gorm:"primaryKey"`
    StudentCode string     `gorm:"size:64;index"`
    StartTS     time.Time  `gorm:"index"`
    EndTS       *time.Time `gorm:"index"`
    Room        string     `gorm:"size:128"`
    EndedBy     string     `gorm:"size:32"`
    UserIDRef   uint       `gorm:"index"`
    CreatedAt   time.Time
}

// DurationSeconds is the elapsed time of the session, capped at EndTS once closed.
func (s *PassSession) DurationSeconds(now time.Time) int64 {
    end := now
    if s.EndTS != nil {
        end = *s.EndTS
    }
    d := end.Sub(s.StartTS)
    if d < 0 {
        return 0
    }
    return int64(d.Seconds())
}
