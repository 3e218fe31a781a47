package models

import (
    "time"

    "gorm.io/datatypes"
)

// KioskSettings is the per-tenant configuration. One row per user.
// Schedule holds an optional weekly availability table as JSON; see the
// kiosk package for its shape and evaluation.
type KioskSettings struct {
    ID                       uint   `gorm:"primaryKey"`
    UserIDRef                uint   `gorm:"uniqueIndex"`
    RoomName                 string `gorm:"size:128"`
    Capacity                 int    `gorm:"default:1"`
    OverdueMinutes           int    `gorm:"default:10"`
    KioskSuspended           bool
    AutoBanOverdue           bool
    AutoPromoteQueue         bool
    EnableQueue              bool
    AllowQueueWhileSuspended bool
    Schedule                 datatypes.JSON `gorm:"type:jsonb"`
    CreatedAt                time.Time
    UpdatedAt                time.Time
}

// DefaultKioskSettings are applied when a tenant has no settings row yet.
func DefaultKioskSettings(userID uint) KioskSettings {
    return KioskSettings{
        UserIDRef:      userID,
        RoomName:       "Hall Pass",
        Capacity:       1,
        OverdueMinutes: 10,
    }
}
