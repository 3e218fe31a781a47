package models

import "time"

// RosterStudent is one roster row. The scanned ID is never stored in the
// clear: NameHash keys lookups and EncryptedID allows CSV re-export.
type RosterStudent struct {
    ID          uint    `gorm:"primaryKey"`
    DisplayName string  `gorm:"size:128"`
    NameHash    string  `gorm:"size:64;uniqueIndex:uniq_tenant_hash"`
    EncryptedID *string `gorm:"type:text"`
    Banned      bool    `gorm:"index"`
    BannedSince *time.Time
    UserIDRef   uint `gorm:"uniqueIndex:uniq_tenant_hash"`
    CreatedAt   time.Time
    UpdatedAt   time.Time
}
