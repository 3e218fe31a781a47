package models

import "time"

// QueueEntry is one student waiting for a free slot. FIFO by JoinedTS,
// ties broken by insertion id. One entry per (tenant, student) enforced
// by the composite unique index.
type QueueEntry struct {
    ID          uint      `gorm:"primaryKey"`
    StudentCode string    `gorm:"size:64;uniqueIndex:uniq_tenant_student"`
    UserIDRef   uint      `gorm:"uniqueIndex:uniq_tenant_student"`
    JoinedTS    time.Time `gorm:"index"`
    CreatedAt   time.Time
}
