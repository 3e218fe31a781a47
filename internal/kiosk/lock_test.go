package kiosk

import (
    "strings"
    "testing"

    "gorm.io/driver/postgres"
    "gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
    t.Helper()
    db, err := gorm.Open(postgres.New(postgres.Config{
        DSN: "host=localhost user=hallday dbname=hallday",
    }), &gorm.Config{
        DryRun:                 true,
        DisableAutomaticPing:   true,
        SkipDefaultTransaction: true,
    })
    if err != nil {
        t.Fatalf("open dry-run db: %v", err)
    }
    return db
}

// Two writers starting from an empty ledger share no session or queue rows
// to lock, so serialization has to come from the tenant's owner row.
func TestLockTenantLocksOwnerRow(t *testing.T) {
    db := dryRunDB(t)
    sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return LockTenant(tx, 7) })
    if !strings.Contains(sql, "FOR UPDATE") {
        t.Fatalf("owner row must be locked for update, got: %s", sql)
    }
    if !strings.Contains(sql, `"users"`) {
        t.Fatalf("lock must target the users row, got: %s", sql)
    }
}
