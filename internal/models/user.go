package models

import (
    "regexp"
    "time"
)

const (
    RoleTeacher = "teacher"
    RoleDev     = "dev"
)

// User is a teacher account. Every roster row, session, queue entry and
// settings record is scoped to one user; tenants never see each other's data.
type User struct {
    ID         uint    `gorm:"primaryKey"`
    UserID     string  `gorm:"uniqueIndex"`
    FullName   string
    Email      string  `gorm:"uniqueIndex"`
    Password   string
    Role       string  // "teacher" or "dev"
    KioskSlug  *string `gorm:"uniqueIndex"`
    KioskToken string  `gorm:"uniqueIndex"` // opaque token for kiosk/display clients
    LastLogin  *time.Time
    Active     bool
    CreatedAt  time.Time
    UpdatedAt  time.Time
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,31}$`)

// SetKioskSlug validates and assigns a custom public URL slug. Empty clears it.
func (u *User) SetKioskSlug(slug string) bool {
    if slug == "" {
        u.KioskSlug = nil
        return true
    }
    if !slugPattern.MatchString(slug) {
        return false
    }
    u.KioskSlug = &slug
    return true
}

// PublicURLs returns the shareable kiosk and display URLs for this account.
func (u *User) PublicURLs(baseURL string) map[string]string {
    urls := map[string]string{
        "kiosk":   baseURL + "/kiosk?token=" + u.KioskToken,
        "display": baseURL + "/display?token=" + u.KioskToken,
    }
    if u.KioskSlug != nil {
        urls["kiosk_slug"] = baseURL + "/k/" + *u.KioskSlug
        urls["display_slug"] = baseURL + "/d/" + *u.KioskSlug
    }
    return urls
}
