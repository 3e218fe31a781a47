package database

import (
    "log"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/config"
    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/utils"
)

// SeedTeacher creates the initial teacher account with its kiosk token
// and default settings on first boot.
func SeedTeacher(db *gorm.DB, cfg *config.Config) error {
    var count int64
    if err := db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&count).Error; err != nil {
        return err
    }
    if count > 0 {
        return nil
    }

    hashed, err := utils.HashPassword(cfg.TeacherPassword)
    if err != nil {
        return err
    }
    kioskToken, err := utils.GenerateCode(12)
    if err != nil {
        return err
    }

    teacher := models.User{
        UserID:     uuid.NewString(),
        FullName:   cfg.TeacherFullName,
        Email:      cfg.TeacherEmail,
        Password:   hashed,
        Role:       models.RoleTeacher,
        KioskToken: kioskToken,
        Active:     true,
    }
    err = db.Transaction(func(tx *gorm.DB) error {
        if err := tx.Create(&teacher).Error; err != nil {
            return err
        }
        settings := models.DefaultKioskSettings(teacher.ID)
        return tx.Create(&settings).Error
    })
    if err != nil {
        return err
    }
    log.Println("Seeded initial teacher:", teacher.Email)
    return nil
}

// SeedDev creates the operator account when a dev passcode is configured.
func SeedDev(db *gorm.DB, cfg *config.Config) error {
    if cfg.DevPasscode == "" {
        return nil
    }
    var count int64
    if err := db.Model(&models.User{}).Where("role = ?", models.RoleDev).Count(&count).Error; err != nil {
        return err
    }
    if count > 0 {
        return nil
    }

    hashed, err := utils.HashPassword(cfg.DevPasscode)
    if err != nil {
        return err
    }
    dev := models.User{
        UserID:   uuid.NewString(),
        FullName: "Developer",
        Email:    "dev@hallday.local",
        Password: hashed,
        Role:     models.RoleDev,
        Active:   true,
    }
    if err := db.Create(&dev).Error; err != nil {
        return err
    }
    log.Println("Seeded dev account:", dev.Email)
    return nil
}
