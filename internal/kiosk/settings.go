package kiosk

import (
    "errors"

    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/models"
)

// LoadSettings returns the tenant's settings row, or in-memory defaults
// when the tenant has never saved any. The read path never writes.
func LoadSettings(db *gorm.DB, tenantID uint) (models.KioskSettings, error) {
    var st models.KioskSettings
    err := db.Where("user_id_ref = ?", tenantID).First(&st).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return models.DefaultKioskSettings(tenantID), nil
    }
    if err != nil {
        return models.KioskSettings{}, err
    }
    if st.Capacity < 1 {
        st.Capacity = 1
    }
    if st.OverdueMinutes < 1 {
        st.OverdueMinutes = 1
    }
    return st, nil
}
