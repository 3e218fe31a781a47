package roster

import (
    "errors"
    "fmt"
    "time"

    "gorm.io/gorm"

    "github.com/elbrielle/HalllDay/internal/models"
    "github.com/elbrielle/HalllDay/internal/utils"
)

var ErrNotFound = errors.New("student not in roster")

// Service resolves scanned codes to roster rows for one lookup path. It is
// constructed once and injected; methods take no ambient globals. Use Tx to
// run lookups inside a caller-owned transaction.
type Service struct {
    DB     *gorm.DB
    Cipher *utils.Cipher
}

func NewService(db *gorm.DB, cipher *utils.Cipher) *Service {
    return &Service{DB: db, Cipher: cipher}
}

// Tx returns a copy of the service bound to the given transaction handle.
func (s *Service) Tx(tx *gorm.DB) *Service {
    c := *s
    c.DB = tx
    return &c
}

// NameHash keys roster rows without storing the scanned ID in the clear.
// The prefix length matches existing production rows; do not change it.
func NameHash(userID uint, code string) string {
    return utils.SHA256Hex(fmt.Sprintf("student_%d_%s", userID, code))[:16]
}

// ResolveName maps a scanned code to the student's display name.
// Returns ErrNotFound when the code has no roster row.
func (s *Service) ResolveName(userID uint, code string) (string, error) {
    var row models.RosterStudent
    err := s.DB.Where("user_id_ref = ? AND name_hash = ?", userID, NameHash(userID, code)).First(&row).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return "", ErrNotFound
    }
    if err != nil {
        return "", err
    }
    return row.DisplayName, nil
}

func (s *Service) IsBanned(userID uint, code string) (bool, error) {
    var row models.RosterStudent
    err := s.DB.Where("user_id_ref = ? AND name_hash = ?", userID, NameHash(userID, code)).First(&row).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return row.Banned, nil
}

// SetBanned flips the ban flag for a scanned code, stamping BannedSince on
// ban and clearing it on unban. Missing rows are ignored.
func (s *Service) SetBanned(userID uint, code string, banned bool) error {
    updates := map[string]interface{}{"banned": banned}
    if banned {
        now := time.Now().UTC()
        updates["banned_since"] = &now
    } else {
        updates["banned_since"] = nil
    }
    return s.DB.Model(&models.RosterStudent{}).
        Where("user_id_ref = ? AND name_hash = ?", userID, NameHash(userID, code)).
        Updates(updates).Error
}

// SetBannedByHash is the admin-facing variant keyed by the stored hash.
func (s *Service) SetBannedByHash(userID uint, nameHash string, banned bool) error {
    var row models.RosterStudent
    err := s.DB.Where("user_id_ref = ? AND name_hash = ?", userID, nameHash).First(&row).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return ErrNotFound
        }
        return err
    }
    row.Banned = banned
    if banned {
        now := time.Now().UTC()
        row.BannedSince = &now
    } else {
        row.BannedSince = nil
    }
    return s.DB.Save(&row).Error
}

func (s *Service) Size(userID uint) (int64, error) {
    var count int64
    err := s.DB.Model(&models.RosterStudent{}).Where("user_id_ref = ?", userID).Count(&count).Error
    return count, err
}

// Replace swaps the tenant's whole roster for the given parsed rows inside
// one transaction. Returns the number of rows written.
func (s *Service) Replace(userID uint, rows []CSVRow) (int, error) {
    count := 0
    err := s.DB.Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("user_id_ref = ?", userID).Delete(&models.RosterStudent{}).Error; err != nil {
            return err
        }
        for i, r := range rows {
            hashSource := r.StudentID
            if hashSource == "" {
                hashSource = fmt.Sprintf("row_%d", i)
            }
            var encrypted *string
            if r.StudentID != "" {
                enc, err := s.Cipher.Encrypt(r.StudentID)
                if err != nil {
                    return err
                }
                encrypted = &enc
            }
            row := models.RosterStudent{
                DisplayName: r.Name,
                NameHash:    NameHash(userID, hashSource),
                EncryptedID: encrypted,
                UserIDRef:   userID,
            }
            if err := tx.Create(&row).Error; err != nil {
                return err
            }
            count++
        }
        return nil
    })
    if err != nil {
        return 0, err
    }
    return count, nil
}

// DecryptID recovers the plain scanned ID from a roster row for export.
func (s *Service) DecryptID(row models.RosterStudent) (string, bool) {
    if row.EncryptedID == nil {
        return "", false
    }
    plain, err := s.Cipher.Decrypt(*row.EncryptedID)
    if err != nil {
        return "", false
    }
    return plain, true
}
