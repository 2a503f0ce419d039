package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
)

// StoreCredit is a customer's store credit account. Its balance is never
// stored; every balance view is derived from the entry history.
type StoreCredit struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	Currency  enums.Currency `gorm:"column:currency;not null;default:'USD'"`
	Memo      *string        `gorm:"column:memo"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id client-side when the database default is not
// available (e.g. sqlite in tests).
func (s *StoreCredit) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
