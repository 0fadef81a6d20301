package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	FiatBalance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	PublicKey     string          `gorm:"type:varchar(255);not null"`
	PrivateKeyEnc string          `gorm:"type:text;not null"`
	AccountID     string          `gorm:"type:varchar(100);not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	User User `gorm:"foreignKey:UserID"`
}
