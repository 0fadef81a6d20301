package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

type Draw struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title                 string          `gorm:"type:varchar(200);not null"`
	Symbol                string          `gorm:"type:varchar(20);not null"`
	PrizePool             decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	DrawAt                time.Time       `gorm:"not null;index"`
	Status                string          `gorm:"type:varchar(20);not null;index"`
	TotalTicketsSold      int             `gorm:"not null;default:0"`
	StarKeys              string          `gorm:"type:varchar(100);not null;default:'[]'"`
	CommitHash            string          `gorm:"type:varchar(100)"`
	RevealSeed            null.String     `gorm:"type:varchar(100)"`
	WinnerWalletID        *uuid.UUID      `gorm:"type:uuid;index"`
	WinningTicketSerial   string          `gorm:"type:varchar(100)"`
	TotalPrizeDistributed decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	NFTTokenID            string          `gorm:"type:varchar(100)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

type ForgedKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	WalletID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_wallet_draw"`
	DrawID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_wallet_draw"`
	SerialNumber string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	StarKeys     string    `gorm:"type:varchar(100);not null"`
	NFTSerial    int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Draw Draw `gorm:"foreignKey:DrawID"`
}
