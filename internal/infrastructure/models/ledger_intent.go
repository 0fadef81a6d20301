package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type LedgerIntent struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Kind        string      `gorm:"type:varchar(50);not null;index"`
	SubjectID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Step        string      `gorm:"type:varchar(50);not null"`
	Status      string      `gorm:"type:varchar(20);not null;index"`
	LastError   null.String `gorm:"type:text"`
	CompletedAt null.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`
}
