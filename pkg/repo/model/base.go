package model

import (
	"time"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate fills timestamps left unset by the caller.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return nil
}

func (b BaseModel) GetID() int64 {
	return b.ID
}

func (b BaseModel) GetUUID() uuid.UUID {
	return b.UUID
}
