package model

import "time"

type Shipment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	SampleID  int64     `gorm:"type:bigint;not null;uniqueIndex:idx_shipment_sample_id" json:"-"`
	ShippedAt time.Time `gorm:"not null" json:"shipped_at"`
}

func (*Shipment) TableName() string {
	return "shipment"
}
