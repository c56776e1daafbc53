package model

type Sample struct {
	BaseModel
	OrderID  int64        `gorm:"type:bigint;not null;index:idx_sample_order_id" json:"-"`
	Sequence string       `gorm:"type:text;not null" json:"sequence"`
	Status   SampleStatus `gorm:"type:varchar(32);not null;default:ORDERED;index:idx_sample_status_created,priority:1" json:"status"`
}

func (*Sample) TableName() string {
	return "sample"
}
