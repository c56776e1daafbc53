package model

import "time"

type QCVerdict string

const (
	QCPass QCVerdict = "PASS"
	QCFail QCVerdict = "FAIL"
)

func (v QCVerdict) Valid() bool {
	return v == QCPass || v == QCFail
}

// QCResult is written at most once per sample, enforced by the unique index
// on sample_id.
type QCResult struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	SampleID  int64     `gorm:"type:bigint;not null;uniqueIndex:idx_qc_results_sample_id" json:"-"`
	PlateID   int       `gorm:"not null" json:"plate_id"`
	Well      string    `gorm:"type:varchar(16);not null" json:"well"`
	QC1       float64   `gorm:"column:qc_1;not null" json:"qc_1"`
	QC2       float64   `gorm:"column:qc_2;not null" json:"qc_2"`
	QC3       QCVerdict `gorm:"column:qc_3;type:varchar(8);not null" json:"qc_3"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (*QCResult) TableName() string {
	return "qc_results"
}
