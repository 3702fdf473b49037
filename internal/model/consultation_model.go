package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Consultation is a source tax consultation case. LawRefs holds the
// referenced law articles as [{"lawId": ..., "articleKey": ...}].
type Consultation struct {
	Id        int64          `gorm:"primaryKey;autoIncrement"`
	Title     string         `gorm:"type:varchar(512)"`
	Category  string         `gorm:"type:varchar(128);index"`
	Content   string         `gorm:"type:text"`
	LawRefs   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Consultation) TableName() string {
	return "consultations"
}
