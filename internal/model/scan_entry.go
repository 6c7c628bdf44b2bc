package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// ScanEntry is the persisted projection of one queued symbol. The slim
// columns are always written; Result only holds the full payload for
// entries flagged important, to bound storage growth.
type ScanEntry struct {
	Symbol       string         `gorm:"primaryKey;type:varchar(16)"`
	LookbackDays int            `gorm:"not null"`
	Status       string         `gorm:"type:varchar(16);not null"`
	Important    bool           `gorm:"default:false"`
	ErrorMessage sql.NullString `gorm:"type:text"`
	Result       datatypes.JSON `gorm:"type:jsonb"`
	LastScanAt   sql.NullTime
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (ScanEntry) TableName() string {
	return "scan_entries"
}
