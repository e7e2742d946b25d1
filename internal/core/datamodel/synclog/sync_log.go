package synclog

import "time"

// SyncLog is one row of the append-only sync audit trail. Rows are inserted
// once per flow attempt and never updated.
type SyncLog struct {
	ID            int64     `gorm:"primaryKey"`
	SyncType      string    `gorm:"column:sync_type;not null"`
	DeviceName    *string   `gorm:"column:device_name"`
	RecordsSynced int       `gorm:"column:records_synced;not null;default:0"`
	Status        string    `gorm:"column:status;not null"`
	ErrorMessage  *string   `gorm:"column:error_message"`
	OccurredAt    time.Time `gorm:"column:occurred_at;not null"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
