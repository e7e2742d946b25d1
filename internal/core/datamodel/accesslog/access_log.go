package accesslog

import "time"

// AccessLog is one ingested offline access event. IDs are generated on
// ingest; device record numbers are not unique across terminals and are not
// stored. (terminal_id, occurred_at, card_id) is the dedup key.
type AccessLog struct {
	ID           string    `gorm:"primaryKey;type:varchar(48)"`
	CardID       string    `gorm:"column:card_id;not null;default:''"`
	OccurredAt   time.Time `gorm:"column:occurred_at;not null"`
	TerminalID   string    `gorm:"column:terminal_id;not null;default:''"`
	TerminalAddr string    `gorm:"column:terminal_addr"`
	DoorID       string    `gorm:"column:door_id;not null;default:''"`
	TermDoor     string    `gorm:"column:term_door"`
	Direction    int       `gorm:"column:direction;not null;default:0"`
	VerifyMethod int       `gorm:"column:verify_method;not null;default:0"`
	VerifyStatus int       `gorm:"column:verify_status;not null;default:0"`
	UserID       string    `gorm:"column:user_id"`
}

func (AccessLog) TableName() string {
	return "access_logs"
}
