package terminal

// Terminal is a row in the terminal registry. Credentials are the device's
// HTTP basic-auth pair; active gates whether sync flows visit the device.
type Terminal struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"column:name;not null"`
	TerminalID string `gorm:"column:terminal_id;not null"`
	Address    string `gorm:"column:address;not null"`
	Port       string `gorm:"column:port;not null;default:'80'"`
	// No gorm default tag: gorm would omit a false value on INSERT and the
	// column default would flip inactive terminals back to active.
	Active bool `gorm:"column:active;not null"`
	Model      string `gorm:"column:model"`
	Firmware   string `gorm:"column:firmware"`
	DoorNo     string `gorm:"column:door_no"`
	Username   string `gorm:"column:username;default:'admin'"`
	Password   string `gorm:"column:password"`
}

func (Terminal) TableName() string {
	return "terminals"
}
