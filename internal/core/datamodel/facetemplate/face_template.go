package facetemplate

// FaceTemplate is the sync-ledger row for one (user, role) pair. The row is
// created lazily the first time a template is derived for the user and is
// never deleted; synced_devices holds a JSON list of device names that have
// acknowledged the template.
type FaceTemplate struct {
	ID            int64  `gorm:"primaryKey"`
	UserID        string `gorm:"column:user_id;not null;uniqueIndex:idx_face_templates_user_role"`
	UserRole      string `gorm:"column:user_role;not null;uniqueIndex:idx_face_templates_user_role"`
	TableYear     string `gorm:"column:table_year;not null"`
	SyncedDevices string `gorm:"column:synced_devices;default:'[]'"`
}

func (FaceTemplate) TableName() string {
	return "face_templates"
}
