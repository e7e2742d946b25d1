package postgres

import (
	synclogDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/synclog"
	"github.com/frahmantamala/access-bridge/internal/synclog"
	"gorm.io/gorm"
)

// SyncLogRepository appends to and summarizes the sync audit trail.
type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Record inserts one audit entry. The trail is append-only; there is no
// update path.
func (r *SyncLogRepository) Record(op *synclog.Operation) error {
	return r.db.Create(synclog.ToDataModel(op)).Error
}

// Stats groups attempts by (sync type, status).
func (r *SyncLogRepository) Stats() ([]*synclog.Stat, error) {
	var stats []*synclog.Stat
	err := r.db.Model(&synclogDatamodel.SyncLog{}).
		Select("sync_type, status, COUNT(*) as count").
		Group("sync_type").
		Group("status").
		Order("sync_type, status").
		Find(&stats).Error
	return stats, err
}

// Count returns the total number of recorded sync attempts.
func (r *SyncLogRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&synclogDatamodel.SyncLog{}).Count(&n).Error
	return n, err
}
