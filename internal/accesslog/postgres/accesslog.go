package postgres

import (
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/access-bridge/internal/accesslog"
	logDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/accesslog"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogRepository persists offline access events pulled from terminals into
// the terminal database.
type LogRepository struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewLogRepository(db *gorm.DB, logger *slog.Logger) *LogRepository {
	return &LogRepository{db: db, logger: logger, now: time.Now}
}

// Append normalizes and stores raw device records, skipping any record whose
// (terminal id, timestamp, card id) triple is already present. The returned
// count is the number of rows actually inserted. A record that fails to
// insert is logged and skipped; it never aborts the batch.
func (r *LogRepository) Append(term *terminal.Terminal, records []map[string]string) (int, error) {
	saved := 0
	for _, fields := range records {
		entry := accesslog.FromRecord(term, fields, r.now())

		var count int64
		err := r.db.Model(&logDatamodel.AccessLog{}).
			Where("terminal_id = ? AND occurred_at = ? AND card_id = ?",
				entry.TerminalID, entry.OccurredAt, entry.CardID).
			Count(&count).Error
		if err != nil {
			return saved, err
		}
		if count > 0 {
			continue
		}

		row := &logDatamodel.AccessLog{
			ID:           uuid.NewString(),
			CardID:       entry.CardID,
			OccurredAt:   entry.OccurredAt,
			TerminalID:   entry.TerminalID,
			TerminalAddr: entry.TerminalAddr,
			DoorID:       entry.DoorID,
			TermDoor:     entry.TermDoor,
			Direction:    int(entry.Direction),
			VerifyMethod: entry.VerifyMethod,
			VerifyStatus: entry.VerifyStatus,
			UserID:       entry.UserID,
		}
		if err := r.db.Create(row).Error; err != nil {
			r.logger.Error("failed to save access log",
				"terminal_id", entry.TerminalID,
				"card_id", entry.CardID,
				"error", err)
			continue
		}
		saved++
	}
	return saved, nil
}

// LastSyncedTime returns the newest stored event time for a terminal, or nil
// if the terminal has never contributed a log.
func (r *LogRepository) LastSyncedTime(terminalID string) (*time.Time, error) {
	var row logDatamodel.AccessLog
	err := r.db.
		Where("terminal_id = ?", terminalID).
		Order("occurred_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := row.OccurredAt
	return &t, nil
}
