package synclog

import (
	"time"

	synclogDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/synclog"
)

// Type identifies the direction of a sync flow in the audit trail.
type Type string

const (
	TypePush Type = "users_to_devices"
	TypePull Type = "logs_from_devices"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Operation is one audit-trail entry. DeviceName is nil for the aggregate
// push record; ErrorMessage is nil on success.
type Operation struct {
	SyncType      Type      `json:"sync_type"`
	DeviceName    *string   `json:"device_name,omitempty"`
	RecordsSynced int       `json:"records_synced"`
	Status        Status    `json:"status"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewSuccess(syncType Type, deviceName *string, recordsSynced int) *Operation {
	return &Operation{
		SyncType:      syncType,
		DeviceName:    deviceName,
		RecordsSynced: recordsSynced,
		Status:        StatusSuccess,
		OccurredAt:    time.Now(),
	}
}

func NewError(syncType Type, deviceName *string, errorMessage string) *Operation {
	return &Operation{
		SyncType:     syncType,
		DeviceName:   deviceName,
		Status:       StatusError,
		ErrorMessage: &errorMessage,
		OccurredAt:   time.Now(),
	}
}

// Stat is one row of the statistics surface: attempt count per
// (sync type, status) pair.
type Stat struct {
	SyncType string `json:"sync_type"`
	Status   string `json:"status"`
	Count    int64  `json:"count"`
}

func ToDataModel(op *Operation) *synclogDatamodel.SyncLog {
	return &synclogDatamodel.SyncLog{
		SyncType:      string(op.SyncType),
		DeviceName:    op.DeviceName,
		RecordsSynced: op.RecordsSynced,
		Status:        string(op.Status),
		ErrorMessage:  op.ErrorMessage,
		OccurredAt:    op.OccurredAt,
	}
}
