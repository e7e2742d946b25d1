package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePushCompleted = "sync.push.completed"
	EventTypePullCompleted = "sync.pull.completed"
	EventTypeDeviceFailed  = "sync.device.failed"
)

type PushCompletedEvent struct {
	BaseEvent
	UsersSynced     int `json:"users_synced"`
	TemplatesSynced int `json:"templates_synced"`
	Devices         int `json:"devices"`
}

func NewPushCompletedEvent(usersSynced, templatesSynced, devices int) *PushCompletedEvent {
	return &PushCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePushCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"users_synced":     usersSynced,
				"templates_synced": templatesSynced,
				"devices":          devices,
			},
		},
		UsersSynced:     usersSynced,
		TemplatesSynced: templatesSynced,
		Devices:         devices,
	}
}

type PullCompletedEvent struct {
	BaseEvent
	LogsSaved int `json:"logs_saved"`
	Devices   int `json:"devices"`
	Failures  int `json:"failures"`
}

func NewPullCompletedEvent(logsSaved, devices, failures int) *PullCompletedEvent {
	return &PullCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePullCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"logs_saved": logsSaved,
				"devices":    devices,
				"failures":   failures,
			},
		},
		LogsSaved: logsSaved,
		Devices:   devices,
		Failures:  failures,
	}
}

type DeviceFailedEvent struct {
	BaseEvent
	DeviceName string `json:"device_name"`
	Operation  string `json:"operation"`
	Reason     string `json:"reason"`
}

func NewDeviceFailedEvent(deviceName, operation, reason string) *DeviceFailedEvent {
	return &DeviceFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDeviceFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"device_name": deviceName,
				"operation":   operation,
				"reason":      reason,
			},
		},
		DeviceName: deviceName,
		Operation:  operation,
		Reason:     reason,
	}
}
