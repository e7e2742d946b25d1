package syncengine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/frahmantamala/access-bridge/internal"
	"github.com/frahmantamala/access-bridge/internal/core/events"
	"github.com/frahmantamala/access-bridge/internal/deviceapi"
	"github.com/frahmantamala/access-bridge/internal/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/synclog"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"github.com/frahmantamala/access-bridge/internal/user"
)

// UserStore reads canonical users from the directory database.
type UserStore interface {
	ListUnsynced(w *user.Window) ([]*user.CanonicalUser, error)
}

// TemplateStore derives face templates and tracks per-device sync state.
type TemplateStore interface {
	ListUnsynced(users []*user.CanonicalUser) ([]*facetemplate.FaceTemplate, error)
	MarkSynced(templateID int64, deviceName string) error
}

// LogStore persists pulled access events.
type LogStore interface {
	Append(term *terminal.Terminal, records []map[string]string) (int, error)
	LastSyncedTime(terminalID string) (*time.Time, error)
}

// Registry loads the current device list. It is consulted afresh at the
// start of every flow so device changes between cycles are picked up.
type Registry interface {
	ListActive() ([]*terminal.Terminal, error)
}

// AuditLog records every flow attempt's outcome.
type AuditLog interface {
	Record(op *synclog.Operation) error
}

// Channel is the per-device capability the engine drives. Implementations
// signal failure in-band; a false or empty result means zero progress for
// that call and nothing more.
type Channel interface {
	Name() string
	TerminalID() string
	EnrollUser(u *user.CanonicalUser) bool
	EnrollFaceTemplate(t *facetemplate.FaceTemplate) bool
	FetchOfflineLogs(start, end *time.Time) []deviceapi.Record
}

// ChannelFactory binds a channel to one terminal for the duration of a flow.
type ChannelFactory func(term *terminal.Terminal) Channel

// Engine orchestrates the push flow (users and face templates out to
// devices) and the pull flow (offline access logs back in). Devices are
// visited sequentially; a failure on one device never aborts the others.
type Engine struct {
	users     UserStore
	templates TemplateStore
	logs      LogStore
	registry  Registry
	audit     AuditLog
	channels  ChannelFactory
	bus       *events.EventBus
	logger    *slog.Logger
	now       func() time.Time
}

func NewEngine(
	users UserStore,
	templates TemplateStore,
	logs LogStore,
	registry Registry,
	audit AuditLog,
	channels ChannelFactory,
	bus *events.EventBus,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		users:     users,
		templates: templates,
		logs:      logs,
		registry:  registry,
		audit:     audit,
		channels:  channels,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

type PushOptions struct {
	// Window restricts the user query by registration date.
	Window *user.Window
	// DeviceName restricts the push to one named terminal.
	DeviceName string
}

type PushSummary struct {
	UsersSynced     int `json:"users_synced"`
	TemplatesSynced int `json:"templates_synced"`
	Devices         int `json:"devices"`
}

func (s PushSummary) Total() int {
	return s.UsersSynced + s.TemplatesSynced
}

type PullOptions struct {
	// DeviceName restricts the pull to one named terminal.
	DeviceName string
}

type PullSummary struct {
	LogsSaved int `json:"logs_saved"`
	Devices   int `json:"devices"`
	Failures  int `json:"failures"`
}

// PushUsers runs the push flow. Users and templates are loaded once, then
// every user is re-enrolled on every device (device-side upsert makes that
// idempotent) and each template goes only to devices that have not yet
// acknowledged it. Any error escaping the flow is caught here, written to
// the audit trail with a zero count, and returned; it never reaches the
// scheduler.
func (e *Engine) PushUsers(opts PushOptions) (summary PushSummary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("panic during push flow",
				"panic", rec, "stack", string(debug.Stack()))
			err = internal.NewInternalError("push flow panicked", fmt.Errorf("%v", rec))
			e.recordPushError(err)
			summary = PushSummary{}
		}
	}()

	e.logger.Info("push flow started", "device_filter", opts.DeviceName)

	terminals, err := e.selectTerminals(opts.DeviceName)
	if err != nil {
		e.recordPushError(err)
		return PushSummary{}, err
	}

	users, err := e.users.ListUnsynced(opts.Window)
	if err != nil {
		err = fmt.Errorf("load unsynced users: %w", err)
		e.recordPushError(err)
		return PushSummary{}, err
	}

	templates, err := e.templates.ListUnsynced(users)
	if err != nil {
		err = fmt.Errorf("load face templates: %w", err)
		e.recordPushError(err)
		return PushSummary{}, err
	}

	summary.Devices = len(terminals)
	for _, term := range terminals {
		ch := e.channels(term)
		deviceUsers := 0
		deviceTemplates := 0

		for _, u := range users {
			if ch.EnrollUser(u) {
				deviceUsers++
			}
		}

		for _, t := range templates {
			if t.SyncedDevices.Contains(ch.Name()) {
				continue
			}
			if !ch.EnrollFaceTemplate(t) {
				continue
			}
			if err := e.templates.MarkSynced(t.ID, ch.Name()); err != nil {
				err = fmt.Errorf("mark template %d synced to %s: %w", t.ID, ch.Name(), err)
				e.recordPushError(err)
				return PushSummary{}, err
			}
			deviceTemplates++
		}

		summary.UsersSynced += deviceUsers
		summary.TemplatesSynced += deviceTemplates
		e.logger.Info("device push complete",
			"device", ch.Name(),
			"users_synced", deviceUsers,
			"templates_synced", deviceTemplates)
	}

	if err := e.audit.Record(synclog.NewSuccess(synclog.TypePush, nil, summary.Total())); err != nil {
		e.logger.Error("failed to record push outcome", "error", err)
	}

	e.publish(events.NewPushCompletedEvent(summary.UsersSynced, summary.TemplatesSynced, summary.Devices))
	e.logger.Info("push flow completed",
		"users_synced", summary.UsersSynced,
		"templates_synced", summary.TemplatesSynced,
		"devices", summary.Devices)
	return summary, nil
}

// PullLogs runs the pull flow. Each device is handled independently: its
// last ingested log time bounds the fetch window, fetched records are
// deduplicated on ingest, and a per-device success or error entry lands in
// the audit trail. An empty fetch is steady state and writes nothing.
func (e *Engine) PullLogs(opts PullOptions) (PullSummary, error) {
	terminals, err := e.selectTerminals(opts.DeviceName)
	if err != nil {
		e.recordPullError(nil, err)
		return PullSummary{}, err
	}

	e.logger.Info("pull flow started", "devices", len(terminals))

	var summary PullSummary
	summary.Devices = len(terminals)

	for _, term := range terminals {
		saved, pullErr := e.pullDevice(term)
		if pullErr != nil {
			summary.Failures++
			name := term.Name
			e.logger.Error("device pull failed", "device", name, "error", pullErr)
			e.recordPullError(&name, pullErr)
			e.publish(events.NewDeviceFailedEvent(name, string(synclog.TypePull), pullErr.Error()))
			continue
		}
		summary.LogsSaved += saved
	}

	e.publish(events.NewPullCompletedEvent(summary.LogsSaved, summary.Devices, summary.Failures))
	e.logger.Info("pull flow completed",
		"logs_saved", summary.LogsSaved,
		"devices", summary.Devices,
		"failures", summary.Failures)
	return summary, nil
}

// pullDevice fetches and ingests one terminal's offline logs. Panics are
// converted to errors so one misbehaving device cannot take down the flow.
func (e *Engine) pullDevice(term *terminal.Terminal) (saved int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("panic during device pull",
				"device", term.Name, "panic", rec, "stack", string(debug.Stack()))
			err = internal.NewInternalError("device pull panicked", fmt.Errorf("%v", rec))
			saved = 0
		}
	}()

	ch := e.channels(term)

	start, err := e.logs.LastSyncedTime(ch.TerminalID())
	if err != nil {
		return 0, fmt.Errorf("load last synced time: %w", err)
	}
	end := e.now()

	records := ch.FetchOfflineLogs(start, &end)
	if len(records) == 0 {
		e.logger.Debug("no new logs", "device", ch.Name())
		return 0, nil
	}

	raw := make([]map[string]string, len(records))
	for i, rec := range records {
		raw[i] = rec
	}

	saved, err = e.logs.Append(term, raw)
	if err != nil {
		return 0, fmt.Errorf("save access logs: %w", err)
	}

	name := term.Name
	if err := e.audit.Record(synclog.NewSuccess(synclog.TypePull, &name, saved)); err != nil {
		e.logger.Error("failed to record pull outcome", "device", name, "error", err)
	}

	e.logger.Info("device pull complete", "device", name, "logs_saved", saved)
	return saved, nil
}

// selectTerminals refreshes the registry and optionally narrows it to one
// named device.
func (e *Engine) selectTerminals(deviceName string) ([]*terminal.Terminal, error) {
	terminals, err := e.registry.ListActive()
	if err != nil {
		return nil, fmt.Errorf("load device registry: %w", err)
	}
	if deviceName == "" {
		return terminals, nil
	}
	for _, t := range terminals {
		if t.Name == deviceName {
			return []*terminal.Terminal{t}, nil
		}
	}
	return nil, internal.ErrTerminalNotFound
}

func (e *Engine) recordPushError(cause error) {
	if err := e.audit.Record(synclog.NewError(synclog.TypePush, nil, cause.Error())); err != nil {
		e.logger.Error("failed to record push error", "error", err)
	}
}

func (e *Engine) recordPullError(deviceName *string, cause error) {
	if err := e.audit.Record(synclog.NewError(synclog.TypePull, deviceName, cause.Error())); err != nil {
		e.logger.Error("failed to record pull error", "error", err)
	}
}

func (e *Engine) publish(event events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(context.Background(), event); err != nil {
		e.logger.Error("failed to publish sync event", "event_type", event.EventType(), "error", err)
	}
}
