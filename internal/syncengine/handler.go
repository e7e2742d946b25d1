package syncengine

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/access-bridge/internal/transport"
	"github.com/frahmantamala/access-bridge/internal/user"
)

// EngineAPI is the operational surface exposed over HTTP: trigger a push
// with an optional registration-date window, or a pull for one or all
// devices.
type EngineAPI interface {
	PushUsers(opts PushOptions) (PushSummary, error)
	PullLogs(opts PullOptions) (PullSummary, error)
}

type Handler struct {
	*transport.BaseHandler
	Engine EngineAPI
}

func NewHandler(engine EngineAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Engine:      engine,
	}
}

type pushRequestDTO struct {
	Device    string `json:"device,omitempty"`
	StartTime *int64 `json:"start_time,omitempty"` // epoch seconds
	EndTime   *int64 `json:"end_time,omitempty"`
}

type pullRequestDTO struct {
	Device string `json:"device,omitempty"`
}

func (h *Handler) TriggerPush(w http.ResponseWriter, r *http.Request) {
	var dto pushRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("TriggerPush: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	opts := PushOptions{DeviceName: dto.Device, Window: windowFromDTO(dto.StartTime, dto.EndTime)}

	summary, err := h.Engine.PushUsers(opts)
	if err != nil {
		h.Logger.Error("TriggerPush: push flow failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) TriggerPull(w http.ResponseWriter, r *http.Request) {
	var dto pullRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("TriggerPull: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	summary, err := h.Engine.PullLogs(PullOptions{DeviceName: dto.Device})
	if err != nil {
		h.Logger.Error("TriggerPull: pull flow failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func windowFromDTO(start, end *int64) *user.Window {
	if start == nil && end == nil {
		return nil
	}
	w := &user.Window{}
	if start != nil {
		t := time.Unix(*start, 0)
		w.Start = &t
	}
	if end != nil {
		t := time.Unix(*end, 0)
		w.End = &t
	}
	return w
}
