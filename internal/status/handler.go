package status

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-bridge/internal/transport"
)

type ServiceAPI interface {
	Report() (*Report, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Report()
	if err != nil {
		h.Logger.Error("GetStatus: failed to build report", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
